// Package lua provides the optional Lua prompt hook.
//
// A hook script defines transform_prompt(system, user) and returns the
// (possibly rewritten) pair. Hooks let deployments tune prompt wording
// without rebuilding the service. Script failures degrade to the original
// prompts; the caller decides whether to log them.
//
// gopher-lua's LState is not goroutine-safe, so all calls are serialized
// through a mutex.
package lua

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// HookFunc is the global function a hook script must define.
const HookFunc = "transform_prompt"

// ErrClosed is returned when transforming through a closed hook.
var ErrClosed = errors.New("lua: prompt hook is closed")

// dangerousGlobals are removed before user scripts run. Prompt hooks are
// pure string transforms; they get no filesystem, process, or loader
// access.
var dangerousGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"io",
	"os",
	"debug",
	"package",
}

// PromptHook wraps a loaded hook script.
type PromptHook struct {
	mu     sync.Mutex
	state  *lua.LState
	closed bool
}

// LoadPromptHook compiles and runs the script at path, validating that it
// defines transform_prompt.
func LoadPromptHook(path string) (*PromptHook, error) {
	L := lua.NewState()
	sandbox(L)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua: load hook %s: %w", path, err)
	}

	if L.GetGlobal(HookFunc).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("lua: hook %s does not define %s", path, HookFunc)
	}

	return &PromptHook{state: L}, nil
}

// sandbox strips globals that would let a hook escape its string-transform
// role.
func sandbox(L *lua.LState) {
	for _, name := range dangerousGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// Transform runs the hook over the prompt pair. On any failure the
// original prompts are returned alongside the error, so the caller can
// degrade gracefully.
func (h *PromptHook) Transform(system, user string) (string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return system, user, ErrClosed
	}

	L := h.state
	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(HookFunc),
		NRet:    2,
		Protect: true,
	}, lua.LString(system), lua.LString(user))
	if err != nil {
		return system, user, fmt.Errorf("lua: %s: %w", HookFunc, err)
	}

	userRet := L.Get(-1)
	systemRet := L.Get(-2)
	L.Pop(2)

	newSystem, ok := systemRet.(lua.LString)
	if !ok {
		return system, user, fmt.Errorf("lua: %s returned %s for system prompt, want string", HookFunc, systemRet.Type())
	}
	newUser, ok := userRet.(lua.LString)
	if !ok {
		return system, user, fmt.Errorf("lua: %s returned %s for user prompt, want string", HookFunc, userRet.Type())
	}

	return string(newSystem), string(newUser), nil
}

// Close releases the Lua state. Further Transform calls return ErrClosed.
func (h *PromptHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.state.Close()
}
