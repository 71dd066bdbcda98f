package lua

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeHook writes a hook script to a temp file and returns its path.
func writeHook(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hook.lua")
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndTransform(t *testing.T) {
	path := writeHook(t, `
function transform_prompt(system, user)
  return system .. "\nAlways answer in English.", "[[" .. user .. "]]"
end
`)

	hook, err := LoadPromptHook(path)
	if err != nil {
		t.Fatalf("LoadPromptHook: %v", err)
	}
	defer hook.Close()

	sys, user, err := hook.Transform("base system", "hello")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !strings.HasSuffix(sys, "Always answer in English.") {
		t.Errorf("system = %q, want hook suffix", sys)
	}
	if user != "[[hello]]" {
		t.Errorf("user = %q, want wrapped", user)
	}
}

func TestLoadRejectsMissingFunction(t *testing.T) {
	path := writeHook(t, `x = 1`)
	if _, err := LoadPromptHook(path); err == nil {
		t.Error("expected error when transform_prompt is missing")
	}
}

func TestLoadRejectsBrokenScript(t *testing.T) {
	path := writeHook(t, `function transform_prompt(`)
	if _, err := LoadPromptHook(path); err == nil {
		t.Error("expected error for unparsable script")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := LoadPromptHook(filepath.Join(t.TempDir(), "absent.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTransformErrorReturnsOriginals(t *testing.T) {
	path := writeHook(t, `
function transform_prompt(system, user)
  error("hook exploded")
end
`)

	hook, err := LoadPromptHook(path)
	if err != nil {
		t.Fatalf("LoadPromptHook: %v", err)
	}
	defer hook.Close()

	sys, user, err := hook.Transform("s", "u")
	if err == nil {
		t.Fatal("expected error from exploding hook")
	}
	if sys != "s" || user != "u" {
		t.Errorf("originals not preserved: %q, %q", sys, user)
	}
}

func TestTransformNonStringReturn(t *testing.T) {
	path := writeHook(t, `
function transform_prompt(system, user)
  return 42, user
end
`)

	hook, err := LoadPromptHook(path)
	if err != nil {
		t.Fatalf("LoadPromptHook: %v", err)
	}
	defer hook.Close()

	sys, user, err := hook.Transform("s", "u")
	if err == nil {
		t.Fatal("expected error for non-string return")
	}
	if sys != "s" || user != "u" {
		t.Errorf("originals not preserved: %q, %q", sys, user)
	}
}

func TestSandboxRemovesDangerousGlobals(t *testing.T) {
	path := writeHook(t, `
function transform_prompt(system, user)
  if os ~= nil or io ~= nil or loadstring ~= nil then
    error("sandbox leak")
  end
  return system, user
end
`)

	hook, err := LoadPromptHook(path)
	if err != nil {
		t.Fatalf("LoadPromptHook: %v", err)
	}
	defer hook.Close()

	if _, _, err := hook.Transform("s", "u"); err != nil {
		t.Errorf("sandboxed globals leaked into hook: %v", err)
	}
}

func TestTransformAfterClose(t *testing.T) {
	path := writeHook(t, `
function transform_prompt(system, user)
  return system, user
end
`)

	hook, err := LoadPromptHook(path)
	if err != nil {
		t.Fatalf("LoadPromptHook: %v", err)
	}
	hook.Close()
	hook.Close() // double close is safe

	sys, user, err := hook.Transform("s", "u")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if sys != "s" || user != "u" {
		t.Errorf("originals not preserved: %q, %q", sys, user)
	}
}
