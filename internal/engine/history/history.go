package history

import (
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Defaults applied when no option overrides them.
const (
	DefaultMaxEntries = 50
	DefaultDebounce   = 500 * time.Millisecond
)

// Entry is a timestamped, uniquely identified snapshot of the tracked value.
type Entry[T any] struct {
	Value     T
	Timestamp time.Time
	ID        string
}

func newEntry[T any](value T) Entry[T] {
	return Entry[T]{
		Value:     value,
		Timestamp: time.Now(),
		ID:        uuid.NewString(),
	}
}

// EqualFunc compares two tracked values for structural equality.
type EqualFunc[T any] func(a, b T) bool

// History maintains a bounded, navigable sequence of versions of a value.
//
// It is seeded with exactly one entry and is never empty. All methods are
// safe for concurrent use; the debounced commit fires on a timer goroutine
// and is serialized with the other operations.
type History[T any] struct {
	mu sync.Mutex

	entries []Entry[T]
	current int
	seed    T
	pending T
	closed  bool

	// Configuration
	max   int
	delay time.Duration
	equal EqualFunc[T]

	debounce *Debouncer
}

// Option configures a History.
type Option[T any] func(*History[T])

// WithMaxEntries caps the number of retained entries. Values below 1 are
// a caller error and fall back to the default.
func WithMaxEntries[T any](max int) Option[T] {
	return func(h *History[T]) {
		if max >= 1 {
			h.max = max
		}
	}
}

// WithDebounce sets the quiet interval for committed updates.
func WithDebounce[T any](delay time.Duration) Option[T] {
	return func(h *History[T]) {
		if delay > 0 {
			h.delay = delay
		}
	}
}

// WithEqual supplies the comparator used to suppress no-op commits.
//
// The default comparator uses reflect.DeepEqual, which never fails and
// treats incomparable content (such as non-nil functions) as unequal.
func WithEqual[T any](equal EqualFunc[T]) Option[T] {
	return func(h *History[T]) {
		if equal != nil {
			h.equal = equal
		}
	}
}

// New creates a History seeded with initial as its only entry.
func New[T any](initial T, opts ...Option[T]) *History[T] {
	h := &History[T]{
		seed:  initial,
		max:   DefaultMaxEntries,
		delay: DefaultDebounce,
		equal: func(a, b T) bool { return reflect.DeepEqual(a, b) },
	}

	for _, opt := range opts {
		opt(h)
	}

	h.entries = []Entry[T]{newEntry(initial)}
	h.debounce = NewDebouncer(h.delay, h.applyPending)
	return h
}

// Value returns the value at the current position.
func (h *History[T]) Value() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.current].Value
}

// CanUndo reports whether an older entry exists.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current > 0
}

// CanRedo reports whether a newer entry exists.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current < len(h.entries)-1
}

// Set updates the tracked value.
//
// With commit=false the current entry is overwritten in place: no new
// entry, no index change, and the redo branch is untouched. With
// commit=true a debounced commit is scheduled; rapid successive calls
// within the quiet interval collapse into one commit carrying the last
// value.
func (h *History[T]) Set(value T, commit bool) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}

	if !commit {
		h.entries[h.current].Value = value
		h.mu.Unlock()
		return
	}

	h.pending = value
	h.mu.Unlock()

	h.debounce.Call()
}

// applyPending runs when the debounce timer fires.
func (h *History[T]) applyPending() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	value := h.pending

	// Undo-then-edit truncates the redo branch at commit time.
	h.entries = h.entries[:h.current+1]

	if h.equal(h.entries[h.current].Value, value) {
		return
	}

	h.entries = append(h.entries, newEntry(value))

	// Evict the oldest entries when over the cap.
	if len(h.entries) > h.max {
		excess := len(h.entries) - h.max
		h.entries = h.entries[excess:]
	}

	h.current = len(h.entries) - 1
}

// Undo steps back one entry. At the oldest entry it is a no-op.
func (h *History[T]) Undo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current > 0 {
		h.current--
	}
}

// Redo steps forward one entry. At the newest entry it is a no-op.
func (h *History[T]) Redo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current < len(h.entries)-1 {
		h.current++
	}
}

// GoTo jumps to the entry at index. Out-of-range indices are ignored.
func (h *History[T]) GoTo(index int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index >= 0 && index < len(h.entries) {
		h.current = index
	}
}

// Reset discards all history and reseeds with the original construction
// value. Any pending commit is cancelled.
func (h *History[T]) Reset() {
	h.ResetTo(h.seed)
}

// ResetTo discards all history and reseeds with value. Any pending commit
// is cancelled.
func (h *History[T]) ResetTo(value T) {
	h.debounce.Cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.entries = []Entry[T]{newEntry(value)}
	h.current = 0
}

// Entries returns a copy of the full ordered version list, oldest first.
func (h *History[T]) Entries() []Entry[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry[T], len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries.
func (h *History[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the current position within the entries.
func (h *History[T]) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Pending reports whether a scheduled commit has not yet fired.
func (h *History[T]) Pending() bool {
	return h.debounce.IsPending()
}

// Close cancels any pending commit and marks the history as closed.
// Further mutations are ignored; reads remain valid. Close is intended for
// owner teardown so a late timer never mutates state after the consumer is
// gone.
func (h *History[T]) Close() {
	h.debounce.Cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}
