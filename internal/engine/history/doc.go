// Package history provides bounded, debounced undo/redo version tracking
// for a value of any type.
//
// A History holds an ordered sequence of snapshots (Version entries) and a
// pointer to the current one. It is seeded with exactly one entry and is
// never empty. Key concepts:
//
// # Commits
//
// Set(value, true) schedules a debounced commit: rapid successive calls
// within the quiet interval collapse into a single new entry carrying the
// last value. Committing a value structurally equal to the current entry is
// a no-op, so round-trips through an unchanged form do not churn history.
//
// # Silent updates
//
// Set(value, false) overwrites the current entry in place. It never creates
// an entry, never moves the index, and never touches the debounce timer.
// Intended for live/streaming updates that should not be individually
// undoable.
//
// # Navigation
//
//	h := history.New("initial")
//	h.Set("draft", true)
//	// ... after the debounce interval ...
//	h.Undo()      // back to "initial"
//	h.Redo()      // forward to "draft"
//	h.GoTo(0)     // jump to any retained version
//
// Undo and redo at the boundary are safe no-ops. Entries after the current
// index (the redo branch) survive until the next commit, which truncates
// them before appending.
//
// # Bounds
//
// The entry count never exceeds the configured maximum; when a commit would
// overflow, the oldest entry is evicted and the index shifts to stay on the
// newly appended entry.
package history
