// Package document provides the versioned document workspace.
//
// A Workspace holds the open canvas documents for a session, one bounded
// undo/redo history per document. All mutation flows through the workspace
// so the history invariants cannot be bypassed.
package document

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"draftdesk/internal/engine/history"
)

// ErrNotFound is returned when a document ID is not open in the workspace.
var ErrNotFound = errors.New("document not found")

// Document is a markdown canvas document tracked by the workspace.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// equalDocs compares the undoable parts of two documents. Timestamps are
// excluded so a round-trip through an unchanged form never creates an entry.
func equalDocs(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Title == b.Title && a.Content == b.Content
}

// Workspace manages open documents and their version histories.
type Workspace struct {
	mu   sync.Mutex
	docs map[string]*history.History[*Document]

	maxEntries int
	debounce   time.Duration
}

// NewWorkspace creates an empty workspace. Each opened document gets a
// history capped at maxEntries with the given commit debounce interval.
func NewWorkspace(maxEntries int, debounce time.Duration) *Workspace {
	return &Workspace{
		docs:       make(map[string]*history.History[*Document]),
		maxEntries: maxEntries,
		debounce:   debounce,
	}
}

// Open creates a document seeded with the given content and returns it.
func (w *Workspace) Open(title, content string) *Document {
	doc := &Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		UpdatedAt: time.Now(),
	}

	h := history.New(doc,
		history.WithMaxEntries[*Document](w.maxEntries),
		history.WithDebounce[*Document](w.debounce),
		history.WithEqual[*Document](equalDocs),
	)

	w.mu.Lock()
	w.docs[doc.ID] = h
	w.mu.Unlock()

	return doc
}

func (w *Workspace) histFor(id string) (*history.History[*Document], error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h, ok := w.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

// Get returns the current version of the document.
func (w *Workspace) Get(id string) (*Document, error) {
	h, err := w.histFor(id)
	if err != nil {
		return nil, err
	}
	return h.Value(), nil
}

// Update sets new content for the document. With commit=true the change is
// recorded as a (debounced) history entry; with commit=false the current
// entry is overwritten in place, for live updates that should not be
// individually undoable.
func (w *Workspace) Update(id, content string, commit bool) (*Document, error) {
	h, err := w.histFor(id)
	if err != nil {
		return nil, err
	}

	cur := h.Value()
	next := &Document{
		ID:        cur.ID,
		Title:     cur.Title,
		Content:   content,
		UpdatedAt: time.Now(),
	}
	h.Set(next, commit)
	return next, nil
}

// Undo steps the document back one version. At the oldest version it is a
// no-op.
func (w *Workspace) Undo(id string) (*Document, error) {
	h, err := w.histFor(id)
	if err != nil {
		return nil, err
	}
	h.Undo()
	return h.Value(), nil
}

// Redo steps the document forward one version. At the newest version it is
// a no-op.
func (w *Workspace) Redo(id string) (*Document, error) {
	h, err := w.histFor(id)
	if err != nil {
		return nil, err
	}
	h.Redo()
	return h.Value(), nil
}

// GoTo jumps to a recorded version index. Out-of-range indices are ignored.
func (w *Workspace) GoTo(id string, index int) (*Document, error) {
	h, err := w.histFor(id)
	if err != nil {
		return nil, err
	}
	h.GoTo(index)
	return h.Value(), nil
}

// Reset discards the document's history, reseeding with its original
// contents.
func (w *Workspace) Reset(id string) (*Document, error) {
	h, err := w.histFor(id)
	if err != nil {
		return nil, err
	}
	h.Reset()
	return h.Value(), nil
}

// Versions returns the full ordered version list for the document, oldest
// first, plus the current index.
func (w *Workspace) Versions(id string) ([]history.Entry[*Document], int, error) {
	h, err := w.histFor(id)
	if err != nil {
		return nil, 0, err
	}
	return h.Entries(), h.Index(), nil
}

// CanUndo reports whether the document has an older version.
func (w *Workspace) CanUndo(id string) (bool, error) {
	h, err := w.histFor(id)
	if err != nil {
		return false, err
	}
	return h.CanUndo(), nil
}

// CanRedo reports whether the document has a newer version.
func (w *Workspace) CanRedo(id string) (bool, error) {
	h, err := w.histFor(id)
	if err != nil {
		return false, err
	}
	return h.CanRedo(), nil
}

// Close removes the document from the workspace, cancelling any pending
// commit so a late timer never mutates released state.
func (w *Workspace) Close(id string) error {
	w.mu.Lock()
	h, ok := w.docs[id]
	if ok {
		delete(w.docs, id)
	}
	w.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	h.Close()
	return nil
}

// CloseAll closes every open document. Used at shutdown.
func (w *Workspace) CloseAll() {
	w.mu.Lock()
	docs := w.docs
	w.docs = make(map[string]*history.History[*Document])
	w.mu.Unlock()

	for _, h := range docs {
		h.Close()
	}
}

// Len returns the number of open documents.
func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.docs)
}
