package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"draftdesk/internal/engine/document"
	"draftdesk/internal/extract"
)

// documentView is the API shape for a workspace document.
type documentView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
	CanUndo   bool      `json:"can_undo"`
	CanRedo   bool      `json:"can_redo"`
}

func (s *Server) documentView(id string, doc *document.Document) documentView {
	canUndo, _ := s.workspace.CanUndo(id)
	canRedo, _ := s.workspace.CanRedo(id)
	return documentView{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		UpdatedAt: doc.UpdatedAt,
		CanUndo:   canUndo,
		CanRedo:   canRedo,
	}
}

// handleUploadDocument accepts a multipart upload, extracts its text, and
// opens a versioned workspace document seeded with the markdown.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !extract.ValidateFilename(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type: "+header.Filename)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	text, err := extract.FromFile(header.Filename, data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, extract.ErrUnsupportedType) || errors.Is(err, extract.ErrEmptyDocument) || errors.Is(err, extract.ErrNotUTF8) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "error converting document: "+err.Error())
		return
	}

	doc := s.workspace.Open(header.Filename, text)
	s.logger.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("filename", header.Filename),
		zap.Int("chars", len(text)),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       doc.ID,
		"filename": header.Filename,
		"content":  text,
		"status":   "success",
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.workspace.Get(id)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.documentView(id, doc))
}

// handleUpdateDocument applies an edit. commit=true schedules a debounced
// version commit; commit=false rewrites the current version in place.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Content string `json:"content"`
		Commit  bool   `json:"commit"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	doc, err := s.workspace.Update(id, req.Content, req.Commit)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.documentView(id, doc))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, s.workspace.Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, s.workspace.Redo)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, s.workspace.Reset)
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, op func(string) (*document.Document, error)) {
	id := r.PathValue("id")
	doc, err := op(id)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.documentView(id, doc))
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Index int `json:"index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	doc, err := s.workspace.GoTo(id, req.Index)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.documentView(id, doc))
}

// versionView is one history entry in the versions listing.
type versionView struct {
	Index     int       `json:"index"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Current   bool      `json:"current"`
	Chars     int       `json:"chars"`
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entries, current, err := s.workspace.Versions(id)
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	views := make([]versionView, len(entries))
	for i, e := range entries {
		views[i] = versionView{
			Index:     i,
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Current:   i == current,
			Chars:     len(e.Value.Content),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"versions":      views,
		"current_index": current,
	})
}

func writeDocumentError(w http.ResponseWriter, err error) {
	if errors.Is(err, document.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
