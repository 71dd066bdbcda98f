package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"draftdesk/internal/extract"
	"draftdesk/internal/service/fsd"
	"draftdesk/internal/service/presales"
	"draftdesk/internal/service/rfp"
)

// FSD endpoints.

func (s *Server) handleFSDGenerate(w http.ResponseWriter, r *http.Request) {
	var req fsd.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.fsd.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, fsd.ErrEmptyRequirement) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "FSD generation error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "FSD document generated successfully",
		"document_id": resp.DocumentID,
		"token_usage": resp.TokenUsage,
	})
}

func (s *Server) handleFSDDownload(w http.ResponseWriter, r *http.Request) {
	doc, err := s.fsd.Document(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="fsd_document.md"`)
	w.Write(doc)
}

func (s *Server) handleFSDTokenUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.fsd.UsageStats())
}

func (s *Server) handleFSDClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.fsd.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "cache cleared",
		"documents_removed": n,
	})
}

// RFP endpoints.

const rfpPreviewChars = 2000

func (s *Server) handleRFPUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	text, err := extract.FromFile(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "error extracting text: "+err.Error())
		return
	}

	analysis := rfp.Analyze(text)

	preview := text
	if len(preview) > rfpPreviewChars {
		preview = preview[:rfpPreviewChars]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"chars":          len(text),
		"preview":        preview,
		"rfp_text":       text,
		"classification": analysis.Type,
		"analysis":       analysis,
	})
}

type rfpGenerateRequest struct {
	RFPText string   `json:"rfp_text"`
	Meta    rfp.Meta `json:"meta"`
}

func (s *Server) handleRFPGenerateJSON(w http.ResponseWriter, r *http.Request) {
	var req rfpGenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.RFPText == "" {
		writeError(w, http.StatusBadRequest, "rfp_text is required")
		return
	}

	proposal := s.proposals.Generate(r.Context(), req.RFPText, req.Meta)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"proposal": proposal,
	})
}

func (s *Server) handleRFPGenerateDoc(w http.ResponseWriter, r *http.Request) {
	var req rfpGenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.RFPText == "" {
		writeError(w, http.StatusBadRequest, "rfp_text is required")
		return
	}

	proposal := s.proposals.Generate(r.Context(), req.RFPText, req.Meta)
	markdown := rfp.RenderMarkdown(proposal, time.Now())

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="proposal.md"`)
	w.Write([]byte(markdown))
}

func (s *Server) handleRFPHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "rfp",
	})
}

// Presales endpoints.

func (s *Server) handlePresalesUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	resp, err := s.presales.Upload(data, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePresalesProcess(w http.ResponseWriter, r *http.Request) {
	var req presales.ProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.presales.Process(r.Context(), req)
	if err != nil {
		if errors.Is(err, presales.ErrFileNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePresalesDownload(w http.ResponseWriter, r *http.Request) {
	content, err := s.presales.ProcessedFile(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="presales_analysis.csv"`)
	w.Write(content)
}

func (s *Server) handlePresalesCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.presales.CacheStats())
}

func (s *Server) handlePresalesClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.presales.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "cache cleared",
		"entries_removed": n,
	})
}
