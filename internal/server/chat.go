package server

import (
	"net/http"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"draftdesk/internal/ai"
)

// chatRequest is the canvas chat payload.
type chatRequest struct {
	Query         string `json:"query"`
	Context       string `json:"context"`
	CanvasContent string `json:"canvas_content"`
	Model         string `json:"model"`
}

// handleChat streams the model's answer as server-sent events: one
// data: {"content": ...} frame per chunk, errors as data: {"error": ...},
// and a data: [DONE] terminator either way.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	system := ai.CanvasSystemPrompt
	prompt := ai.BuildCanvasPrompt(req.Query, req.Context, req.CanvasContent)

	if s.hook != nil {
		hookedSystem, hookedPrompt, err := s.hook.Transform(system, prompt)
		if err != nil {
			// Hook failures degrade to the original prompts.
			s.logger.Warn("prompt hook failed", zap.Error(err))
		}
		system, prompt = hookedSystem, hookedPrompt
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeFrame := func(payload []byte) {
		w.Write([]byte("data: "))
		w.Write(payload)
		w.Write([]byte("\n\n"))
		flusher.Flush()
	}

	err := s.client.Stream(r.Context(), ai.Request{
		System: system,
		Prompt: prompt,
		Model:  req.Model,
	}, func(chunk ai.Chunk) error {
		if chunk.Content == "" {
			return nil
		}
		payload, err := sjson.SetBytes([]byte(`{}`), "content", chunk.Content)
		if err != nil {
			return err
		}
		writeFrame(payload)
		return nil
	})
	if err != nil {
		s.logger.Error("chat stream failed", zap.Error(err))
		if payload, jerr := sjson.SetBytes([]byte(`{}`), "error", err.Error()); jerr == nil {
			writeFrame(payload)
		}
	}

	writeFrame([]byte("[DONE]"))
}
