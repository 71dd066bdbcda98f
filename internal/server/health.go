package server

import (
	"net/http"
	"time"
)

func (s *Server) uptime() float64 {
	return time.Since(s.started).Round(10 * time.Millisecond).Seconds()
}

// handleHealth is the general probe with version and uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    s.uptime(),
		"version":   s.version,
	})
}

// handleHealthLive reports process liveness only.
func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": s.uptime(),
	})
}

// handleHealthReady checks that dependencies are usable: the AI provider
// has credentials and the workspace is accepting documents.
func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"workspace": "ok",
		"ai":        "ok",
	}
	status := http.StatusOK

	if s.cfg.AI.APIKey == "" {
		checks["ai"] = "missing api key"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":    statusWord(status),
		"checks":    checks,
		"documents": s.workspace.Len(),
		"version":   s.version,
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "not ready"
}
