// Package server exposes the DraftDesk HTTP API: document upload and
// versioned editing, streaming AI chat, FSD generation, RFP analysis and
// proposal drafting, and presales spreadsheet enrichment.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"draftdesk/internal/ai"
	"draftdesk/internal/config"
	"draftdesk/internal/engine/document"
	"draftdesk/internal/plugin/lua"
	"draftdesk/internal/service/fsd"
	"draftdesk/internal/service/presales"
	"draftdesk/internal/service/rfp"
)

// Options collects the server's dependencies.
type Options struct {
	Config    *config.Settings
	Logger    *zap.Logger
	Client    ai.Client
	Workspace *document.Workspace

	// Hook optionally rewrites prompts before chat calls.
	Hook *lua.PromptHook

	// Version is reported by the health endpoints.
	Version string
}

// Server is the DraftDesk HTTP API.
type Server struct {
	cfg       *config.Settings
	logger    *zap.Logger
	client    ai.Client
	hook      *lua.PromptHook
	workspace *document.Workspace

	fsd       *fsd.Service
	proposals *rfp.Generator
	presales  *presales.Service

	version string
	started time.Time
	httpSrv *http.Server
}

// New wires the services and routes.
func New(opts Options) *Server {
	s := &Server{
		cfg:       opts.Config,
		logger:    opts.Logger,
		client:    opts.Client,
		hook:      opts.Hook,
		workspace: opts.Workspace,
		fsd:       fsd.New(opts.Client, opts.Logger.Named("fsd")),
		proposals: rfp.NewGenerator(opts.Client, opts.Logger.Named("rfp"), rfp.Organization{}),
		presales:  presales.New(opts.Client, opts.Logger.Named("presales")),
		version:   opts.Version,
		started:   time.Now(),
	}

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Config.Server.Host, opts.Config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(opts.Config.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(opts.Config.Server.WriteTimeoutSec) * time.Second,
	}
	return s
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /upload-document", s.handleUploadDocument)
	mux.HandleFunc("POST /chat", s.handleChat)

	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("PUT /documents/{id}", s.handleUpdateDocument)
	mux.HandleFunc("POST /documents/{id}/undo", s.handleUndo)
	mux.HandleFunc("POST /documents/{id}/redo", s.handleRedo)
	mux.HandleFunc("POST /documents/{id}/goto", s.handleGoTo)
	mux.HandleFunc("POST /documents/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /documents/{id}/versions", s.handleVersions)

	mux.HandleFunc("POST /fsd/generate", s.handleFSDGenerate)
	mux.HandleFunc("GET /fsd/download/{id}", s.handleFSDDownload)
	mux.HandleFunc("GET /fsd/token-usage", s.handleFSDTokenUsage)
	mux.HandleFunc("POST /fsd/clear-cache", s.handleFSDClearCache)

	mux.HandleFunc("POST /rfp/upload", s.handleRFPUpload)
	mux.HandleFunc("POST /rfp/generate-json", s.handleRFPGenerateJSON)
	mux.HandleFunc("POST /rfp/generate-doc", s.handleRFPGenerateDoc)
	mux.HandleFunc("GET /rfp/health", s.handleRFPHealth)

	mux.HandleFunc("POST /presales/upload", s.handlePresalesUpload)
	mux.HandleFunc("POST /presales/process", s.handlePresalesProcess)
	mux.HandleFunc("GET /presales/download/{id}", s.handlePresalesDownload)
	mux.HandleFunc("GET /presales/cache-stats", s.handlePresalesCacheStats)
	mux.HandleFunc("POST /presales/clear-cache", s.handlePresalesClearCache)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/live", s.handleHealthLive)
	mux.HandleFunc("GET /health/ready", s.handleHealthReady)

	mws := []Middleware{
		requestLogging(s.logger),
		securityHeaders(),
		cors(s.cfg.Server.CORSOrigins),
		maxBodySize(s.cfg.Server.MaxUploadBytes),
	}
	if s.cfg.RateLimit.Enabled {
		mws = append(mws, rateLimit(s.cfg.RateLimit, s.logger))
	}
	return chain(mux, mws...)
}

// ListenAndServe serves until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the FastAPI-style {"detail": ...} error shape the
// canvas UI expects.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
