// Package app wires configuration, logging, the AI client, the document
// workspace, and the HTTP server into a runnable application.
package app

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"draftdesk/internal/ai"
	"draftdesk/internal/config"
	"draftdesk/internal/engine/document"
	"draftdesk/internal/logging"
	"draftdesk/internal/plugin/lua"
	"draftdesk/internal/server"
)

// shutdownGrace bounds how long Shutdown waits for in-flight requests.
const shutdownGrace = 10 * time.Second

// Options configures application startup.
type Options struct {
	// ConfigPath points at a TOML settings file. Empty uses defaults plus
	// environment overrides.
	ConfigPath string

	// Addr overrides the configured host:port when non-empty, in
	// "host:port" or ":port" form.
	Addr string

	// LogLevel overrides the configured logging level when non-empty.
	LogLevel string

	// Version is reported by the health endpoints.
	Version string
}

// App is the assembled application.
type App struct {
	cfg       *config.Settings
	logger    *zap.Logger
	workspace *document.Workspace
	hook      *lua.PromptHook
	server    *server.Server
}

// New loads configuration and builds every component. The returned App is
// ready to Run.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Addr != "" {
		if err := applyAddr(cfg, opts.Addr); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, fmt.Errorf("app: build logger: %w", err)
	}

	client, err := ai.NewClient(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("app: build ai client: %w", err)
	}

	var hook *lua.PromptHook
	if cfg.Plugin.Enabled {
		hook, err = lua.LoadPromptHook(cfg.Plugin.PromptHook)
		if err != nil {
			return nil, fmt.Errorf("app: load prompt hook: %w", err)
		}
		logger.Info("prompt hook loaded", zap.String("path", cfg.Plugin.PromptHook))
	}

	workspace := document.NewWorkspace(cfg.History.MaxEntries, cfg.History.Debounce())

	srv := server.New(server.Options{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Workspace: workspace,
		Hook:      hook,
		Version:   opts.Version,
	})

	return &App{
		cfg:       cfg,
		logger:    logger,
		workspace: workspace,
		hook:      hook,
		server:    srv,
	}, nil
}

// Run serves HTTP until ctx is cancelled or the listener fails, then
// shuts down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
		return a.Shutdown()
	}
}

// Shutdown drains the HTTP server and closes the workspace, cancelling
// any pending debounced commits.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.close()
	return err
}

func (a *App) close() {
	a.workspace.CloseAll()
	if a.hook != nil {
		a.hook.Close()
	}
	_ = a.logger.Sync()
}

// applyAddr splits an override address into the config's host and port.
// A bare ":8080" keeps the configured host.
func applyAddr(cfg *config.Settings, addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("app: invalid addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("app: invalid port in addr %q: %w", addr, err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	cfg.Server.Port = port
	return nil
}
