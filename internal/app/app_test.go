package app

import (
	"testing"

	"draftdesk/internal/config"
)

func TestApplyAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{addr: "127.0.0.1:9000", wantHost: "127.0.0.1", wantPort: 9000},
		{addr: ":9000", wantHost: "0.0.0.0", wantPort: 9000},
		{addr: "no-port", wantErr: true},
		{addr: "host:notanumber", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			cfg := config.Defaults()
			err := applyAddr(cfg, tt.addr)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyAddr: %v", err)
			}
			if cfg.Server.Host != tt.wantHost || cfg.Server.Port != tt.wantPort {
				t.Errorf("host:port = %s:%d, want %s:%d", cfg.Server.Host, cfg.Server.Port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNewRequiresValidConfig(t *testing.T) {
	t.Setenv("DRAFTDESK_AI_API_KEY", "test-key")
	t.Setenv("DRAFTDESK_PORT", "not-a-port")

	if _, err := New(t.Context(), Options{}); err == nil {
		t.Error("expected error for invalid port override")
	}
}

func TestNewBuildsApp(t *testing.T) {
	t.Setenv("DRAFTDESK_AI_API_KEY", "test-key")

	a, err := New(t.Context(), Options{Version: "test", LogLevel: "error"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.close()

	if a.workspace == nil || a.server == nil {
		t.Error("app not fully wired")
	}
	if a.cfg.Logging.Level != "error" {
		t.Errorf("log level = %q, want override applied", a.cfg.Logging.Level)
	}
}
