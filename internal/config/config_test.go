package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Server.Port != 8505 {
		t.Errorf("Port = %d, want default 8505", s.Server.Port)
	}
	if s.History.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d, want default 50", s.History.MaxEntries)
	}
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draftdesk.toml")
	data := `
[server]
port = 9000

[history]
max_entries = 10
debounce_ms = 250

[ai]
provider = "anthropic"
model = "claude-sonnet-4-5"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", s.Server.Port)
	}
	if s.History.MaxEntries != 10 || s.History.DebounceMS != 250 {
		t.Errorf("History = %+v, want file values", s.History)
	}
	if s.AI.Provider != ProviderAnthropic {
		t.Errorf("Provider = %q, want anthropic", s.AI.Provider)
	}
	// Untouched sections keep defaults.
	if s.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default", s.Server.Host)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DRAFTDESK_PORT", "7777")
	t.Setenv("DRAFTDESK_HISTORY_DEBOUNCE_MS", "100")
	t.Setenv("DRAFTDESK_LOG_LEVEL", "debug")
	t.Setenv("DRAFTDESK_CORS_ORIGINS", "https://a.example, https://b.example")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Server.Port != 7777 {
		t.Errorf("Port = %d, want 7777", s.Server.Port)
	}
	if s.History.DebounceMS != 100 {
		t.Errorf("DebounceMS = %d, want 100", s.History.DebounceMS)
	}
	if s.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", s.Logging.Level)
	}
	if len(s.Server.CORSOrigins) != 2 || s.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", s.Server.CORSOrigins)
	}
}

func TestProviderKeyFallback(t *testing.T) {
	t.Setenv("DRAFTDESK_AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test-fallback")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.AI.APIKey != "sk-test-fallback" {
		t.Errorf("APIKey = %q, want provider fallback", s.AI.APIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"bad port", func(s *Settings) { s.Server.Port = 0 }, "server.port"},
		{"bad provider", func(s *Settings) { s.AI.Provider = "carrier-pigeon" }, "ai.provider"},
		{"zero max entries", func(s *Settings) { s.History.MaxEntries = 0 }, "history.max_entries"},
		{"zero debounce", func(s *Settings) { s.History.DebounceMS = 0 }, "history.debounce_ms"},
		{"bad level", func(s *Settings) { s.Logging.Level = "verbose" }, "logging.level"},
		{"bad format", func(s *Settings) { s.Logging.Format = "xml" }, "logging.format"},
		{"hook required", func(s *Settings) { s.Plugin.Enabled = true }, "plugin.prompt_hook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestBadEnvValue(t *testing.T) {
	t.Setenv("DRAFTDESK_PORT", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}
