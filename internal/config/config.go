// Package config provides configuration loading for DraftDesk.
//
// Settings are resolved in three layers: built-in defaults, an optional
// TOML file, then DRAFTDESK_* environment variable overrides. The result
// is an immutable snapshot; callers hold the *Settings they were given.
package config

import (
	"fmt"
	"time"
)

// Known AI providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
)

// Settings is the full application configuration.
type Settings struct {
	Server    ServerConfig    `toml:"server"`
	AI        AIConfig        `toml:"ai"`
	History   HistoryConfig   `toml:"history"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Logging   LoggingConfig   `toml:"logging"`
	Plugin    PluginConfig    `toml:"plugin"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `toml:"host"`

	// Port is the listen port.
	Port int `toml:"port"`

	// ReadTimeoutSec and WriteTimeoutSec bound request handling. The write
	// timeout also caps SSE stream duration, so it defaults generously.
	ReadTimeoutSec  int `toml:"read_timeout_sec"`
	WriteTimeoutSec int `toml:"write_timeout_sec"`

	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `toml:"cors_origins"`

	// MaxUploadBytes caps request body size for uploads.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`
}

// AIConfig holds model provider settings.
type AIConfig struct {
	// Provider selects the backing client ("openrouter", "openai",
	// "anthropic", "gemini").
	Provider string `toml:"provider"`

	// Model is the default model identifier.
	Model string `toml:"model"`

	// APIKey authenticates against the provider.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider endpoint (used for OpenRouter and
	// OpenAI-compatible gateways).
	BaseURL string `toml:"base_url"`

	// MaxTokens caps completion length.
	MaxTokens int `toml:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature"`

	// TimeoutSec bounds a single provider call.
	TimeoutSec int `toml:"timeout_sec"`
}

// HistoryConfig holds the document version history settings.
type HistoryConfig struct {
	// MaxEntries caps the number of retained versions per document.
	MaxEntries int `toml:"max_entries"`

	// DebounceMS is the quiet interval for coalescing committed updates.
	DebounceMS int `toml:"debounce_ms"`
}

// Debounce returns the commit debounce interval as a duration.
func (h HistoryConfig) Debounce() time.Duration {
	return time.Duration(h.DebounceMS) * time.Millisecond
}

// RateLimitConfig holds the per-client request limits.
type RateLimitConfig struct {
	Enabled   bool `toml:"enabled"`
	PerMinute int  `toml:"per_minute"`
	PerHour   int  `toml:"per_hour"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "json" or "console".
	Format string `toml:"format"`

	// Output is a file path, or "stderr"/"stdout".
	Output string `toml:"output"`
}

// PluginConfig holds the optional Lua prompt-hook settings.
type PluginConfig struct {
	Enabled bool `toml:"enabled"`

	// PromptHook is the path to a Lua script defining transform_prompt.
	PromptHook string `toml:"prompt_hook"`
}

// Defaults returns the built-in configuration.
func Defaults() *Settings {
	return &Settings{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8505,
			ReadTimeoutSec:  30,
			WriteTimeoutSec: 300,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:3505"},
			MaxUploadBytes:  100 * 1024 * 1024,
		},
		AI: AIConfig{
			Provider:    ProviderOpenRouter,
			Model:       "openai/gpt-4o-mini",
			BaseURL:     "https://openrouter.ai/api/v1",
			MaxTokens:   1000,
			Temperature: 0.7,
			TimeoutSec:  60,
		},
		History: HistoryConfig{
			MaxEntries: 50,
			DebounceMS: 500,
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			PerMinute: 60,
			PerHour:   1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Plugin: PluginConfig{},
	}
}

// Validate checks the settings for contract violations.
func (s *Settings) Validate() error {
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Server.Port)
	}
	if s.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", s.Server.MaxUploadBytes)
	}

	switch s.AI.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("ai.provider %q unknown", s.AI.Provider)
	}
	if s.AI.MaxTokens < 1 {
		return fmt.Errorf("ai.max_tokens must be positive, got %d", s.AI.MaxTokens)
	}

	if s.History.MaxEntries < 1 {
		return fmt.Errorf("history.max_entries must be >= 1, got %d", s.History.MaxEntries)
	}
	if s.History.DebounceMS < 1 {
		return fmt.Errorf("history.debounce_ms must be >= 1, got %d", s.History.DebounceMS)
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.PerMinute < 1 || s.RateLimit.PerHour < 1 {
			return fmt.Errorf("rate_limit windows must be positive: per_minute=%d per_hour=%d",
				s.RateLimit.PerMinute, s.RateLimit.PerHour)
		}
	}

	switch s.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown", s.Logging.Level)
	}
	switch s.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q unknown", s.Logging.Format)
	}

	if s.Plugin.Enabled && s.Plugin.PromptHook == "" {
		return fmt.Errorf("plugin.prompt_hook required when plugin.enabled")
	}

	return nil
}
