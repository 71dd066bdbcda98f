package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "DRAFTDESK_"

// Load resolves settings from defaults, an optional TOML file, and
// environment overrides, then validates the result.
//
// An empty path skips the file layer. A missing file at an explicit path is
// an error; partial files are fine, absent keys keep their defaults.
func Load(path string) (*Settings, error) {
	s := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(s); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// applyEnv overlays DRAFTDESK_* variables onto the settings. Provider API
// keys also fall back to the conventional provider variables so existing
// deployments keep working.
func applyEnv(s *Settings) error {
	if v, ok := lookup("HOST"); ok {
		s.Server.Host = v
	}
	if v, ok := lookup("PORT"); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		s.Server.Port = p
	}
	if v, ok := lookup("CORS_ORIGINS"); ok {
		s.Server.CORSOrigins = splitList(v)
	}

	if v, ok := lookup("AI_PROVIDER"); ok {
		s.AI.Provider = v
	}
	if v, ok := lookup("AI_MODEL"); ok {
		s.AI.Model = v
	}
	if v, ok := lookup("AI_API_KEY"); ok {
		s.AI.APIKey = v
	}
	if v, ok := lookup("AI_BASE_URL"); ok {
		s.AI.BaseURL = v
	}

	if s.AI.APIKey == "" {
		s.AI.APIKey = providerKeyFallback(s.AI.Provider)
	}

	if v, ok := lookup("HISTORY_MAX_ENTRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sHISTORY_MAX_ENTRIES: %w", EnvPrefix, err)
		}
		s.History.MaxEntries = n
	}
	if v, ok := lookup("HISTORY_DEBOUNCE_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sHISTORY_DEBOUNCE_MS: %w", EnvPrefix, err)
		}
		s.History.DebounceMS = n
	}

	if v, ok := lookup("LOG_LEVEL"); ok {
		s.Logging.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		s.Logging.Format = v
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// providerKeyFallback returns the conventional API key variable for the
// provider, if set.
func providerKeyFallback(provider string) string {
	var name string
	switch provider {
	case ProviderOpenRouter:
		name = "OPENROUTER_API_KEY"
	case ProviderOpenAI:
		name = "OPENAI_API_KEY"
	case ProviderAnthropic:
		name = "ANTHROPIC_API_KEY"
	case ProviderGemini:
		name = "GEMINI_API_KEY"
	default:
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
