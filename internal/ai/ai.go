// Package ai provides the model-provider clients used for chat, document
// generation and enrichment.
//
// A single Client interface fronts OpenAI-compatible gateways (including
// OpenRouter), Anthropic, and Gemini. Provider selection comes from
// configuration; callers never branch on the provider themselves.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"draftdesk/internal/config"
)

// ErrNoAPIKey is returned when a provider client is constructed without
// credentials.
var ErrNoAPIKey = errors.New("ai: api key not configured")

// Usage reports token consumption for one completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns combined token usage.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Request is a single completion request.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// Prompt is the user message.
	Prompt string

	// Model overrides the client default when non-empty.
	Model string

	// MaxTokens and Temperature override the client defaults when set.
	MaxTokens   int
	Temperature float64
}

// Response is a completed (non-streaming) reply.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Chunk is one streamed fragment of a reply.
type Chunk struct {
	Content string
}

// Client is a model provider. Stream invokes fn for every fragment in
// order; returning an error from fn aborts the stream.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Stream(ctx context.Context, req Request, fn func(Chunk) error) error
}

// NewClient builds the provider selected by the configuration.
func NewClient(ctx context.Context, cfg config.AIConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	defaults := callDefaults{
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
	}

	switch cfg.Provider {
	case config.ProviderOpenRouter, config.ProviderOpenAI:
		return newOpenAIClient(cfg.APIKey, cfg.BaseURL, defaults), nil
	case config.ProviderAnthropic:
		return newAnthropicClient(cfg.APIKey, defaults), nil
	case config.ProviderGemini:
		return newGeminiClient(ctx, cfg.APIKey, defaults)
	default:
		return nil, fmt.Errorf("ai: provider %q unknown", cfg.Provider)
	}
}

// callDefaults are the per-client defaults applied when a Request leaves a
// field zero.
type callDefaults struct {
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// resolve fills zero fields of req from the defaults.
func (d callDefaults) resolve(req Request) Request {
	if req.Model == "" {
		req.Model = d.model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = d.maxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = d.temperature
	}
	return req
}

// callContext applies the per-call timeout when the parent has no deadline.
func (d callDefaults) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}
