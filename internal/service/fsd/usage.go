package fsd

import (
	"sync"
	"time"

	"draftdesk/internal/ai"
)

// Tracked operations.
const (
	OpGeneration        = "fsd_generation"
	OpSectionExtraction = "section_extraction"
)

// Pricing per one million tokens (gpt-4o-mini class models).
const (
	inputCostPer1M  = 0.15
	outputCostPer1M = 0.60
)

// UsageEntry records token consumption for one operation.
type UsageEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Operation    string    `json:"operation"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	InputCost    float64   `json:"input_cost"`
	OutputCost   float64   `json:"output_cost"`
	TotalCost    float64   `json:"total_cost"`
	ContextInfo  string    `json:"context_info,omitempty"`
}

// UsageSummary is a snapshot of session-wide consumption.
type UsageSummary struct {
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalTokens       int     `json:"total_tokens"`
	TotalCost         float64 `json:"total_cost"`
	DocumentsGenerated int    `json:"documents_generated"`
	AvgCostPerDocument float64 `json:"average_cost_per_document"`
}

// UsageTracker accumulates token usage and estimated cost across a
// session.
type UsageTracker struct {
	mu sync.Mutex

	totalInput  int
	totalOutput int
	totalCost   float64
	entries     []UsageEntry
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Log records usage for one operation and returns the entry.
func (t *UsageTracker) Log(operation string, usage ai.Usage, contextInfo string) UsageEntry {
	inputCost := float64(usage.InputTokens) / 1_000_000 * inputCostPer1M
	outputCost := float64(usage.OutputTokens) / 1_000_000 * outputCostPer1M

	entry := UsageEntry{
		Timestamp:    time.Now(),
		Operation:    operation,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		InputCost:    inputCost,
		OutputCost:   outputCost,
		TotalCost:    inputCost + outputCost,
		ContextInfo:  contextInfo,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalInput += usage.InputTokens
	t.totalOutput += usage.OutputTokens
	t.totalCost += entry.TotalCost
	t.entries = append(t.entries, entry)
	return entry
}

// Summary returns the session totals.
func (t *UsageTracker) Summary() UsageSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	generated := 0
	for _, e := range t.entries {
		if e.Operation == OpGeneration {
			generated++
		}
	}

	avg := 0.0
	if generated > 0 {
		avg = t.totalCost / float64(generated)
	}

	return UsageSummary{
		TotalInputTokens:  t.totalInput,
		TotalOutputTokens: t.totalOutput,
		TotalTokens:       t.totalInput + t.totalOutput,
		TotalCost:         t.totalCost,
		DocumentsGenerated: generated,
		AvgCostPerDocument: avg,
	}
}

// Entries returns a copy of the per-operation log.
func (t *UsageTracker) Entries() []UsageEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]UsageEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
