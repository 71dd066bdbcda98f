// Package fsd generates Functional Specification Documents from a stated
// requirement, tracking model token usage and cost per operation.
package fsd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"draftdesk/internal/ai"
)

// ErrDocumentNotFound is returned for unknown or expired document IDs.
var ErrDocumentNotFound = errors.New("fsd: document not found or expired")

// ErrEmptyRequirement rejects blank generation requests.
var ErrEmptyRequirement = errors.New("fsd: requirement cannot be empty")

const generationSystemPrompt = "You are a professional FSD document specialist with expertise in " +
	"enterprise banking solutions and technical documentation."

// maxSectionInput caps how much document content is sent for section
// extraction.
const maxSectionInput = 8000

// Request asks for an FSD covering one functional requirement.
type Request struct {
	Requirement string `json:"requirement"`

	// Context optionally carries extracted document text to ground the
	// generation.
	Context string `json:"context,omitempty"`
}

// Response reports a completed generation.
type Response struct {
	DocumentID string       `json:"document_id"`
	Content    string       `json:"content"`
	TokenUsage UsageSummary `json:"token_usage"`
}

// Service generates FSD documents and retains them in memory for download.
type Service struct {
	client  ai.Client
	logger  *zap.Logger
	tracker *UsageTracker

	mu        sync.Mutex
	documents map[string][]byte
}

// New creates the FSD service.
func New(client ai.Client, logger *zap.Logger) *Service {
	return &Service{
		client:    client,
		logger:    logger,
		tracker:   NewUsageTracker(),
		documents: make(map[string][]byte),
	}
}

// Generate produces an FSD document for the requirement, stores the
// markdown under a fresh document ID, and returns it with the session
// usage summary.
func (s *Service) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Requirement) == "" {
		return Response{}, ErrEmptyRequirement
	}

	prompt := buildGenerationPrompt(req.Requirement, req.Context)

	resp, err := s.client.Complete(ctx, ai.Request{
		System:      generationSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   2000,
		Temperature: 0.3,
	})
	if err != nil {
		return Response{}, fmt.Errorf("fsd: generate: %w", err)
	}

	usage := resp.Usage
	if usage.Total() == 0 {
		// Provider did not report usage; estimate from word counts.
		usage = ai.Usage{
			InputTokens:  estimateTokens(prompt),
			OutputTokens: estimateTokens(resp.Text),
		}
	}
	s.tracker.Log(OpGeneration, usage, fmt.Sprintf("requirement: %d chars, context: %d chars",
		len(req.Requirement), len(req.Context)))

	id := uuid.NewString()
	s.mu.Lock()
	s.documents[id] = []byte(resp.Text)
	s.mu.Unlock()

	summary := s.tracker.Summary()
	s.logger.Info("fsd document generated",
		zap.String("document_id", id),
		zap.Int("total_tokens", summary.TotalTokens),
		zap.Float64("total_cost", summary.TotalCost),
	)

	return Response{
		DocumentID: id,
		Content:    resp.Text,
		TokenUsage: summary,
	}, nil
}

// buildGenerationPrompt frames the four-section FSD structure around the
// requirement and any grounding context.
func buildGenerationPrompt(requirement, context string) string {
	var b strings.Builder
	b.WriteString("Generate a comprehensive FSD (Functional Specification Document) based on the following input requirements:\n\n")
	fmt.Fprintf(&b, "User Input Requirement: %s\n\n", requirement)

	if context != "" {
		fmt.Fprintf(&b, "Supporting Context:\n%s\n\n", context)
	} else {
		b.WriteString("Context: No additional context available\n\n")
	}

	b.WriteString(`Create a detailed document with the following structure:
1. INTRODUCTION
   Brief overview of the document purpose and scope.

2. REQUIREMENT OVERVIEW
   Clear statement of the business requirements and objectives.

3. CURRENT FUNCTIONALITY
   Description of how the system currently handles these requirements.

4. PROPOSED FUNCTIONAL APPROACH
   Detailed explanation of the proposed solution and implementation.

The document should be professional, precise, and provide clear insights for implementation.
Focus on these four main sections as they constitute the core content.
Use the provided context information to enhance accuracy and technical depth.`)

	return b.String()
}

// estimateTokens approximates token count from whitespace-separated words.
func estimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}

// Document retrieves a generated document by ID.
func (s *Service) Document(id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// UsageStats returns the session token usage summary.
func (s *Service) UsageStats() UsageSummary {
	return s.tracker.Summary()
}

// ClearCache drops all retained documents and returns how many were
// removed.
func (s *Service) ClearCache() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.documents)
	s.documents = make(map[string][]byte)
	return n
}
