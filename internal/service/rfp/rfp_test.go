package rfp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"draftdesk/internal/ai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCategory string
		wantConf     string
	}{
		{
			name:         "empty text",
			text:         "   ",
			wantCategory: "Not enough information",
			wantConf:     "low",
		},
		{
			name:         "no catalog hits",
			text:         "please provide a quotation for office furniture",
			wantCategory: "General Services",
			wantConf:     "low",
		},
		{
			name:         "single hit is low confidence",
			text:         "we require staff augmentation for our project",
			wantCategory: "Resource Augmentation",
			wantConf:     "low",
		},
		{
			name:         "two hits is medium confidence",
			text:         "we require staff augmentation and team augmentation services",
			wantCategory: "Resource Augmentation",
			wantConf:     "medium",
		},
		{
			name: "four hits is high confidence",
			text: "managed services for operations and maintenance with a service desk and 24x7 support",
			wantCategory: "Managed Service",
			wantConf:     "high",
		},
		{
			name:         "upgrade beats single install mention",
			text:         "upgrade and migration of the platform, plus install of one tool",
			wantCategory: "Upgradation",
			wantConf:     "medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q (matched %v)", got.Category, tt.wantCategory, got.MatchedKeywords)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %q, want %q", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestExtractSubmissionInfo(t *testing.T) {
	text := `REQUEST FOR PROPOSAL

Issuance Date: 2026-01-15
Submission Deadline: 2026-02-28 17:00 GST
Clarification Deadline: 2026-02-01
Mode of Submission: sealed electronic tender portal
Contact Person: procurement@example.org
`
	info := ExtractSubmissionInfo(text)

	if info.IssuanceDate != "2026-01-15" {
		t.Errorf("IssuanceDate = %q", info.IssuanceDate)
	}
	if info.SubmissionDeadline != "2026-02-28 17:00 GST" {
		t.Errorf("SubmissionDeadline = %q", info.SubmissionDeadline)
	}
	if info.ClarificationDeadline != "2026-02-01" {
		t.Errorf("ClarificationDeadline = %q", info.ClarificationDeadline)
	}
	if info.SubmissionMethod != "sealed electronic tender portal" {
		t.Errorf("SubmissionMethod = %q", info.SubmissionMethod)
	}
	if info.Contacts != "procurement@example.org" {
		t.Errorf("Contacts = %q", info.Contacts)
	}
}

func TestExtractSubmissionInfoMissingFields(t *testing.T) {
	info := ExtractSubmissionInfo("no structured signals here")
	if info != (SubmissionInfo{}) {
		t.Errorf("info = %+v, want zero value", info)
	}
}

func TestSummarySnippet(t *testing.T) {
	if got := SummarySnippet("  short   text\n\nwith   gaps  "); got != "short text with gaps" {
		t.Errorf("SummarySnippet = %q", got)
	}

	long := strings.Repeat("word ", 200)
	got := SummarySnippet(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("long snippet should be truncated with ellipsis, got %q", got[len(got)-10:])
	}
	if len([]rune(got)) != summaryMaxLength+1 {
		t.Errorf("snippet length = %d runes, want %d", len([]rune(got)), summaryMaxLength+1)
	}
}

func TestAnalyze(t *testing.T) {
	text := `RFP for managed services and 24x7 support of core banking operations.
Submission Deadline: 2026-03-01`

	analysis := Analyze(text)
	if analysis.Type.Category != "Managed Service" {
		t.Errorf("Category = %q", analysis.Type.Category)
	}
	if analysis.Submission.SubmissionDeadline != "2026-03-01" {
		t.Errorf("SubmissionDeadline = %q", analysis.Submission.SubmissionDeadline)
	}
	if analysis.Summary == "" {
		t.Error("expected non-empty summary")
	}
	if analysis.FunctionalRequirements == nil || analysis.Risks == nil {
		t.Error("list fields should be empty, not nil")
	}
}

// stubClient returns a canned completion.
type stubClient struct {
	text string
	err  error
}

func (c *stubClient) Complete(context.Context, ai.Request) (ai.Response, error) {
	if c.err != nil {
		return ai.Response{}, c.err
	}
	return ai.Response{Text: c.text}, nil
}

func (c *stubClient) Stream(_ context.Context, _ ai.Request, fn func(ai.Chunk) error) error {
	if c.err != nil {
		return c.err
	}
	return fn(ai.Chunk{Content: c.text})
}

const proposalJSON = `Here is the proposal:
{
  "client_name": "Acme Bank",
  "project_title": "Core Banking Upgrade",
  "executive_summary": "Upgrade the core.",
  "scope_of_work": ["Discovery", "Build", ""],
  "deliverables": ["Blueprint"],
  "timeline": [{"phase": "Build", "duration": "2 months", "milestones": ["CRP done"]}],
  "resource_plan": [{"role": "Architect", "count": 1, "mode": "onsite"}],
  "commercials": {
    "currency": "",
    "line_items": [{"name": "Services", "unit": "Engagement", "qty": 1, "rate": 100000}],
    "discount_percent": 0,
    "tax_percent": 0,
    "payment_terms_summary": "Net 30",
    "payment_milestones": [
      {"description": "Kickoff", "percent": 40, "amount": 0},
      {"description": "Go-live", "percent": 40, "amount": 0}
    ]
  },
  "validity": ""
}`

func TestGenerateParsesModelJSON(t *testing.T) {
	gen := NewGenerator(&stubClient{text: proposalJSON}, zap.NewNop(), Organization{})

	p := gen.Generate(context.Background(), "rfp text", Meta{})
	if p.ClientName != "Acme Bank" {
		t.Errorf("ClientName = %q", p.ClientName)
	}
	if len(p.ScopeOfWork) != 2 {
		t.Errorf("ScopeOfWork = %v, want blanks dropped", p.ScopeOfWork)
	}
	if len(p.Timeline) != 1 || p.Timeline[0].Phase != "Build" {
		t.Errorf("Timeline = %+v", p.Timeline)
	}
	if p.ResourcePlan[0].Count != 1 {
		t.Errorf("ResourcePlan = %+v", p.ResourcePlan)
	}
}

func TestGenerateNormalizesCommercials(t *testing.T) {
	gen := NewGenerator(&stubClient{text: proposalJSON}, zap.NewNop(), Organization{})

	p := gen.Generate(context.Background(), "rfp text", Meta{})
	comm := p.Commercials

	if comm.Currency != DefaultOrg.Currency {
		t.Errorf("Currency = %q, want org default", comm.Currency)
	}
	if comm.TaxPercent != DefaultOrg.DefaultTax {
		t.Errorf("TaxPercent = %v, want org default", comm.TaxPercent)
	}

	// Milestones were 40+40; rescaled to sum to 100.
	total := 0.0
	for _, m := range comm.PaymentMilestones {
		total += m.Percent
	}
	if total != 100 {
		t.Errorf("milestone percents sum to %v, want 100", total)
	}
	// Grand total: 100000 * 1.10 tax = 110000; each milestone 50%.
	if comm.PaymentMilestones[0].Amount != 55000 {
		t.Errorf("milestone amount = %v, want 55000", comm.PaymentMilestones[0].Amount)
	}
	if p.Validity != "30 days from issue date" {
		t.Errorf("Validity = %q, want default", p.Validity)
	}
}

func TestGenerateAppliesMetaOverrides(t *testing.T) {
	gen := NewGenerator(&stubClient{text: proposalJSON}, zap.NewNop(), Organization{})

	p := gen.Generate(context.Background(), "rfp text", Meta{ClientName: "Override Corp", ProjectTitle: "New Title"})
	if p.ClientName != "Override Corp" || p.ProjectTitle != "New Title" {
		t.Errorf("meta overrides not applied: %q, %q", p.ClientName, p.ProjectTitle)
	}
}

func TestGenerateFallsBackOnClientError(t *testing.T) {
	gen := NewGenerator(&stubClient{err: errors.New("model down")}, zap.NewNop(), Organization{})

	p := gen.Generate(context.Background(), "some rfp text", Meta{ClientName: "Acme"})
	if p.ClientName != "Acme" {
		t.Errorf("ClientName = %q, want meta override on fallback", p.ClientName)
	}
	if len(p.ScopeOfWork) == 0 || len(p.Commercials.PaymentMilestones) != 3 {
		t.Error("fallback proposal should carry canned content")
	}
	if !strings.Contains(p.ExecutiveSummary, "some rfp text") {
		t.Error("fallback summary should quote the RFP excerpt")
	}
}

func TestGenerateFallsBackOnBadJSON(t *testing.T) {
	gen := NewGenerator(&stubClient{text: "sorry, I cannot produce JSON"}, zap.NewNop(), Organization{})

	p := gen.Generate(context.Background(), "rfp", Meta{})
	if p.ProjectTitle != "Implementation Proposal (Auto-generated)" {
		t.Errorf("ProjectTitle = %q, want fallback proposal", p.ProjectTitle)
	}
}

func TestRenderMarkdown(t *testing.T) {
	gen := NewGenerator(&stubClient{err: errors.New("skip model")}, zap.NewNop(), Organization{})
	p := gen.Generate(context.Background(), "rfp", Meta{ClientName: "Acme Bank"})

	md := RenderMarkdown(p, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"# Implementation Proposal (Auto-generated)",
		"**Prepared for:** Acme Bank",
		"**Date:** 2026-08-23",
		"## Executive Summary",
		"## Scope of Work",
		"## Timeline",
		"| Phase | Duration | Milestones |",
		"## Commercials",
		"**Grand Total:",
		"## Validity",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
