package fsd

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"draftdesk/internal/ai"
)

// Sections holds the four core FSD sections.
type Sections struct {
	Introduction       string `json:"introduction"`
	RequirementOverview string `json:"requirement_overview"`
	CurrentFunctionality string `json:"current_functionality"`
	ProposedApproach   string `json:"proposed_functional_approach"`
}

const sectionSystemPrompt = "You are a document analysis assistant. You extract named sections " +
	"from FSD documents and respond with JSON only."

// ExtractSections asks the model to split a generated document back into
// its four core sections. When the model response is not valid JSON the
// sections are recovered heuristically from the markdown headings.
func (s *Service) ExtractSections(ctx context.Context, content string) (Sections, error) {
	if len(content) > maxSectionInput {
		content = content[:maxSectionInput]
	}

	resp, err := s.client.Complete(ctx, ai.Request{
		System:      sectionSystemPrompt,
		Prompt:      buildSectionPrompt(content),
		MaxTokens:   1500,
		Temperature: 0,
	})
	if err != nil {
		return Sections{}, fmt.Errorf("fsd: extract sections: %w", err)
	}

	usage := resp.Usage
	if usage.Total() == 0 {
		usage = ai.Usage{
			InputTokens:  estimateTokens(content),
			OutputTokens: estimateTokens(resp.Text),
		}
	}
	s.tracker.Log(OpSectionExtraction, usage, fmt.Sprintf("document: %d chars", len(content)))

	if sections, ok := parseSectionJSON(resp.Text); ok {
		return sections, nil
	}
	return splitByHeadings(content), nil
}

func buildSectionPrompt(content string) string {
	var b strings.Builder
	b.WriteString("Extract the four core sections from this FSD document.\n\n")
	b.WriteString("Respond with a JSON object using exactly these keys: ")
	b.WriteString(`"introduction", "requirement_overview", "current_functionality", "proposed_functional_approach".`)
	b.WriteString("\nUse an empty string for any section that is missing.\n\nDocument:\n")
	b.WriteString(content)
	return b.String()
}

// parseSectionJSON reads the model's JSON reply, tolerating markdown code
// fences around the object.
func parseSectionJSON(text string) (Sections, bool) {
	text = stripCodeFence(text)
	if !gjson.Valid(text) {
		return Sections{}, false
	}
	root := gjson.Parse(text)
	if !root.IsObject() {
		return Sections{}, false
	}
	return Sections{
		Introduction:        strings.TrimSpace(root.Get("introduction").String()),
		RequirementOverview: strings.TrimSpace(root.Get("requirement_overview").String()),
		CurrentFunctionality: strings.TrimSpace(root.Get("current_functionality").String()),
		ProposedApproach:    strings.TrimSpace(root.Get("proposed_functional_approach").String()),
	}, true
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

var sectionHeading = regexp.MustCompile(`(?im)^(?:#+\s*)?(?:\d+\.\s*)?(INTRODUCTION|REQUIREMENT OVERVIEW|CURRENT FUNCTIONALITY|PROPOSED FUNCTIONAL APPROACH)\s*$`)

// splitByHeadings recovers sections directly from the document headings.
func splitByHeadings(content string) Sections {
	matches := sectionHeading.FindAllStringSubmatchIndex(content, -1)

	var out Sections
	for i, m := range matches {
		start := m[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(content[start:end])
		switch strings.ToUpper(content[m[2]:m[3]]) {
		case "INTRODUCTION":
			out.Introduction = body
		case "REQUIREMENT OVERVIEW":
			out.RequirementOverview = body
		case "CURRENT FUNCTIONALITY":
			out.CurrentFunctionality = body
		case "PROPOSED FUNCTIONAL APPROACH":
			out.ProposedApproach = body
		}
	}
	return out
}
