package rfp

import (
	"regexp"
	"sort"
	"strings"
)

// Classification categories and the keywords that vote for them.
var classificationCatalog = map[string][]string{
	"Resource Augmentation": {
		"resource augmentation", "staff augmentation", "contract staffing",
		"augmentation support", "manpower supply", "resource support", "team augmentation",
	},
	"Upgradation": {
		"upgrade", "upgradation", "modernization", "migration", "version upgrade",
		"enhancement", "technology refresh", "system upgrade",
	},
	"Managed Service": {
		"managed service", "managed services", "operations and maintenance",
		"operation & maintenance", "support services", "outsourcing",
		"service management", "service desk", "24x7 support", "managed operations",
	},
	"New Installation": {
		"implementation", "installation", "deploy", "deployment", "rollout",
		"greenfield", "set up", "setup", "new system", "install",
		"core banking system implementation",
	},
}

// Classify scores the RFP text against the category catalog. The
// highest-scoring category wins; zero matches fall back to General
// Services with low confidence.
func Classify(text string) Classification {
	if strings.TrimSpace(text) == "" {
		return Classification{Category: "Not enough information", Confidence: "low", MatchedKeywords: []string{}}
	}

	normalized := strings.ToLower(text)

	type tally struct {
		category string
		score    int
		hits     []string
	}
	var tallies []tally

	for category, keywords := range classificationCatalog {
		t := tally{category: category}
		for _, keyword := range keywords {
			pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
			if n := len(pattern.FindAllStringIndex(normalized, -1)); n > 0 {
				t.score += n
				t.hits = append(t.hits, keyword)
			}
		}
		tallies = append(tallies, t)
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].score != tallies[j].score {
			return tallies[i].score > tallies[j].score
		}
		return tallies[i].category < tallies[j].category
	})

	top := tallies[0]
	if top.score == 0 {
		return Classification{Category: "General Services", Confidence: "low", MatchedKeywords: []string{}}
	}

	confidence := "low"
	switch {
	case top.score >= 4:
		confidence = "high"
	case top.score >= 2:
		confidence = "medium"
	}

	return Classification{Category: top.category, Confidence: confidence, MatchedKeywords: top.hits}
}

// Line-anchored patterns for submission details. The first match per
// field wins.
var submissionPatterns = map[string][]*regexp.Regexp{
	"issuance_date": compileAll(
		`date of issuance[:\-]\s*([^\n]+)`,
		`issuance date[:\-]\s*([^\n]+)`,
		`issue date[:\-]\s*([^\n]+)`,
	),
	"submission_deadline": compileAll(
		`submission deadline[:\-]\s*([^\n]+)`,
		`proposal submission deadline[:\-]\s*([^\n]+)`,
		`submission date[:\-]\s*([^\n]+)`,
		`closing date[:\-]\s*([^\n]+)`,
		`last date for submission[:\-]\s*([^\n]+)`,
		`deadline[:\-]\s*([^\n]+)`,
	),
	"clarification_deadline": compileAll(
		`clarification deadline[:\-]\s*([^\n]+)`,
		`clarifications deadline[:\-]\s*([^\n]+)`,
		`questions deadline[:\-]\s*([^\n]+)`,
		`query deadline[:\-]\s*([^\n]+)`,
		`last date for clarifications[:\-]\s*([^\n]+)`,
	),
	"submission_method": compileAll(
		`submission method[:\-]\s*([^\n]+)`,
		`mode of submission[:\-]\s*([^\n]+)`,
		`submission process[:\-]\s*([^\n]+)`,
		`submission email[:\-]\s*([^\n]+)`,
		`submission address[:\-]\s*([^\n]+)`,
	),
	"contacts": compileAll(
		`contact person[:\-]\s*([^\n]+)`,
		`contact[:\-]\s*([^\n]+)`,
		`email[:\-]\s*([^\n]+)`,
		`point of contact[:\-]\s*([^\n]+)`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// ExtractSubmissionInfo scrapes submission dates, method, and contacts
// from the RFP text.
func ExtractSubmissionInfo(text string) SubmissionInfo {
	find := func(field string) string {
		for _, re := range submissionPatterns[field] {
			if m := re.FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
		return ""
	}

	return SubmissionInfo{
		IssuanceDate:          find("issuance_date"),
		SubmissionDeadline:    find("submission_deadline"),
		ClarificationDeadline: find("clarification_deadline"),
		SubmissionMethod:      find("submission_method"),
		Contacts:              find("contacts"),
	}
}

const summaryMaxLength = 420

var whitespaceRun = regexp.MustCompile(`\s+`)

// SummarySnippet collapses whitespace and truncates the text to a short
// preview. Truncation counts runes so multibyte text is never split.
func SummarySnippet(text string) string {
	cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	runes := []rune(cleaned)
	if len(runes) <= summaryMaxLength {
		return cleaned
	}
	return string(runes[:summaryMaxLength]) + "…"
}

// Analyze runs the full deterministic analysis pipeline over RFP text.
func Analyze(text string) Analysis {
	return Analysis{
		Type:                   Classify(text),
		Summary:                SummarySnippet(text),
		FunctionalRequirements: []string{},
		TechnicalRequirements:  []string{},
		Services:               []string{},
		Submission:             ExtractSubmissionInfo(text),
		EvaluationFocus:        []string{},
		OptionalComponents:     []string{},
		Risks:                  []string{},
	}
}
