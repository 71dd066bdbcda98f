package rfp

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"draftdesk/internal/ai"
)

// Organization identifies the bidding firm in generated proposals.
type Organization struct {
	Name       string
	Currency   string
	DefaultTax float64
}

// DefaultOrg is used when the caller provides a zero Organization.
var DefaultOrg = Organization{
	Name:       "DraftDesk Consulting",
	Currency:   "USD",
	DefaultTax: 10,
}

// proposalTemplate is the JSON shape the model is asked to fill in.
const proposalTemplate = `{
  "client_name": string,
  "project_title": string,
  "executive_summary": string,
  "scope_of_work": [string],
  "deliverables": [string],
  "prerequisites": [string],
  "scope_exclusions": [string],
  "assumptions": [string],
  "customer_obligations": [string],
  "timeline": [{"phase": string, "duration": string, "milestones": [string]}],
  "resource_plan": [{"role": string, "count": number, "mode": "onsite" | "offshore" | "remote"}],
  "commercials": {
    "currency": string,
    "line_items": [{"name": string, "unit": string, "qty": number, "rate": number}],
    "discount_percent": number,
    "tax_percent": number,
    "payment_terms_summary": string,
    "out_of_pocket_expenses": [string],
    "payment_milestones": [{"description": string, "percent": number, "amount": number}]
  },
  "payment_terms_details": [string],
  "acceptance_criteria": [string],
  "validity": "30 days"
}`

// Generator drafts proposals from RFP text using the configured model.
type Generator struct {
	client ai.Client
	logger *zap.Logger
	org    Organization
}

// NewGenerator creates a proposal generator. A zero org falls back to
// DefaultOrg.
func NewGenerator(client ai.Client, logger *zap.Logger, org Organization) *Generator {
	if org.Name == "" {
		org = DefaultOrg
	}
	return &Generator{client: client, logger: logger, org: org}
}

// Generate asks the model to compose a proposal from the RFP text. If the
// model fails or returns unparseable JSON, a deterministic fallback
// proposal is drafted instead; Generate never returns an error for model
// failures.
func (g *Generator) Generate(ctx context.Context, rfpText string, meta Meta) Proposal {
	resp, err := g.client.Complete(ctx, ai.Request{
		System:      fmt.Sprintf("You are a senior proposal writer for %s. Produce clean JSON only.", g.org.Name),
		Prompt:      g.buildPrompt(rfpText),
		MaxTokens:   3000,
		Temperature: 0.2,
	})
	if err != nil {
		g.logger.Warn("proposal generation failed, using fallback", zap.Error(err))
		return g.applyMeta(g.fallbackProposal(rfpText), meta)
	}

	proposal, ok := parseProposal(resp.Text)
	if !ok {
		g.logger.Warn("model returned unparseable proposal JSON, using fallback")
		return g.applyMeta(g.fallbackProposal(rfpText), meta)
	}

	proposal = g.applyMeta(proposal, meta)
	proposal = g.normalize(proposal)
	g.logger.Info("proposal generated", zap.String("client", proposal.ClientName))
	return proposal
}

func (g *Generator) buildPrompt(rfpText string) string {
	var b strings.Builder
	b.WriteString("From the following RFP text, extract/compose a proposal structure. Return ONLY valid JSON matching:\n")
	b.WriteString(proposalTemplate)
	b.WriteString("\n\nRFP TEXT:\n\n")
	b.WriteString(rfpText)
	b.WriteString("\n\nKeep the narrative polished and concise. Ensure payment_milestones percentages sum to 100 ")
	b.WriteString("and amount equals percent of the overall grand total (rounded to two decimals). ")
	b.WriteString("If some fields are missing, infer reasonable defaults for a mid-size banking/fintech implementation. ")
	b.WriteString("Avoid hallucinations about specific vendor SKUs unless clearly in the RFP.")
	return b.String()
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// parseProposal extracts the first JSON object from the model reply and
// maps it onto a Proposal.
func parseProposal(text string) (Proposal, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		match := jsonObject.FindString(text)
		if match == "" {
			return Proposal{}, false
		}
		text = match
	}
	if !gjson.Valid(text) {
		return Proposal{}, false
	}
	root := gjson.Parse(text)
	if !root.IsObject() {
		return Proposal{}, false
	}

	p := Proposal{
		ClientName:          root.Get("client_name").String(),
		ProjectTitle:        root.Get("project_title").String(),
		ExecutiveSummary:    root.Get("executive_summary").String(),
		ScopeOfWork:         stringSlice(root.Get("scope_of_work")),
		Deliverables:        stringSlice(root.Get("deliverables")),
		Prerequisites:       stringSlice(root.Get("prerequisites")),
		ScopeExclusions:     stringSlice(root.Get("scope_exclusions")),
		Assumptions:         stringSlice(root.Get("assumptions")),
		CustomerObligations: stringSlice(root.Get("customer_obligations")),
		PaymentTermsDetails: stringSlice(root.Get("payment_terms_details")),
		AcceptanceCriteria:  stringSlice(root.Get("acceptance_criteria")),
		Validity:            root.Get("validity").String(),
	}

	root.Get("timeline").ForEach(func(_, v gjson.Result) bool {
		p.Timeline = append(p.Timeline, TimelinePhase{
			Phase:      v.Get("phase").String(),
			Duration:   v.Get("duration").String(),
			Milestones: stringSlice(v.Get("milestones")),
		})
		return true
	})

	root.Get("resource_plan").ForEach(func(_, v gjson.Result) bool {
		p.ResourcePlan = append(p.ResourcePlan, ResourcePlan{
			Role:  v.Get("role").String(),
			Count: int(v.Get("count").Int()),
			Mode:  v.Get("mode").String(),
		})
		return true
	})

	comm := root.Get("commercials")
	p.Commercials = CommercialInfo{
		Currency:            comm.Get("currency").String(),
		DiscountPercent:     comm.Get("discount_percent").Float(),
		TaxPercent:          comm.Get("tax_percent").Float(),
		PaymentTermsSummary: comm.Get("payment_terms_summary").String(),
		OutOfPocketExpenses: stringSlice(comm.Get("out_of_pocket_expenses")),
	}
	comm.Get("line_items").ForEach(func(_, v gjson.Result) bool {
		p.Commercials.LineItems = append(p.Commercials.LineItems, CommercialLineItem{
			Name: v.Get("name").String(),
			Unit: v.Get("unit").String(),
			Qty:  v.Get("qty").Float(),
			Rate: v.Get("rate").Float(),
		})
		return true
	})
	comm.Get("payment_milestones").ForEach(func(_, v gjson.Result) bool {
		p.Commercials.PaymentMilestones = append(p.Commercials.PaymentMilestones, PaymentMilestone{
			Description: v.Get("description").String(),
			Percent:     v.Get("percent").Float(),
			Amount:      v.Get("amount").Float(),
		})
		return true
	})

	return p, true
}

func stringSlice(r gjson.Result) []string {
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

func (g *Generator) applyMeta(p Proposal, meta Meta) Proposal {
	if meta.ClientName != "" {
		p.ClientName = meta.ClientName
	}
	if meta.ProjectTitle != "" {
		p.ProjectTitle = meta.ProjectTitle
	}
	return p
}

// normalize repairs commercial figures: clamps the discount, fills default
// currency and tax, and rescales payment milestones so percentages sum to
// 100 with amounts derived from the grand total.
func (g *Generator) normalize(p Proposal) Proposal {
	comm := &p.Commercials
	if comm.Currency == "" {
		comm.Currency = g.org.Currency
	}
	comm.DiscountPercent = math.Max(0, math.Min(100, comm.DiscountPercent))
	if comm.TaxPercent == 0 {
		comm.TaxPercent = g.org.DefaultTax
	}

	subtotal := 0.0
	for _, item := range comm.LineItems {
		subtotal += item.Qty * item.Rate
	}
	taxable := subtotal - subtotal*(comm.DiscountPercent/100)
	grandTotal := taxable + taxable*(comm.TaxPercent/100)

	if len(comm.PaymentMilestones) > 0 {
		totalPercent := 0.0
		for _, m := range comm.PaymentMilestones {
			totalPercent += m.Percent
		}
		if totalPercent != 100 && totalPercent > 0 {
			factor := 100 / totalPercent
			for i := range comm.PaymentMilestones {
				m := &comm.PaymentMilestones[i]
				m.Percent = round2(m.Percent * factor)
				m.Amount = round2(grandTotal * (m.Percent / 100))
			}
		}
	}

	if p.Validity == "" {
		p.Validity = "30 days from issue date"
	}
	return p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fallbackProposal drafts a proposal locally when the model is
// unavailable.
func (g *Generator) fallbackProposal(rfpText string) Proposal {
	snippet := SummarySnippet(rfpText)
	if len(snippet) > 400 {
		snippet = snippet[:400]
	}

	lineItems := []CommercialLineItem{
		{Name: "Professional Services Engagement", Unit: "Engagement", Qty: 1, Rate: 120000},
	}
	subtotal := 0.0
	for _, item := range lineItems {
		subtotal += item.Qty * item.Rate
	}
	grandTotal := subtotal + subtotal*(g.org.DefaultTax/100)

	return Proposal{
		ClientName:   "Client",
		ProjectTitle: "Implementation Proposal (Auto-generated)",
		ExecutiveSummary: fmt.Sprintf("This proposal was auto-generated from the provided RFP. It outlines how %s "+
			"accelerates delivery on the requested platform. RFP excerpt: %s", g.org.Name, snippet),
		ScopeOfWork: []string{
			"Discovery and fit-gap assessment across priority business processes",
			"Solution design, configuration, and controlled extensions following platform best practices",
			"Data migration, integration enablement, and environment readiness",
			"End-to-end testing, cutover orchestration, and hypercare support",
		},
		Deliverables: []string{
			"Solution blueprint and configuration workbooks",
			"Provisioned test and production environments",
			"Integration and migration runbooks with validation sign-offs",
			"Knowledge transfer and enablement sessions for operations teams",
		},
		Prerequisites: []string{
			"Customer confirms platform subscriptions and grants environment access ahead of discovery",
			"Required licenses and approvals are available before configuration begins",
			"Client subject-matter experts for each process area are identified for workshops",
		},
		ScopeExclusions: []string{
			"Procurement of new licenses beyond agreed scope",
			"Custom development outside approved extension frameworks",
			"Legacy system remediation unrelated to the programme",
		},
		Assumptions: []string{
			"Client provides timely access to environments, integration endpoints, and decision-makers",
			"Standard adapters and accelerators are sufficient unless otherwise documented",
			"Third-party vendors collaborate on integration touchpoints as needed",
		},
		CustomerObligations: []string{
			"Nominate product owners and process leads for each functional tower",
			"Provide connectivity, VPN, and service-request access for project resources",
			"Review and sign off design, build, and test deliverables within agreed timelines",
		},
		Timeline: []TimelinePhase{
			{Phase: "Mobilization", Duration: "3 weeks", Milestones: []string{"Mobilization complete", "Discovery workshops finished"}},
			{Phase: "Solution Build", Duration: "4 months", Milestones: []string{"Configuration baselined", "Integration cycle complete"}},
			{Phase: "Transition & Hypercare", Duration: "4 weeks", Milestones: []string{"Production cutover executed", "Hypercare exit"}},
		},
		ResourcePlan: []ResourcePlan{
			{Role: "Program Manager", Count: 1, Mode: "onsite"},
			{Role: "Solution Architect", Count: 1, Mode: "offshore"},
			{Role: "Technical Consultant", Count: 2, Mode: "offshore"},
			{Role: "Integration Specialist", Count: 1, Mode: "offshore"},
		},
		Commercials: CommercialInfo{
			Currency:            g.org.Currency,
			LineItems:           lineItems,
			DiscountPercent:     0,
			TaxPercent:          g.org.DefaultTax,
			PaymentTermsSummary: "Delivery services billed against milestone completions; invoices due net 30 days.",
			OutOfPocketExpenses: []string{
				"Economy airfare and local transit in line with delivery governance",
				"Hotel accommodation aligned with client travel policy during workshops",
				"Visa and work permit costs for delivery resources, if applicable",
			},
			PaymentMilestones: []PaymentMilestone{
				{Description: "Mobilization and environment readiness", Percent: 30, Amount: round2(grandTotal * 0.30)},
				{Description: "Solution build and conference room pilot sign-off", Percent: 40, Amount: round2(grandTotal * 0.40)},
				{Description: "Production go-live and hypercare closure", Percent: 30, Amount: round2(grandTotal * 0.30)},
			},
		},
		PaymentTermsDetails: []string{
			"Invoices payable within 30 calendar days from submission.",
			"Out-of-pocket expenses billed at actuals upon submission of receipts and client approval.",
			"All commercials exclude applicable taxes and duties unless stated otherwise.",
		},
		AcceptanceCriteria: []string{
			"Configured modules approved by business process owners",
			"Successful completion of SIT and UAT cycles with client sign-off",
			"Operational handover and knowledge transfer completed",
		},
		Validity: "30 days from issue date",
	}
}
