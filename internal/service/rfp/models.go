// Package rfp analyzes RFP documents and drafts proposals from them.
//
// Analysis is deterministic: keyword classification, regex submission
// signals, and a summary snippet. Proposal drafting calls the configured
// model and falls back to a canned proposal when the model cannot produce
// valid JSON.
package rfp

// Classification labels an RFP with a category and match confidence.
type Classification struct {
	Category        string   `json:"category"`
	Confidence      string   `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// SubmissionInfo carries dates and contacts scraped from the RFP text.
type SubmissionInfo struct {
	IssuanceDate          string `json:"issuance_date,omitempty"`
	SubmissionDeadline    string `json:"submission_deadline,omitempty"`
	ClarificationDeadline string `json:"clarification_deadline,omitempty"`
	SubmissionMethod      string `json:"submission_method,omitempty"`
	Contacts              string `json:"contacts,omitempty"`
}

// Analysis is the full result of analyzing one RFP.
type Analysis struct {
	Type                   Classification `json:"rfp_type"`
	Summary                string         `json:"summary"`
	IssuingOrganization    string         `json:"issuing_organization,omitempty"`
	Scope                  string         `json:"scope,omitempty"`
	FunctionalRequirements []string       `json:"functional_requirements"`
	TechnicalRequirements  []string       `json:"technical_requirements"`
	Services               []string       `json:"services"`
	Submission             SubmissionInfo `json:"submission"`
	EvaluationFocus        []string       `json:"evaluation_focus"`
	OptionalComponents     []string       `json:"optional_components"`
	Risks                  []string       `json:"risks"`
}

// CommercialLineItem is one billable row in the commercial section.
type CommercialLineItem struct {
	Name string  `json:"name"`
	Unit string  `json:"unit"`
	Qty  float64 `json:"qty"`
	Rate float64 `json:"rate"`
}

// PaymentMilestone ties a payment percentage to a delivery event.
type PaymentMilestone struct {
	Description string  `json:"description"`
	Percent     float64 `json:"percent"`
	Amount      float64 `json:"amount"`
}

// ResourcePlan is one staffing row.
type ResourcePlan struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
	Mode  string `json:"mode,omitempty"`
}

// TimelinePhase is one phase of the delivery plan.
type TimelinePhase struct {
	Phase      string   `json:"phase"`
	Duration   string   `json:"duration"`
	Milestones []string `json:"milestones"`
}

// CommercialInfo groups pricing, taxes, and payment structure.
type CommercialInfo struct {
	Currency            string               `json:"currency"`
	LineItems           []CommercialLineItem `json:"line_items"`
	DiscountPercent     float64              `json:"discount_percent"`
	TaxPercent          float64              `json:"tax_percent"`
	PaymentTermsSummary string               `json:"payment_terms_summary"`
	OutOfPocketExpenses []string             `json:"out_of_pocket_expenses"`
	PaymentMilestones   []PaymentMilestone   `json:"payment_milestones"`
}

// Proposal is the complete drafted proposal.
type Proposal struct {
	ClientName          string          `json:"client_name"`
	ProjectTitle        string          `json:"project_title"`
	ExecutiveSummary    string          `json:"executive_summary"`
	ScopeOfWork         []string        `json:"scope_of_work"`
	Deliverables        []string        `json:"deliverables"`
	Prerequisites       []string        `json:"prerequisites"`
	ScopeExclusions     []string        `json:"scope_exclusions"`
	Assumptions         []string        `json:"assumptions"`
	CustomerObligations []string        `json:"customer_obligations"`
	Timeline            []TimelinePhase `json:"timeline"`
	ResourcePlan        []ResourcePlan  `json:"resource_plan"`
	Commercials         CommercialInfo  `json:"commercials"`
	PaymentTermsDetails []string        `json:"payment_terms_details"`
	AcceptanceCriteria  []string        `json:"acceptance_criteria"`
	Validity            string          `json:"validity"`
}

// Meta carries caller overrides applied after generation.
type Meta struct {
	ClientName   string `json:"client_name,omitempty"`
	ProjectTitle string `json:"project_title,omitempty"`
}
