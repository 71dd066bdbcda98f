package rfp

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown lays out the proposal as a markdown document suitable
// for download or for seeding a canvas draft.
func RenderMarkdown(p Proposal, today time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.ProjectTitle)
	fmt.Fprintf(&b, "**Prepared for:** %s  \n", p.ClientName)
	fmt.Fprintf(&b, "**Date:** %s\n\n", today.Format("2006-01-02"))

	section(&b, "Executive Summary")
	b.WriteString(p.ExecutiveSummary)
	b.WriteString("\n\n")

	bulletSection(&b, "Scope of Work", p.ScopeOfWork)
	bulletSection(&b, "Deliverables", p.Deliverables)
	bulletSection(&b, "Prerequisites", p.Prerequisites)
	bulletSection(&b, "Scope Exclusions", p.ScopeExclusions)
	bulletSection(&b, "Assumptions", p.Assumptions)
	bulletSection(&b, "Customer Obligations", p.CustomerObligations)

	if len(p.Timeline) > 0 {
		section(&b, "Timeline")
		b.WriteString("| Phase | Duration | Milestones |\n|---|---|---|\n")
		for _, phase := range p.Timeline {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", phase.Phase, phase.Duration, strings.Join(phase.Milestones, "; "))
		}
		b.WriteString("\n")
	}

	if len(p.ResourcePlan) > 0 {
		section(&b, "Resource Plan")
		b.WriteString("| Role | Count | Mode |\n|---|---|---|\n")
		for _, r := range p.ResourcePlan {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", r.Role, r.Count, r.Mode)
		}
		b.WriteString("\n")
	}

	renderCommercials(&b, p.Commercials)

	bulletSection(&b, "Payment Terms", p.PaymentTermsDetails)
	bulletSection(&b, "Acceptance Criteria", p.AcceptanceCriteria)

	section(&b, "Validity")
	b.WriteString(p.Validity)
	b.WriteString("\n")

	return b.String()
}

func renderCommercials(b *strings.Builder, comm CommercialInfo) {
	section(b, "Commercials")

	subtotal := 0.0
	if len(comm.LineItems) > 0 {
		fmt.Fprintf(b, "| Item | Unit | Qty | Rate (%s) | Amount (%s) |\n|---|---|---|---|---|\n", comm.Currency, comm.Currency)
		for _, item := range comm.LineItems {
			amount := item.Qty * item.Rate
			subtotal += amount
			fmt.Fprintf(b, "| %s | %s | %.2f | %.2f | %.2f |\n", item.Name, item.Unit, item.Qty, item.Rate, amount)
		}
		b.WriteString("\n")
	}

	discount := subtotal * (comm.DiscountPercent / 100)
	taxable := subtotal - discount
	tax := taxable * (comm.TaxPercent / 100)
	grandTotal := taxable + tax

	fmt.Fprintf(b, "- Subtotal: %.2f %s\n", subtotal, comm.Currency)
	if comm.DiscountPercent > 0 {
		fmt.Fprintf(b, "- Discount (%.1f%%): -%.2f %s\n", comm.DiscountPercent, discount, comm.Currency)
	}
	fmt.Fprintf(b, "- Tax (%.1f%%): %.2f %s\n", comm.TaxPercent, tax, comm.Currency)
	fmt.Fprintf(b, "- **Grand Total: %.2f %s**\n\n", grandTotal, comm.Currency)

	if comm.PaymentTermsSummary != "" {
		fmt.Fprintf(b, "%s\n\n", comm.PaymentTermsSummary)
	}

	if len(comm.PaymentMilestones) > 0 {
		b.WriteString("**Payment Milestones**\n\n| Milestone | Percent | Amount |\n|---|---|---|\n")
		for _, m := range comm.PaymentMilestones {
			fmt.Fprintf(b, "| %s | %.2f%% | %.2f |\n", m.Description, m.Percent, m.Amount)
		}
		b.WriteString("\n")
	}

	if len(comm.OutOfPocketExpenses) > 0 {
		b.WriteString("**Out-of-Pocket Expenses**\n\n")
		for _, e := range comm.OutOfPocketExpenses {
			fmt.Fprintf(b, "- %s\n", e)
		}
		b.WriteString("\n")
	}
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "## %s\n\n", title)
}

func bulletSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	section(b, title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
