package triage

import (
	"fmt"
	"strings"

	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/token"
)

const classifySystemPrompt = `You are a workplace-issue triage assistant.
Classify the situation into exactly one category and estimate how risky it is
for the worker on a 0-100 scale.

Categories: wage, dismissal, working-hours, harassment, leave, insurance,
contract-terms, unknown.

Respond with JSON only:
{"category": "<category>", "risk_score": <0-100>}`

const narrativeSystemPrompt = `You are a workplace-issue advisor. Using only
the situation and the reference passages provided, write a four-section
report. Be concrete and cite the passages you rely on by title.

Respond with JSON only:
{"situation_analysis": "...", "legal_perspective": "...",
 "immediate_actions": "...", "suggested_wording": "..."}`

const findingsSystemPrompt = `You are a contract and workplace-policy
reviewer. Compare the situation against the reference passages and list
discrete findings. Each finding names the passage it is grounded on and why
that passage applies.

Respond with JSON only:
{"findings": [{"description": "...", "severity": "low|medium|high",
 "document_title": "...", "justification": "..."}]}`

const scriptsSystemPrompt = `You draft short, polite, factual messages a
worker can send. Write one message to the counterparty (the employer) and one
to a professional advisor, grounded in the situation and reference passages.

Respond with JSON only:
{"to_counterparty": "...", "to_advisor": "..."}`

const organizationsSystemPrompt = `You recommend support organizations
relevant to a workplace issue. Suggest up to three, with a one-line
description and contact route each.

Respond with JSON only:
{"organizations": [{"name": "...", "description": "...", "contact": "..."}]}`

// defaultDigestCharBudget caps the evidence digest when no token counter is
// configured. Roughly four chars per token keeps it near the token budget.
const defaultDigestCharBudget = 8000

func buildClassifyPrompt(query string, hints Hints) string {
	var b strings.Builder
	b.WriteString("Situation:\n")
	b.WriteString(query)
	b.WriteString("\n")

	// Structured intake fields are a soft prior, not an override.
	var facts []string
	if hints.CategoryHint != "" {
		facts = append(facts, "the worker labeled this as: "+hints.CategoryHint)
	}
	if hints.EmploymentType != "" {
		facts = append(facts, "employment type: "+hints.EmploymentType)
	}
	if hints.WorkPeriod != "" {
		facts = append(facts, "work period: "+hints.WorkPeriod)
	}
	if hints.WeeklyHours > 0 {
		facts = append(facts, fmt.Sprintf("weekly hours: %.1f", hints.WeeklyHours))
	}
	if hints.OnProbation {
		facts = append(facts, "currently on probation")
	}
	if len(hints.SocialInsurance) > 0 {
		facts = append(facts, "social insurance enrolled: "+strings.Join(hints.SocialInsurance, ", "))
	}
	if len(facts) > 0 {
		b.WriteString("\nAdditional intake details (may be incomplete or wrong):\n")
		for _, f := range facts {
			b.WriteString("- " + f + "\n")
		}
	}
	return b.String()
}

// evidenceDigest renders retrieved passages as a numbered reference block.
// The digest is truncated to the token budget when a counter is available,
// otherwise to a character budget.
func evidenceDigest(items []evidence.Item, counter *token.Counter, tokenBudget int) string {
	if len(items) == 0 {
		return "(no reference passages were retrieved)"
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, item.Title, item.SourceType, item.Snippet)
	}
	digest := strings.TrimSpace(b.String())

	if counter != nil && tokenBudget > 0 {
		return counter.Truncate(digest, tokenBudget)
	}
	if len(digest) > defaultDigestCharBudget {
		return digest[:defaultDigestCharBudget]
	}
	return digest
}

func buildGenerationPrompt(query string, hints Hints, cls Classification, digest string) string {
	var b strings.Builder
	b.WriteString("Situation:\n")
	b.WriteString(query)
	b.WriteString("\n\nCategory: " + cls.Category)
	fmt.Fprintf(&b, "\nPreliminary risk score: %d\n", cls.RiskScore)
	if hints.EmploymentType != "" {
		b.WriteString("Employment type: " + hints.EmploymentType + "\n")
	}
	if hints.OnProbation {
		b.WriteString("The worker is on probation.\n")
	}
	b.WriteString("\nReference passages:\n")
	b.WriteString(digest)
	b.WriteString("\n")
	return b.String()
}
