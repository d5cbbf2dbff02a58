// Package triage implements the staged retrieval-augmented analysis workflow
// that turns a free-text description of a workplace situation into a
// structured, source-attributed risk report. The pipeline classifies the
// input, narrows retrieval scope, retrieves evidence from two corpus
// partitions, fans out to independent generation tasks, and merges the
// results deterministically. Every stage owns its own fallback, so the
// workflow always produces a schema-valid result.
package triage

import (
	"strings"

	"github.com/worklens/triage/evidence"
)

// Hints carries the optional structured fields the intake form collects
// alongside the free-text description.
type Hints struct {
	CategoryHint    string   `json:"category_hint,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty"`
	WorkPeriod      string   `json:"work_period,omitempty"`
	WeeklyHours     float64  `json:"weekly_hours,omitempty"`
	OnProbation     bool     `json:"on_probation,omitempty"`
	SocialInsurance []string `json:"social_insurance,omitempty"`
}

// Input is the caller-supplied description of a situation. It is never
// mutated by the workflow.
type Input struct {
	Situation string `json:"situation"`
	Summary   string `json:"summary,omitempty"`
	Details   string `json:"details,omitempty"`
	Hints     Hints  `json:"hints,omitempty"`
}

// QueryText returns the canonical query string: summary plus details when the
// split is present, otherwise the raw situation text.
func (in Input) QueryText() string {
	summary := strings.TrimSpace(in.Summary)
	details := strings.TrimSpace(in.Details)
	if summary != "" || details != "" {
		if summary == "" {
			return details
		}
		if details == "" {
			return summary
		}
		return summary + "\n" + details
	}
	return strings.TrimSpace(in.Situation)
}

// QueryContext holds the canonicalized query and its embedding. The embedding
// is computed exactly once per run and reused by every retrieval call; a nil
// embedding means the embedding call failed and retrieval degrades to empty.
type QueryContext struct {
	Query     string
	Embedding []float32
}

// CategoryUnknown is the classification used when the model call fails or its
// response cannot be parsed.
const CategoryUnknown = "unknown"

// DefaultRiskScore is the neutral mid-range score substituted when
// classification cannot produce one.
const DefaultRiskScore = 50

// Classification labels the situation and assigns a preliminary risk score.
type Classification struct {
	Category  string `json:"category"`
	RiskScore int    `json:"risk_score"`
}

// RiskLevel is the coarse banding derived from the risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevelFor maps a score onto its band: below 34 low, below 67 medium,
// otherwise high.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score < 34:
		return RiskLow
	case score < 67:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// SourceAttribution ties a finding back to a retrieved document. FileRef and
// RelevanceScore stay unset when no retrieved document matches the title.
type SourceAttribution struct {
	DocumentTitle  string              `json:"document_title"`
	SourceType     evidence.SourceType `json:"source_type,omitempty"`
	FileRef        string              `json:"file_ref,omitempty"`
	RelevanceScore float32             `json:"relevance_score,omitempty"`
	Snippet        string              `json:"snippet,omitempty"`
	Justification  string              `json:"justification,omitempty"`
}

// Finding is one discrete, source-attributed observation about the situation.
type Finding struct {
	Description string            `json:"description"`
	Severity    string            `json:"severity"`
	Source      SourceAttribution `json:"source"`
}

// Narrative is the multi-section report text.
type Narrative struct {
	SituationAnalysis string `json:"situation_analysis"`
	LegalPerspective  string `json:"legal_perspective"`
	ImmediateActions  string `json:"immediate_actions"`
	SuggestedWording  string `json:"suggested_wording"`
}

// IsZero reports whether every section is empty.
func (n Narrative) IsZero() bool {
	return n.SituationAnalysis == "" && n.LegalPerspective == "" &&
		n.ImmediateActions == "" && n.SuggestedWording == ""
}

// OutreachScripts holds the drafted message templates.
type OutreachScripts struct {
	ToCounterparty string `json:"to_counterparty,omitempty"`
	ToAdvisor      string `json:"to_advisor,omitempty"`
}

// IsZero reports whether no script was produced.
func (s OutreachScripts) IsZero() bool {
	return s.ToCounterparty == "" && s.ToAdvisor == ""
}

// Organization is one support organization the report recommends contacting.
type Organization struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Contact     string `json:"contact,omitempty"`
}

// RelatedDocument summarizes one retrieved document for the report. Every
// entry carries a non-empty UsageReason regardless of generation-task
// success.
type RelatedDocument struct {
	Title          string              `json:"title"`
	FileRef        string              `json:"file_ref,omitempty"`
	SourceType     evidence.SourceType `json:"source_type"`
	RelevanceScore float32             `json:"relevance_score"`
	Snippet        string              `json:"snippet,omitempty"`
	UsageReason    string              `json:"usage_reason"`
}

// Result is the canonical workflow output, immutable once returned.
type Result struct {
	Category                 string            `json:"category"`
	RiskScore                int               `json:"risk_score"`
	RiskLevel                RiskLevel         `json:"risk_level"`
	Narrative                Narrative         `json:"narrative"`
	Findings                 []Finding         `json:"findings"`
	RelatedDocuments         []RelatedDocument `json:"related_documents"`
	OutreachScripts          OutreachScripts   `json:"outreach_scripts"`
	RecommendedOrganizations []Organization    `json:"recommended_organizations"`
}
