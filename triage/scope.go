package triage

import (
	"strings"

	"github.com/worklens/triage/evidence"
)

// Scope is the ordered set of evidence categories a classification is allowed
// to search against. It is never empty: an unrecognized category widens to
// the full corpus rather than shrinking to nothing.
type Scope []evidence.Category

// categoryAliases folds classifier output variants onto canonical topics.
var categoryAliases = map[string]evidence.Topic{
	"wage":           evidence.TopicWage,
	"unpaid-wage":    evidence.TopicWage,
	"unpaid-wages":   evidence.TopicWage,
	"salary":         evidence.TopicWage,
	"overtime-pay":   evidence.TopicWage,
	"dismissal":      evidence.TopicDismissal,
	"termination":    evidence.TopicDismissal,
	"layoff":         evidence.TopicDismissal,
	"working-hours":  evidence.TopicWorkingHours,
	"overtime":       evidence.TopicWorkingHours,
	"harassment":     evidence.TopicHarassment,
	"bullying":       evidence.TopicHarassment,
	"leave":          evidence.TopicLeave,
	"paid-leave":     evidence.TopicLeave,
	"insurance":      evidence.TopicInsurance,
	"contract-terms": evidence.TopicContractTerms,
	"contract":       evidence.TopicContractTerms,
}

// ScopeFor maps a classification onto its retrieval scope. Pure and total:
// the same classification always yields the same scope, and every category
// value, including "unknown", maps to a non-empty scope.
func ScopeFor(c Classification) Scope {
	topic, ok := categoryAliases[normalizeCategory(c.Category)]
	if !ok {
		return fullScope()
	}
	return Scope{
		{Source: evidence.SourceGuidanceLaw, Topic: topic},
		{Source: evidence.SourceGuidanceManual, Topic: topic},
		{Source: evidence.SourceStandardClause, Topic: topic},
		{Source: evidence.SourcePrecedentCase, Topic: topic},
	}
}

// fullScope searches every source type with no topic restriction.
func fullScope() Scope {
	return Scope{
		{Source: evidence.SourceGuidanceLaw},
		{Source: evidence.SourceGuidanceManual},
		{Source: evidence.SourceStandardClause},
		{Source: evidence.SourcePrecedentCase},
	}
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	category = strings.ReplaceAll(category, "_", "-")
	category = strings.ReplaceAll(category, " ", "-")
	return category
}
