package triage

import (
	"reflect"
	"testing"

	"github.com/worklens/triage/evidence"
)

func TestScopeForKnownCategory(t *testing.T) {
	scope := ScopeFor(Classification{Category: "dismissal"})
	if len(scope) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(scope))
	}
	sources := map[evidence.SourceType]bool{}
	for _, c := range scope {
		if c.Topic != evidence.TopicDismissal {
			t.Errorf("expected topic %q, got %q", evidence.TopicDismissal, c.Topic)
		}
		sources[c.Source] = true
	}
	for _, s := range []evidence.SourceType{
		evidence.SourceGuidanceLaw,
		evidence.SourceGuidanceManual,
		evidence.SourceStandardClause,
		evidence.SourcePrecedentCase,
	} {
		if !sources[s] {
			t.Errorf("missing source type %q", s)
		}
	}
}

func TestScopeForAliases(t *testing.T) {
	cases := map[string]evidence.Topic{
		"unpaid-wage":  evidence.TopicWage,
		"Unpaid Wage":  evidence.TopicWage,
		"overtime_pay": evidence.TopicWage,
		"termination":  evidence.TopicDismissal,
		"overtime":     evidence.TopicWorkingHours,
		"bullying":     evidence.TopicHarassment,
		"paid-leave":   evidence.TopicLeave,
		"contract":     evidence.TopicContractTerms,
	}
	for category, want := range cases {
		scope := ScopeFor(Classification{Category: category})
		if scope[0].Topic != want {
			t.Errorf("category %q: expected topic %q, got %q", category, want, scope[0].Topic)
		}
	}
}

func TestScopeForUnknownWidensToFullCorpus(t *testing.T) {
	for _, category := range []string{CategoryUnknown, "", "martian-law"} {
		scope := ScopeFor(Classification{Category: category})
		if len(scope) != 4 {
			t.Fatalf("category %q: expected 4 categories, got %d", category, len(scope))
		}
		for _, c := range scope {
			if c.Topic != "" {
				t.Errorf("category %q: expected untopiced scope, got topic %q", category, c.Topic)
			}
		}
	}
}

func TestScopeForIsPure(t *testing.T) {
	cls := Classification{Category: "wage", RiskScore: 70}
	first := ScopeFor(cls)
	second := ScopeFor(cls)
	if !reflect.DeepEqual(first, second) {
		t.Error("same classification produced different scopes")
	}
}

// Feeding a result's category and score back through ScopeFor reproduces the
// scope the result was generated under, so an audit can reconstruct retrieval.
func TestScopeForRoundTripsFromResult(t *testing.T) {
	cls := Classification{Category: "dismissal", RiskScore: 70}
	original := ScopeFor(cls)

	result := Result{Category: cls.Category, RiskScore: cls.RiskScore}
	replayed := ScopeFor(Classification{Category: result.Category, RiskScore: result.RiskScore})
	if !reflect.DeepEqual(original, replayed) {
		t.Errorf("replayed scope differs: %v vs %v", original, replayed)
	}
}

func TestScopeForNeverEmpty(t *testing.T) {
	categories := []string{"wage", "dismissal", "working-hours", "harassment",
		"leave", "insurance", "contract-terms", "unknown", "", "garbage", "WAGE"}
	for _, c := range categories {
		if len(ScopeFor(Classification{Category: c})) == 0 {
			t.Errorf("category %q produced an empty scope", c)
		}
	}
}
