package triage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestClassifySuccess(t *testing.T) {
	client := newStubClient()
	client.respond(fragClassify, `{"category": "dismissal", "risk_score": 80}`)

	c := NewClassifier(client)
	cls := c.Classify(context.Background(), QueryContext{Query: "I was fired without notice"}, Hints{})
	if cls.Category != "dismissal" || cls.RiskScore != 80 {
		t.Fatalf("unexpected classification: %+v", cls)
	}
}

func TestClassifyCallFailureFallsBack(t *testing.T) {
	client := newStubClient()
	client.fail(fragClassify, errors.New("model unavailable"))

	c := NewClassifier(client)
	cls := c.Classify(context.Background(), QueryContext{Query: "anything"}, Hints{})
	if cls.Category != CategoryUnknown {
		t.Errorf("expected %q, got %q", CategoryUnknown, cls.Category)
	}
	if cls.RiskScore != DefaultRiskScore {
		t.Errorf("expected score %d, got %d", DefaultRiskScore, cls.RiskScore)
	}
}

func TestClassifyUnparseableResponseFallsBack(t *testing.T) {
	client := newStubClient()
	client.respond(fragClassify, "I think this is about wages, maybe.")

	c := NewClassifier(client)
	cls := c.Classify(context.Background(), QueryContext{Query: "anything"}, Hints{})
	if cls.Category != CategoryUnknown || cls.RiskScore != DefaultRiskScore {
		t.Fatalf("expected fallback classification, got %+v", cls)
	}
}

func TestClassifyNilClientFallsBack(t *testing.T) {
	c := NewClassifier(nil)
	cls := c.Classify(context.Background(), QueryContext{Query: "anything"}, Hints{})
	if cls.Category != CategoryUnknown || cls.RiskScore != DefaultRiskScore {
		t.Fatalf("expected fallback classification, got %+v", cls)
	}
}

func TestClassifyHintsEnterPromptAsSoftPrior(t *testing.T) {
	client := newStubClient()
	// The model contradicts the hint; the model wins.
	client.respond(fragClassify, `{"category": "working-hours", "risk_score": 40}`)

	c := NewClassifier(client)
	hints := Hints{CategoryHint: "wage", OnProbation: true, WeeklyHours: 50}
	cls := c.Classify(context.Background(), QueryContext{Query: "long days, no extra pay"}, hints)
	if cls.Category != "working-hours" {
		t.Errorf("model category should win over hint, got %q", cls.Category)
	}

	if len(client.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(client.calls))
	}
	prompt := client.calls[0].Prompt
	for _, fragment := range []string{"wage", "probation", "50.0"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing hint fragment %q", fragment)
		}
	}
}
