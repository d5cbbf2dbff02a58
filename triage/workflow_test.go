package triage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/worklens/triage/evidence"
)

func probationCorpus() []evidence.Item {
	return []evidence.Item{
		{
			ID: "law-20", SourceType: evidence.SourceGuidanceLaw, Topic: evidence.TopicDismissal,
			Title:          "Labor Standards Act, Article 20",
			Snippet:        "An employer must give at least 30 days termination notice before dismissal.",
			RelevanceScore: 0.92, FileRef: "https://docs.example.com/laws/lsa-20",
		},
		{
			ID: "manual-1", SourceType: evidence.SourceGuidanceManual, Topic: evidence.TopicDismissal,
			Title:          "Dismissal Procedures Manual",
			Snippet:        "During the probation period dismissal still requires objective grounds.",
			RelevanceScore: 0.85,
		},
		{
			ID: "case-7", SourceType: evidence.SourcePrecedentCase, Topic: evidence.TopicDismissal,
			Title:          "Case 2020-88",
			Snippet:        "Probationary dismissal without stated grounds ruled invalid.",
			RelevanceScore: 0.78,
		},
	}
}

func TestWorkflowProbationDismissalScenario(t *testing.T) {
	client := newStubClient()
	client.respond(fragClassify, `{"category": "dismissal", "risk_score": 70}`)
	scriptAllTasks(client)

	store := &stubStore{items: probationCorpus()}
	w, err := New(&stubEmbedder{vec: []float32{1, 0, 0}}, store, client, WithResolver(&stubResolver{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := w.Run(context.Background(), Input{
		Situation: "I was told to leave during my probation period with no notice.",
		Hints:     Hints{OnProbation: true, EmploymentType: "full-time"},
	})

	if result.Category != "dismissal" {
		t.Errorf("expected dismissal, got %q", result.Category)
	}
	if result.RiskLevel != RiskHigh {
		t.Errorf("score 70 should band high, got %q", result.RiskLevel)
	}
	if len(result.RelatedDocuments) == 0 {
		t.Fatal("expected related documents")
	}
	hasGuidance := false
	for _, d := range result.RelatedDocuments {
		if d.SourceType.Partition() == evidence.PartitionGuidance {
			hasGuidance = true
		}
		if d.UsageReason == "" {
			t.Errorf("document %q has empty usage reason", d.Title)
		}
	}
	if !hasGuidance {
		t.Error("expected at least one guidance document")
	}
	if result.OutreachScripts.ToAdvisor == "" {
		t.Error("expected an advisor outreach script")
	}
	if len(result.RelatedDocuments) > 3 {
		t.Errorf("related documents exceed cap: %d", len(result.RelatedDocuments))
	}
}

func TestWorkflowFullOutageStillProducesResult(t *testing.T) {
	client := newStubClient() // every call fails: nothing scripted
	store := &stubStore{err: errors.New("store down")}
	w, err := New(&stubEmbedder{err: errors.New("embedder down")}, store, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := w.Run(context.Background(), Input{Situation: "anything at all"})

	if result.Category != CategoryUnknown {
		t.Errorf("expected %q, got %q", CategoryUnknown, result.Category)
	}
	if result.RiskScore != DefaultRiskScore {
		t.Errorf("expected neutral score %d, got %d", DefaultRiskScore, result.RiskScore)
	}
	if result.RiskLevel != RiskMedium {
		t.Errorf("expected medium band, got %q", result.RiskLevel)
	}
	if result.Narrative != PlaceholderNarrative() {
		t.Errorf("expected placeholder narrative verbatim, got %+v", result.Narrative)
	}
	if len(result.Findings) != 0 || len(result.RelatedDocuments) != 0 || len(result.RecommendedOrganizations) != 0 {
		t.Errorf("expected empty lists, got %+v", result)
	}
	if !result.OutreachScripts.IsZero() {
		t.Errorf("expected no scripts, got %+v", result.OutreachScripts)
	}
}

func TestWorkflowEmbedsQueryExactlyOnce(t *testing.T) {
	client := newStubClient()
	client.respond(fragClassify, `{"category": "wage", "risk_score": 40}`)
	scriptAllTasks(client)

	embedder := &countingEmbedder{inner: stubEmbedder{vec: []float32{1}}}
	w, err := New(embedder, &stubStore{}, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.Run(context.Background(), Input{Situation: "unpaid overtime"})
	if embedder.count != 1 {
		t.Errorf("expected exactly 1 embedding call, got %d", embedder.count)
	}
}

type countingEmbedder struct {
	inner stubEmbedder
	count int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.count++
	return e.inner.Embed(ctx, text)
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.EmbedBatch(ctx, texts)
}

func (e *countingEmbedder) Dimension() int { return e.inner.Dimension() }

func TestWorkflowSummaryDetailsPreferredOverSituation(t *testing.T) {
	client := newStubClient()
	client.respond(fragClassify, `{"category": "wage", "risk_score": 40}`)
	scriptAllTasks(client)

	w, err := New(&stubEmbedder{vec: []float32{1}}, &stubStore{}, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.Run(context.Background(), Input{
		Situation: "raw text",
		Summary:   "unpaid wages",
		Details:   "three months overdue",
	})

	var classifyPrompt string
	for _, call := range client.calls {
		if strings.Contains(call.System, fragClassify) {
			classifyPrompt = call.Prompt
		}
	}
	if !strings.Contains(classifyPrompt, "unpaid wages\nthree months overdue") {
		t.Errorf("expected summary+details query, got %q", classifyPrompt)
	}
	if strings.Contains(classifyPrompt, "raw text") {
		t.Error("situation text should be ignored when summary/details present")
	}
}

func TestWorkflowRejectsInvalidConfig(t *testing.T) {
	_, err := New(&stubEmbedder{vec: []float32{1}}, &stubStore{}, newStubClient(), WithGuidanceTopK(0))
	if err == nil {
		t.Fatal("expected config validation error")
	}
	_, err = New(&stubEmbedder{vec: []float32{1}}, &stubStore{}, newStubClient(), WithRelatedDocumentLimit(100))
	if err == nil {
		t.Fatal("expected config validation error for related-document limit")
	}
}

func TestWorkflowInputNotMutated(t *testing.T) {
	client := newStubClient()
	client.respond(fragClassify, `{"category": "wage", "risk_score": 40}`)
	scriptAllTasks(client)

	w, err := New(&stubEmbedder{vec: []float32{1}}, &stubStore{}, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := Input{Situation: "original", Hints: Hints{CategoryHint: "wage"}}
	w.Run(context.Background(), in)
	if in.Situation != "original" || in.Hints.CategoryHint != "wage" {
		t.Errorf("input mutated: %+v", in)
	}
}
