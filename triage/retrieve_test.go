package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/worklens/triage/evidence"
)

func guidanceItem(id, title string, score float32) evidence.Item {
	return evidence.Item{
		ID: id, SourceType: evidence.SourceGuidanceLaw,
		Topic: evidence.TopicDismissal, Title: title, RelevanceScore: score,
	}
}

func precedentItem(id, title string, score float32) evidence.Item {
	return evidence.Item{
		ID: id, SourceType: evidence.SourcePrecedentCase,
		Topic: evidence.TopicDismissal, Title: title, RelevanceScore: score,
	}
}

func TestRetrieveSearchesBothPartitions(t *testing.T) {
	store := &stubStore{items: []evidence.Item{
		guidanceItem("g1", "Labor Standards Act", 0.9),
		precedentItem("p1", "Case 2019-123", 0.8),
	}}
	r := NewRetriever(store, 8, 3)

	scope := ScopeFor(Classification{Category: "dismissal"})
	items := r.Retrieve(context.Background(), QueryContext{Embedding: []float32{1, 0}}, scope)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// Merged output is relevance-sorted.
	if items[0].ID != "g1" || items[1].ID != "p1" {
		t.Errorf("expected relevance order g1, p1; got %s, %s", items[0].ID, items[1].ID)
	}

	if len(store.calls) != 2 {
		t.Fatalf("expected 2 partition searches, got %d", len(store.calls))
	}
	quotas := map[evidence.Partition]int{}
	for _, call := range store.calls {
		if len(call.allowed) == 0 {
			t.Fatal("partition search with empty allow-list")
		}
		quotas[call.allowed[0].Source.Partition()] = call.topK
	}
	if quotas[evidence.PartitionGuidance] != 8 {
		t.Errorf("guidance quota: expected 8, got %d", quotas[evidence.PartitionGuidance])
	}
	if quotas[evidence.PartitionPrecedent] != 3 {
		t.Errorf("precedent quota: expected 3, got %d", quotas[evidence.PartitionPrecedent])
	}
}

func TestRetrievePartitionFailureDegradesToOther(t *testing.T) {
	store := &partitionStore{
		inner: stubStore{items: []evidence.Item{
			guidanceItem("g1", "Labor Standards Act", 0.9),
			precedentItem("p1", "Case 2019-123", 0.8),
		}},
		failPartition: evidence.PartitionPrecedent,
	}
	r := NewRetriever(store, 8, 3)

	scope := ScopeFor(Classification{Category: "dismissal"})
	items := r.Retrieve(context.Background(), QueryContext{Embedding: []float32{1, 0}}, scope)
	if len(items) != 1 || items[0].ID != "g1" {
		t.Fatalf("expected only the guidance item, got %+v", items)
	}
}

func TestRetrieveBothPartitionsFailingYieldsEmpty(t *testing.T) {
	store := &stubStore{err: errors.New("store down")}
	r := NewRetriever(store, 8, 3)

	items := r.Retrieve(context.Background(), QueryContext{Embedding: []float32{1, 0}}, fullScope())
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestRetrieveNilEmbeddingSkipsSearch(t *testing.T) {
	store := &stubStore{items: []evidence.Item{guidanceItem("g1", "x", 0.9)}}
	r := NewRetriever(store, 8, 3)

	items := r.Retrieve(context.Background(), QueryContext{}, fullScope())
	if items != nil {
		t.Fatalf("expected nil, got %+v", items)
	}
	if len(store.calls) != 0 {
		t.Errorf("store should not be queried without an embedding, got %d calls", len(store.calls))
	}
}

func TestRetrieveScopeMissingPartitionUsesDefaultCategories(t *testing.T) {
	store := &stubStore{items: []evidence.Item{precedentItem("p1", "Case", 0.5)}}
	r := NewRetriever(store, 8, 3)

	// Scope contains only guidance categories; the precedent search should
	// fall back to the untopiced precedent allow-list rather than vanish.
	scope := Scope{{Source: evidence.SourceGuidanceLaw, Topic: evidence.TopicWage}}
	items := r.Retrieve(context.Background(), QueryContext{Embedding: []float32{1}}, scope)
	if len(items) != 1 || items[0].ID != "p1" {
		t.Fatalf("expected the precedent item via default allow-list, got %+v", items)
	}
}
