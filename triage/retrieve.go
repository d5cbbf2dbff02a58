package triage

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/pkg/logging"
)

// Retriever runs the two-partition hybrid search. The guidance partition
// (laws, manuals, standard clauses) and the precedent partition (case
// summaries) are searched concurrently with independent result quotas, so a
// flood of highly similar guidance passages can never crowd precedent out of
// the evidence set.
type Retriever struct {
	store         evidence.Store
	guidanceTopK  int
	precedentTopK int
	logger        *slog.Logger
}

// NewRetriever creates a retriever over the given store with per-partition
// quotas.
func NewRetriever(store evidence.Store, guidanceTopK, precedentTopK int) *Retriever {
	return &Retriever{
		store:         store,
		guidanceTopK:  guidanceTopK,
		precedentTopK: precedentTopK,
		logger:        logging.WithComponent("triage.retriever"),
	}
}

// Retrieve searches both partitions and merges the results, sorted by
// relevance descending. A failed partition contributes nothing; Retrieve
// itself never fails. A nil embedding skips retrieval entirely.
func (r *Retriever) Retrieve(ctx context.Context, qc QueryContext, scope Scope) []evidence.Item {
	if r.store == nil || qc.Embedding == nil {
		return nil
	}

	var (
		wg        sync.WaitGroup
		guidance  []evidence.Item
		precedent []evidence.Item
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		guidance = r.searchPartition(ctx, qc.Embedding, scope, evidence.PartitionGuidance, r.guidanceTopK)
	}()
	go func() {
		defer wg.Done()
		precedent = r.searchPartition(ctx, qc.Embedding, scope, evidence.PartitionPrecedent, r.precedentTopK)
	}()
	wg.Wait()

	merged := make([]evidence.Item, 0, len(guidance)+len(precedent))
	merged = append(merged, guidance...)
	merged = append(merged, precedent...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})
	return merged
}

func (r *Retriever) searchPartition(ctx context.Context, embedding []float32, scope Scope, p evidence.Partition, topK int) []evidence.Item {
	allowed := evidence.FilterByPartition(scope, p)
	if len(allowed) == 0 {
		allowed = partitionCategories(p)
	}

	items, err := r.store.Search(ctx, embedding, allowed, topK)
	if err != nil {
		r.logger.Warn("partition search failed, continuing without it", "partition", p, "error", err)
		return nil
	}
	return items
}

// partitionCategories is the untopiced allow-list for one partition, used
// when the scope carries no category from that partition.
func partitionCategories(p evidence.Partition) []evidence.Category {
	if p == evidence.PartitionPrecedent {
		return []evidence.Category{{Source: evidence.SourcePrecedentCase}}
	}
	return []evidence.Category{
		{Source: evidence.SourceGuidanceLaw},
		{Source: evidence.SourceGuidanceManual},
		{Source: evidence.SourceStandardClause},
	}
}
