package triage

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/files"
	"github.com/worklens/triage/pkg/logging"
)

// Merger assembles the final result from the generation outputs and the
// retrieved evidence. Merging is deterministic: the same inputs always
// produce the same result, with no model calls.
type Merger struct {
	resolver     files.Resolver
	relatedLimit int
	logger       *slog.Logger
}

// NewMerger creates a merger. resolver may be nil, in which case related
// documents carry only the file references retrieval already had.
func NewMerger(resolver files.Resolver, relatedLimit int) *Merger {
	return &Merger{
		resolver:     resolver,
		relatedLimit: relatedLimit,
		logger:       logging.WithComponent("triage.merger"),
	}
}

// Merge builds the result. Finding sources are backfilled from retrieved
// items by title containment; unmatched findings are kept with their source
// unset rather than dropped.
func (m *Merger) Merge(ctx context.Context, cls Classification, fields Fields, items []evidence.Item) Result {
	findings := m.backfillFindings(fields.Findings, items)
	return Result{
		Category:                 cls.Category,
		RiskScore:                cls.RiskScore,
		RiskLevel:                RiskLevelFor(cls.RiskScore),
		Narrative:                fields.Narrative,
		Findings:                 findings,
		RelatedDocuments:         m.buildRelatedDocuments(ctx, findings, items),
		OutreachScripts:          fields.Scripts,
		RecommendedOrganizations: fields.Organizations,
	}
}

func (m *Merger) backfillFindings(findings []Finding, items []evidence.Item) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	for i := range out {
		item := matchItemByTitle(out[i].Source.DocumentTitle, items)
		if item == nil {
			continue
		}
		out[i].Source.SourceType = item.SourceType
		out[i].Source.FileRef = item.FileRef
		out[i].Source.RelevanceScore = item.RelevanceScore
		out[i].Source.Snippet = item.Snippet
	}
	return out
}

// matchItemByTitle finds the first retrieved item whose title contains, or is
// contained by, the given title.
func matchItemByTitle(title string, items []evidence.Item) *evidence.Item {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}
	for i := range items {
		candidate := strings.ToLower(strings.TrimSpace(items[i].Title))
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &items[i]
		}
	}
	return nil
}

func (m *Merger) buildRelatedDocuments(ctx context.Context, findings []Finding, items []evidence.Item) []RelatedDocument {
	// Dedupe by title, keeping the most relevant occurrence.
	best := make(map[string]evidence.Item, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if key == "" {
			continue
		}
		prev, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = item
			continue
		}
		if item.RelevanceScore > prev.RelevanceScore {
			best[key] = item
		}
	}

	docs := make([]RelatedDocument, 0, len(order))
	for _, key := range order {
		item := best[key]
		docs = append(docs, RelatedDocument{
			Title:          item.Title,
			FileRef:        m.resolveFileRef(ctx, item),
			SourceType:     item.SourceType,
			RelevanceScore: item.RelevanceScore,
			Snippet:        item.Snippet,
			UsageReason:    UsageReason(findings, item),
		})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].RelevanceScore > docs[j].RelevanceScore
	})
	if m.relatedLimit > 0 && len(docs) > m.relatedLimit {
		docs = docs[:m.relatedLimit]
	}
	return docs
}

// resolveFileRef prefers the file reference retrieval already carries and
// otherwise asks the resolver. Resolution failures leave the reference empty.
func (m *Merger) resolveFileRef(ctx context.Context, item evidence.Item) string {
	if item.FileRef != "" {
		return item.FileRef
	}
	if m.resolver == nil || item.ExternalRef == "" {
		return ""
	}
	ref, err := m.resolver.Resolve(ctx, item.ExternalRef, item.SourceType)
	if err != nil {
		m.logger.Warn("file reference resolution failed", "external_ref", item.ExternalRef, "error", err)
		return ""
	}
	return ref
}
