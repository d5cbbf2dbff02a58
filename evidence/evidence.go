package evidence

import "context"

// SourceType identifies the kind of passage a piece of evidence comes from.
type SourceType string

const (
	SourceGuidanceLaw    SourceType = "guidance-law"
	SourceGuidanceManual SourceType = "guidance-manual"
	SourceStandardClause SourceType = "standard-clause"
	SourcePrecedentCase  SourceType = "precedent-case"
)

// Partition names one of the two independently searched corpora.
type Partition string

const (
	PartitionGuidance  Partition = "guidance"
	PartitionPrecedent Partition = "precedent"
)

// Partition returns the corpus partition a source type belongs to.
func (s SourceType) Partition() Partition {
	if s == SourcePrecedentCase {
		return PartitionPrecedent
	}
	return PartitionGuidance
}

// Topic is the subject tag attached to indexed passages. An empty topic in a
// category matches passages of any topic.
type Topic string

const (
	TopicWage          Topic = "wage"
	TopicDismissal     Topic = "dismissal"
	TopicWorkingHours  Topic = "working-hours"
	TopicHarassment    Topic = "harassment"
	TopicLeave         Topic = "leave"
	TopicInsurance     Topic = "insurance"
	TopicContractTerms Topic = "contract-terms"
)

// Topics lists every topic the corpus is tagged with.
func Topics() []Topic {
	return []Topic{
		TopicWage,
		TopicDismissal,
		TopicWorkingHours,
		TopicHarassment,
		TopicLeave,
		TopicInsurance,
		TopicContractTerms,
	}
}

// Category restricts a search to passages of one source type, optionally
// narrowed to a topic.
type Category struct {
	Source SourceType `json:"source"`
	Topic  Topic      `json:"topic,omitempty"`
}

// Matches reports whether an item falls inside this category.
func (c Category) Matches(item *Item) bool {
	if item == nil {
		return false
	}
	if c.Source != item.SourceType {
		return false
	}
	return c.Topic == "" || c.Topic == item.Topic
}

// Item represents one retrieved passage. Items are read-only once returned
// from a store search.
type Item struct {
	ID             string     `json:"id"`
	SourceType     SourceType `json:"source_type"`
	Topic          Topic      `json:"topic,omitempty"`
	Title          string     `json:"title"`
	Snippet        string     `json:"snippet"`
	RelevanceScore float32    `json:"relevance_score"`
	ExternalRef    string     `json:"external_ref,omitempty"`
	FileRef        string     `json:"file_ref,omitempty"`
}

// Store defines the read path of the evidence corpus. The corpus is populated
// by a separate ingestion process and is read-only for the workflow.
type Store interface {
	// Search ranks passages by vector similarity within the allowed
	// categories. An empty allow-list searches the whole corpus.
	Search(ctx context.Context, queryVector []float32, allowed []Category, topK int) ([]Item, error)
}

// FilterByPartition keeps only the categories belonging to the given partition.
func FilterByPartition(allowed []Category, p Partition) []Category {
	out := make([]Category, 0, len(allowed))
	for _, c := range allowed {
		if c.Source.Partition() == p {
			out = append(out, c)
		}
	}
	return out
}
