package triage

import (
	"fmt"
	"strings"

	"github.com/worklens/triage/evidence"
)

// usageReason derivation. Every related document carries a human-readable
// sentence explaining why it appears in the report, even when the findings
// task produced nothing usable for it. The rules are ordered and
// deterministic.

const maxUsageReasonLen = 200

// genericJustifications are filler phrases models emit when they have nothing
// specific to say. A finding justification matching one of these is not worth
// reusing.
var genericJustifications = []string{
	"relevant document",
	"related document",
	"reference material",
	"for reference",
	"see document",
}

// reasonKeywords maps clause vocabulary onto the short labels used in the
// derived sentence. Matching is case-insensitive substring search over title
// and snippet.
var reasonKeywords = []struct {
	needle string
	label  string
}{
	{"exercise period", "the exercise period"},
	{"tenure", "the tenure requirement"},
	{"seniority requirement", "the seniority requirement"},
	{"termination notice", "the termination notice terms"},
	{"advance payment", "the advance payment terms"},
	{"delay penalty", "the delay penalty terms"},
	{"pay date", "the pay date terms"},
	{"probation period", "the probation period terms"},
	{"overtime premium", "the overtime premium rules"},
	{"night premium", "the night work premium rules"},
	{"holiday premium", "the holiday work premium rules"},
}

// UsageReason derives the reason sentence for one retrieved document. Rules,
// in order: reuse a matching finding's justification; describe matched clause
// keywords; summarize the snippet; fall back to a minimal sentence built from
// title and source type. The result is never empty and never exceeds 200
// characters.
func UsageReason(findings []Finding, item evidence.Item) string {
	if reason := reasonFromFindings(findings, item); reason != "" {
		return capReason(reason)
	}
	if reason := reasonFromKeywords(item); reason != "" {
		return capReason(reason)
	}
	if reason := reasonFromSnippet(item); reason != "" {
		return capReason(reason)
	}
	return capReason(fmt.Sprintf("Retrieved as %s reference %q for this situation.", roleNoun(item.SourceType), item.Title))
}

// reasonFromFindings reuses a finding's justification when the finding's
// document title and the item title contain one another.
func reasonFromFindings(findings []Finding, item evidence.Item) string {
	itemTitle := strings.ToLower(strings.TrimSpace(item.Title))
	if itemTitle == "" {
		return ""
	}
	for _, f := range findings {
		title := strings.ToLower(strings.TrimSpace(f.Source.DocumentTitle))
		if title == "" {
			continue
		}
		if !strings.Contains(itemTitle, title) && !strings.Contains(title, itemTitle) {
			continue
		}
		just := strings.TrimSpace(f.Source.Justification)
		if just == "" || len(just) > maxUsageReasonLen || isGenericJustification(just) {
			continue
		}
		return just
	}
	return ""
}

func isGenericJustification(s string) bool {
	lowered := strings.ToLower(s)
	for _, g := range genericJustifications {
		if lowered == g {
			return true
		}
	}
	return false
}

// reasonFromKeywords builds a sentence from one or two matched clause
// keywords. Three or more matches means the document is broad and the keyword
// sentence would mislead, so the rule declines.
func reasonFromKeywords(item evidence.Item) string {
	haystack := strings.ToLower(item.Title + " " + item.Snippet)
	var labels []string
	for _, kw := range reasonKeywords {
		if strings.Contains(haystack, kw.needle) {
			labels = append(labels, kw.label)
			if len(labels) > 2 {
				return ""
			}
		}
	}
	if len(labels) == 0 {
		return ""
	}
	subject := strings.Join(labels, " and ")
	switch item.SourceType.Partition() {
	case evidence.PartitionPrecedent:
		return fmt.Sprintf("Cited for %s as a comparable case outcome.", subject)
	default:
		if item.SourceType == evidence.SourceStandardClause {
			return fmt.Sprintf("Used as the comparison baseline for %s.", subject)
		}
		return fmt.Sprintf("States the legal requirements for %s.", subject)
	}
}

// reasonFromSnippet summarizes the leading part of the snippet.
func reasonFromSnippet(item evidence.Item) string {
	snippet := strings.TrimSpace(item.Snippet)
	if snippet == "" {
		return ""
	}
	lead := truncateRunes(snippet, 100)
	switch {
	case item.SourceType == evidence.SourceStandardClause:
		return fmt.Sprintf("Comparison baseline: %s", lead)
	case item.SourceType.Partition() == evidence.PartitionGuidance:
		return fmt.Sprintf("Legal reference: %s", lead)
	default:
		return fmt.Sprintf("Contextual reference: %s", lead)
	}
}

func roleNoun(s evidence.SourceType) string {
	switch s {
	case evidence.SourceStandardClause:
		return "a standard-clause"
	case evidence.SourcePrecedentCase:
		return "a precedent"
	default:
		return "a guidance"
	}
}

func capReason(s string) string {
	return truncateRunes(s, maxUsageReasonLen)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
