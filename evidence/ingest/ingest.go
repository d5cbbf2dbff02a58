package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Passage preparation helpers for the corpus loader. Guidance pages arrive as
// HTML scraped from agency sites; precedent summaries arrive as OCR'd text.
// Both are normalised into plain passages before embedding.

var (
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanText strips control characters, OCR artifacts, and excess whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	// remove control chars except newline
	b := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	// fix common ligatures / OCR artifacts
	fixes := map[string]string{
		"ﬁ": "fi", "ﬂ": "fl",
		"—": "-", "–": "-",
		"·": ".", "•": "-",
	}
	for k, v := range fixes {
		b = strings.ReplaceAll(b, k, v)
	}

	b = reSpaces.ReplaceAllString(b, " ")
	b = reNewlines.ReplaceAllString(b, "\n\n")

	return strings.TrimSpace(b)
}

// HTMLToPassages extracts headed sections from an HTML guidance page. Each
// heading starts a new passage; paragraphs and list items under it are joined.
func HTMLToPassages(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var passages []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(current, "\n"))
		if joined != "" {
			passages = append(passages, joined)
		}
		current = nil
	}

	doc.Find("h1,h2,h3,h4,p,li,table").Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3", "h4":
			flush()
			current = append(current, strings.TrimSpace(s.Text()))
		case "p":
			current = append(current, strings.TrimSpace(s.Text()))
		case "li":
			current = append(current, "- "+strings.TrimSpace(s.Text()))
		case "table":
			current = append(current, flattenTable(s))
		}
	})
	flush()
	return passages, nil
}

func flattenTable(sel *goquery.Selection) string {
	var rows []string
	sel.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cols []string
		tr.Find("th,td").Each(func(j int, td *goquery.Selection) {
			cols = append(cols, strings.TrimSpace(td.Text()))
		})
		if len(cols) > 0 {
			rows = append(rows, strings.Join(cols, " | "))
		}
	})
	return strings.Join(rows, "\n")
}

// DedupePassages drops passages whose normalised text was already seen.
func DedupePassages(passages []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(reSpaces.ReplaceAllString(p, " "))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Prepare runs the full normalisation pipeline over raw passage text.
func Prepare(raw string) string {
	return CleanText(raw)
}
