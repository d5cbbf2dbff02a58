package triage

import (
	"encoding/json"
	"fmt"
	"strings"

	errorskg "github.com/worklens/triage/errors"
)

// Parse-with-fallback boundary for generation responses. Models return free
// text that should contain a JSON object; any structural mismatch yields the
// stage's documented default instead of an error escaping the stage.

// extractJSONBlock unwraps a markdown code fence and trims to the outermost
// JSON object or array.
func extractJSONBlock(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
		if strings.HasPrefix(strings.ToLower(trimmed), "json") {
			trimmed = strings.TrimSpace(trimmed[4:])
		}
	}

	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return ""
	}
	var end int
	if trimmed[start] == '{' {
		end = strings.LastIndex(trimmed, "}")
	} else {
		end = strings.LastIndex(trimmed, "]")
	}
	if end <= start {
		return ""
	}
	return trimmed[start : end+1]
}

func parseClassification(text string) (Classification, error) {
	block := extractJSONBlock(text)
	if block == "" {
		return Classification{}, fmt.Errorf("classification: %w", errorskg.ErrUnparseable)
	}

	var raw struct {
		Category  string `json:"category"`
		RiskScore *int   `json:"risk_score"`
	}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return Classification{}, fmt.Errorf("classification: %w: %v", errorskg.ErrUnparseable, err)
	}

	cls := Classification{
		Category:  normalizeCategory(raw.Category),
		RiskScore: DefaultRiskScore,
	}
	if cls.Category == "" {
		cls.Category = CategoryUnknown
	}
	if raw.RiskScore != nil {
		cls.RiskScore = clampScore(*raw.RiskScore)
	}
	return cls, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func parseNarrative(text string) (Narrative, error) {
	block := extractJSONBlock(text)
	if block == "" {
		return Narrative{}, fmt.Errorf("narrative: %w", errorskg.ErrUnparseable)
	}

	var n Narrative
	if err := json.Unmarshal([]byte(block), &n); err != nil {
		return Narrative{}, fmt.Errorf("narrative: %w: %v", errorskg.ErrUnparseable, err)
	}
	if n.IsZero() {
		return Narrative{}, fmt.Errorf("narrative: empty sections: %w", errorskg.ErrUnparseable)
	}
	return n, nil
}

func parseFindings(text string) ([]Finding, error) {
	block := extractJSONBlock(text)
	if block == "" {
		return nil, fmt.Errorf("findings: %w", errorskg.ErrUnparseable)
	}

	var raw struct {
		Findings []struct {
			Description   string `json:"description"`
			Severity      string `json:"severity"`
			DocumentTitle string `json:"document_title"`
			Justification string `json:"justification"`
		} `json:"findings"`
	}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		// The model sometimes returns a bare array.
		if arrErr := json.Unmarshal([]byte(block), &raw.Findings); arrErr != nil {
			return nil, fmt.Errorf("findings: %w: %v", errorskg.ErrUnparseable, err)
		}
	}

	findings := make([]Finding, 0, len(raw.Findings))
	for _, f := range raw.Findings {
		desc := strings.TrimSpace(f.Description)
		if desc == "" {
			continue
		}
		findings = append(findings, Finding{
			Description: desc,
			Severity:    strings.TrimSpace(f.Severity),
			Source: SourceAttribution{
				DocumentTitle: strings.TrimSpace(f.DocumentTitle),
				Justification: strings.TrimSpace(f.Justification),
			},
		})
	}
	return findings, nil
}

func parseScripts(text string) (OutreachScripts, error) {
	block := extractJSONBlock(text)
	if block == "" {
		return OutreachScripts{}, fmt.Errorf("scripts: %w", errorskg.ErrUnparseable)
	}

	var scripts OutreachScripts
	if err := json.Unmarshal([]byte(block), &scripts); err != nil {
		return OutreachScripts{}, fmt.Errorf("scripts: %w: %v", errorskg.ErrUnparseable, err)
	}
	if scripts.IsZero() {
		return OutreachScripts{}, fmt.Errorf("scripts: empty: %w", errorskg.ErrUnparseable)
	}
	return scripts, nil
}

func parseOrganizations(text string) ([]Organization, error) {
	block := extractJSONBlock(text)
	if block == "" {
		return nil, fmt.Errorf("organizations: %w", errorskg.ErrUnparseable)
	}

	var raw struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		if arrErr := json.Unmarshal([]byte(block), &raw.Organizations); arrErr != nil {
			return nil, fmt.Errorf("organizations: %w: %v", errorskg.ErrUnparseable, err)
		}
	}

	orgs := make([]Organization, 0, len(raw.Organizations))
	for _, org := range raw.Organizations {
		if strings.TrimSpace(org.Name) == "" {
			continue
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}
