package files

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/worklens/triage/evidence"
)

// Resolver turns an opaque external reference into a retrievable link.
// Implementations must return an empty string, not an error the caller has to
// branch on, when the reference cannot be resolved.
type Resolver interface {
	Resolve(ctx context.Context, externalRef string, sourceType evidence.SourceType) (string, error)
}

// URLResolver maps external references onto a document-service URL per source
// type. It is the default production resolver; the document service itself is
// owned by the surrounding product.
type URLResolver struct {
	BaseURL string
	// Paths maps source types to path prefixes; missing entries fall back
	// to DefaultPath.
	Paths       map[evidence.SourceType]string
	DefaultPath string
}

// NewURLResolver creates a resolver rooted at the given base URL.
func NewURLResolver(baseURL string) *URLResolver {
	return &URLResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Paths: map[evidence.SourceType]string{
			evidence.SourceGuidanceLaw:    "laws",
			evidence.SourceGuidanceManual: "manuals",
			evidence.SourceStandardClause: "clauses",
			evidence.SourcePrecedentCase:  "cases",
		},
		DefaultPath: "documents",
	}
}

// Resolve builds the file link for an external reference. Empty references
// resolve to an empty link.
func (r *URLResolver) Resolve(ctx context.Context, externalRef string, sourceType evidence.SourceType) (string, error) {
	ref := strings.TrimSpace(externalRef)
	if ref == "" {
		return "", nil
	}
	if r.BaseURL == "" {
		return "", fmt.Errorf("resolver base URL not configured")
	}
	path, ok := r.Paths[sourceType]
	if !ok || path == "" {
		path = r.DefaultPath
	}
	return fmt.Sprintf("%s/%s/%s", r.BaseURL, path, url.PathEscape(ref)), nil
}
