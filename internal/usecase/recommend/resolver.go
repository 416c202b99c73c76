package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/scraper"
)

// Resolver turns request text into query text. URLs are replaced by the
// job description found on the page they point at.
type Resolver struct {
	fetcher PageFetcher
}

// NewResolver creates a resolver.
func NewResolver(f PageFetcher) *Resolver {
	return &Resolver{fetcher: f}
}

// IsURL reports whether text takes the job-posting path.
func IsURL(text string) bool {
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}

// Resolve returns the effective query. Non-URL text is returned unchanged.
// Fetch and parse failures wrap domain.ErrBadInput.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, error) {
	if !IsURL(text) {
		return text, nil
	}

	doc, err := r.fetcher.Fetch(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: scraping error: %w", domain.ErrBadInput, err)
	}
	desc, ok := scraper.JobDescription(doc)
	if !ok {
		return "", fmt.Errorf("%w: no job description found at %s", domain.ErrBadInput, text)
	}
	return desc, nil
}
