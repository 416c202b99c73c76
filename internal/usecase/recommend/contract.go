package recommend

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/kailas-cloud/recommender/internal/domain"
)

// PageFetcher downloads a job posting page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Index answers nearest-neighbor queries for text.
type Index interface {
	Ready(ctx context.Context) error
	Query(ctx context.Context, text string, k int) ([]domain.Neighbor, error)
}

// Insighter annotates one assessment with generated text.
type Insighter interface {
	Insight(ctx context.Context, name, description string) (string, error)
}
