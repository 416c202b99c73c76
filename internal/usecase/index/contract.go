package index

import (
	"context"

	"github.com/kailas-cloud/recommender/internal/domain"
)

// Repository defines the vector index storage contract.
type Repository interface {
	Rebuild(ctx context.Context, entries []domain.IndexEntry, batchSize int) error
	Search(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context) (bool, error)
}

// Embedder vectorizes queries one at a time and documents in batches.
type Embedder interface {
	domain.Embedder
	domain.BatchEmbedder
}
