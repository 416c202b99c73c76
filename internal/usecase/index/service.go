// Package index embeds catalog records into the vector index and answers
// nearest-neighbor queries against it.
package index

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/catalog"
	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

// DefaultBatchSize is how many entries are loaded per storage round trip.
const DefaultBatchSize = 100

// Service builds and queries the vector index.
type Service struct {
	repo      Repository
	embed     Embedder
	query     domain.Embedder
	batchSize int
	logger    *zap.Logger
}

// New creates an index service. batchSize <= 0 uses DefaultBatchSize.
// embed serves both documents and queries until WithQueryEmbedder is set.
func New(repo Repository, embed Embedder, batchSize int, logger *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{repo: repo, embed: embed, query: embed, batchSize: batchSize, logger: logger}
}

// WithQueryEmbedder embeds query text with q instead of the document
// embedder, e.g. to apply a different instruction prefix. nil is ignored.
func (s *Service) WithQueryEmbedder(q domain.Embedder) *Service {
	if q != nil {
		s.query = q
	}
	return s
}

// Report summarizes one snapshot indexing run.
type Report struct {
	Indexed  int
	Skipped  int
	Duration time.Duration
}

// BuildFromSnapshot loads the snapshot at path and rebuilds the index from
// its valid records. Skipped items are logged; an unusable snapshot aborts
// before the index is touched.
func (s *Service) BuildFromSnapshot(ctx context.Context, path string) (Report, error) {
	start := time.Now()

	res, err := catalog.Load(path)
	for _, sk := range res.Skipped {
		s.logger.Warn("Snapshot item skipped", zap.Int("index", sk.Index), zap.String("reason", sk.Reason))
	}
	if err != nil {
		return Report{Skipped: len(res.Skipped)}, fmt.Errorf("load snapshot: %w", err)
	}

	n, err := s.Build(ctx, res.Records)
	if err != nil {
		return Report{Skipped: len(res.Skipped)}, err
	}
	return Report{Indexed: n, Skipped: len(res.Skipped), Duration: time.Since(start)}, nil
}

// Build replaces the whole index with records. Entry ids follow record
// order, so re-indexing reassigns them. A record without a name or a valid
// URL rejects the whole batch before anything is embedded.
func (s *Service) Build(ctx context.Context, records []domain.Assessment) (int, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: no records to index", domain.ErrInvalidCatalog)
	}
	start := time.Now()

	docs := make([]string, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return 0, fmt.Errorf("%w: record %d: %w", domain.ErrInvalidCatalog, i, err)
		}
		docs[i] = records[i].CompositeDocument()
	}

	emb, err := s.embed.BatchEmbed(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}
	if len(emb.Embeddings) != len(records) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d documents",
			domain.ErrEmbeddingProviderError, len(emb.Embeddings), len(records))
	}

	entries := make([]domain.IndexEntry, len(records))
	for i := range records {
		entries[i] = domain.IndexEntry{
			ID:       strconv.Itoa(i),
			Vector:   emb.Embeddings[i],
			Document: docs[i],
			Metadata: records[i].Metadata(),
		}
	}

	if err := s.repo.Rebuild(ctx, entries, s.batchSize); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	elapsed := time.Since(start)
	metrics.IndexEntries.Set(float64(len(entries)))
	metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	s.logger.Info("Index rebuilt",
		zap.Int("entries", len(entries)),
		zap.Int("total_tokens", emb.TotalTokens),
		zap.Duration("duration", elapsed),
	)
	return len(entries), nil
}

// Ready returns domain.ErrIndexNotBuilt while no index exists in storage.
func (s *Service) Ready(ctx context.Context) error {
	ok, err := s.repo.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if !ok {
		return domain.ErrIndexNotBuilt
	}
	return nil
}

// Query embeds text and returns its k nearest entries, closest first. A
// missing index fails before the embedding provider is called.
func (s *Service) Query(ctx context.Context, text string, k int) ([]domain.Neighbor, error) {
	if err := s.Ready(ctx); err != nil {
		return nil, err
	}
	res, err := s.query.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.repo.Search(ctx, res.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

// Count returns the number of indexed entries.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
