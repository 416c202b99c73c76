// Package recommend answers recommendation queries.
package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/logger"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

// TopK is the number of neighbors returned per query.
const TopK = 10

// Request is one recommendation query.
type Request struct {
	Text  string
	UseAI bool
}

// Service resolves, searches and assembles.
type Service struct {
	resolver  *Resolver
	index     Index
	assembler *Assembler
}

// New creates the recommendation service.
func New(resolver *Resolver, index Index, assembler *Assembler) *Service {
	return &Service{resolver: resolver, index: index, assembler: assembler}
}

// Recommend returns at most TopK recommendations ordered by relevance.
// Errors wrap domain.ErrBadInput or domain.ErrIndexNotBuilt where applicable.
// A missing index is reported before any page fetch or embedding call.
func (s *Service) Recommend(ctx context.Context, req Request) ([]domain.Recommendation, error) {
	if err := s.index.Ready(ctx); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	query, err := s.resolver.Resolve(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Query(ctx, query, TopK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(hits) > TopK {
		hits = hits[:TopK]
	}

	recs := s.assembler.Assemble(ctx, hits, req.UseAI)
	metrics.RecommendResultsCount.Observe(float64(len(recs)))

	logger.FromContext(ctx).Debug("recommendations assembled",
		zap.Bool("from_url", IsURL(req.Text)),
		zap.Bool("use_ai", req.UseAI),
		zap.Int("results", len(recs)))
	return recs, nil
}
