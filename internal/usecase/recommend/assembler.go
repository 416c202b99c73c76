package recommend

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/logger"
)

// DefaultInsightConcurrency bounds parallel insight calls per request.
const DefaultInsightConcurrency = 4

// Assembler converts neighbors into recommendations.
type Assembler struct {
	insights    Insighter
	concurrency int
}

// NewAssembler creates an assembler. insights may be nil: every requested
// insight is then reported unavailable.
func NewAssembler(insights Insighter, concurrency int) *Assembler {
	if concurrency <= 0 {
		concurrency = DefaultInsightConcurrency
	}
	return &Assembler{insights: insights, concurrency: concurrency}
}

// Assemble never fails. Scores are clamped into [0,1]; insight failures
// become domain.InsightsUnavailable. With useAI false no insight is requested
// and AIInsights stays empty.
func (a *Assembler) Assemble(ctx context.Context, hits []domain.Neighbor, useAI bool) []domain.Recommendation {
	out := make([]domain.Recommendation, len(hits))
	for i := range hits {
		out[i] = fromNeighbor(hits[i])
	}
	if !useAI || len(out) == 0 {
		return out
	}

	log := logger.FromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range out {
		rec := &out[i]
		g.Go(func() error {
			text, err := domain.TryWithDefault(domain.InsightsUnavailable, func() (string, error) {
				if a.insights == nil {
					return "", domain.ErrInsightsUnavailable
				}
				return a.insights.Insight(gctx, rec.Name, rec.Description)
			})
			if err != nil {
				log.Debug("insight unavailable", zap.String("name", rec.Name), zap.Error(err))
			}
			rec.AIInsights = text
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func fromNeighbor(n domain.Neighbor) domain.Recommendation {
	md := n.Metadata
	score, _ := domain.TryWithDefault(domain.DefaultScore, func() (float64, error) {
		return domain.NormalizeScore(n.Distance), nil
	})
	return domain.Recommendation{
		Name:          md["name"],
		URL:           md["url"],
		Description:   orNotSpecified(md, "description"),
		Duration:      orNotSpecified(md, "duration"),
		Languages:     domain.SplitLanguages(md["languages"]),
		JobLevel:      orNotSpecified(md, "job_level"),
		RemoteTesting: domain.ParseIndicator(md["remote_testing"]),
		AdaptiveIRT:   domain.ParseIndicator(md["adaptive_irt_support"]),
		TestType:      orNotSpecified(md, "test_type"),
		Score:         score,
	}
}

func orNotSpecified(md map[string]string, key string) string {
	if v := md[key]; v != "" {
		return v
	}
	return domain.NotSpecified
}
