// Package schedule runs catalog refreshes on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/usecase/index"
	"github.com/kailas-cloud/recommender/internal/usecase/ingest"
)

// DefaultCron refreshes the catalog weekly, Monday 03:00 UTC.
const DefaultCron = "0 3 * * 1"

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Ingester produces a fresh catalog snapshot.
type Ingester interface {
	Run(ctx context.Context) (ingest.Report, error)
}

// Indexer rebuilds the vector index from a snapshot.
type Indexer interface {
	BuildFromSnapshot(ctx context.Context, path string) (index.Report, error)
}

// RefreshJob scrapes the catalog and reindexes it. A failed scrape keeps the
// previous snapshot and index.
func RefreshJob(ing Ingester, idx Indexer) Job {
	return func(ctx context.Context) error {
		rep, err := ing.Run(ctx)
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		if _, err := idx.BuildFromSnapshot(ctx, rep.Path); err != nil {
			return fmt.Errorf("index: %w", err)
		}
		return nil
	}
}

// Scheduler runs one job on a cron expression, never overlapping with itself.
type Scheduler struct {
	cron       string
	job        Job
	runOnStart bool
	logger     *zap.Logger
}

// New creates a scheduler. An empty cron uses DefaultCron.
func New(cron string, job Job, runOnStart bool, logger *zap.Logger) *Scheduler {
	if cron == "" {
		cron = DefaultCron
	}
	return &Scheduler{cron: cron, job: job, runOnStart: runOnStart, logger: logger}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	cs := gocron.NewScheduler(time.UTC)
	cs.SingletonModeAll()

	if _, err := cs.Cron(s.cron).Tag("refresh").Do(s.runOnce, ctx); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cron, err)
	}

	if s.runOnStart {
		s.runOnce(ctx)
	}

	cs.StartAsync()
	s.logger.Info("Scheduler started", zap.String("cron", s.cron))

	<-ctx.Done()
	cs.Stop()
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.logger.Info("Refresh started")
	if err := s.job(ctx); err != nil {
		s.logger.Error("Refresh failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	s.logger.Info("Refresh finished", zap.Duration("duration", time.Since(start)))
}
