// Package ingest runs the scrape and writes the catalog snapshot.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/catalog"
	"github.com/kailas-cloud/recommender/internal/domain"
	logpkg "github.com/kailas-cloud/recommender/internal/logger"
)

// ErrNothingScraped is returned when a run produced no records. The
// previous snapshot is kept.
var ErrNothingScraped = errors.New("scrape produced no records")

// Scraper harvests the catalog.
type Scraper interface {
	Scrape(ctx context.Context) ([]domain.Assessment, error)
}

// Report summarizes one ingestion run.
type Report struct {
	RunID    string
	Records  int
	Degraded int
	Path     string
	Duration time.Duration
}

// Service is the ingestion batch: scrape everything, then replace the snapshot.
type Service struct {
	scraper Scraper
	path    string
	logger  *zap.Logger
}

// New creates an ingestion service writing to path.
func New(s Scraper, path string, logger *zap.Logger) *Service {
	if path == "" {
		path = catalog.DefaultPath
	}
	return &Service{scraper: s, path: path, logger: logger}
}

// Run scrapes the catalog and saves it. An interrupted or empty run leaves
// the existing snapshot untouched.
func (s *Service) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString(), Path: s.path}
	ctx, logger := logpkg.WithFields(ctx, s.logger, zap.String("run_id", rep.RunID))
	start := time.Now()

	logger.Info("Ingestion started", zap.String("path", s.path))

	records, err := s.scraper.Scrape(ctx)
	rep.Records = len(records)
	rep.Degraded = countDegraded(records)
	rep.Duration = time.Since(start)
	if err != nil {
		logger.Warn("Ingestion interrupted, snapshot kept",
			zap.Int("records", rep.Records), zap.Error(err))
		return rep, fmt.Errorf("scrape: %w", err)
	}
	if len(records) == 0 {
		logger.Warn("Ingestion produced no records, snapshot kept")
		return rep, ErrNothingScraped
	}

	if err := catalog.Save(s.path, records); err != nil {
		return rep, fmt.Errorf("save snapshot: %w", err)
	}
	rep.Duration = time.Since(start)

	logger.Info("Ingestion finished",
		zap.Int("records", rep.Records),
		zap.Int("degraded", rep.Degraded),
		zap.String("path", s.path),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

func countDegraded(records []domain.Assessment) int {
	prefix := domain.PlaceholderDescription + " (Error:"
	n := 0
	for i := range records {
		if strings.HasPrefix(records[i].Description, prefix) {
			n++
		}
	}
	return n
}
