package recommender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/recommender/internal/db/redis"
	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/repository/assessment"
	"github.com/kailas-cloud/recommender/internal/transport/web"
	embeddinguc "github.com/kailas-cloud/recommender/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/recommender/internal/usecase/health"
	indexuc "github.com/kailas-cloud/recommender/internal/usecase/index"
	insightuc "github.com/kailas-cloud/recommender/internal/usecase/insight"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCollection       = "shl_assessments"
	defaultVectorDim        = 384
)

// Внутренние интерфейсы для подмены в тестах.
type indexUseCase interface {
	Build(ctx context.Context, records []domain.Assessment) (int, error)
	BuildFromSnapshot(ctx context.Context, path string) (indexuc.Report, error)
	Count(ctx context.Context) (int, error)
}

type recommendUseCase interface {
	Recommend(ctx context.Context, req recommenduc.Request) ([]domain.Recommendation, error)
}

type store interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the recommender SDK entry point.
type Client struct {
	store        store
	indexSvc     indexUseCase
	recommendSvc recommendUseCase
	healthSvc    healthUseCase
	obs          *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		collection:       defaultCollection,
		vectorDimensions: defaultVectorDim,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("recommender: database address required (use WithValkey or WithRedis)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("recommender: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	s, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("recommender: database not ready: %w", err)
	}

	return wireClient(s, cfg, obs), nil
}

// createStore picks the driver. Valkey and Redis share the RESP client; the
// split is kept so callers state which server they run.
func createStore(cfg *clientConfig) (*dbRedis.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("recommender: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("recommender: unknown driver %q", cfg.driver)
	}
}

func wireClient(s *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	nop := zap.NewNop()

	repo := assessment.New(s, cfg.collection, cfg.vectorDimensions)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		repo = repo.WithHNSW(assessment.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}

	adapter := &embedderAdapter{inner: cfg.embedder}
	emb := embeddinguc.NewInstrumentedEmbedder(adapter, "sdk", "custom", cfg.vectorDimensions, nop).
		WithMaxBatch(cfg.maxEmbedBatch)
	indexSvc := indexuc.New(repo, withInstruction(emb, cfg.documentInstruction), cfg.indexBatchSize, nop).
		WithQueryEmbedder(withInstruction(emb, cfg.queryInstruction))

	// nil interface, not a typed nil pointer, when insights are off
	var insighter recommenduc.Insighter
	if cfg.generator != nil {
		insighter = insightuc.New(cfg.generator, insightuc.Options{Timeout: cfg.insightTimeout}, nop)
	}

	fetcher := web.New(web.Options{Timeout: cfg.fetchTimeout})
	recommendSvc := recommenduc.New(
		recommenduc.NewResolver(fetcher),
		indexSvc,
		recommenduc.NewAssembler(insighter, cfg.insightConcurrency),
	)

	var embCheck healthuc.EmbeddingChecker
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		embCheck = hc
	}
	healthSvc := healthuc.New(s, embCheck, repo, cfg.generator != nil)

	return &Client{
		store:        s,
		indexSvc:     indexSvc,
		recommendSvc: recommendSvc,
		healthSvc:    healthSvc,
		obs:          obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Index replaces the whole index with records and returns how many were stored.
func (c *Client) Index(ctx context.Context, records []Assessment) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err, "records", n) }()

	n, err = c.indexSvc.Build(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("index: %w", err)
	}
	return n, nil
}

// IndexSnapshot loads a catalog snapshot file and rebuilds the index from it.
// Items missing required fields are skipped and counted in the report.
func (c *Client) IndexSnapshot(ctx context.Context, path string) (rep IndexReport, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("index_snapshot", start, err, "indexed", rep.Indexed, "skipped", rep.Skipped)
	}()

	r, err := c.indexSvc.BuildFromSnapshot(ctx, path)
	rep = IndexReport{Indexed: r.Indexed, Skipped: r.Skipped, Duration: r.Duration}
	if err != nil {
		return rep, fmt.Errorf("index snapshot: %w", err)
	}
	return rep, nil
}

// Count returns the number of indexed assessments.
func (c *Client) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	n, err = c.indexSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Recommend returns up to TopK assessments for a job description or a URL
// of a page holding one. Insights are generated only when withInsights is
// true and a Generator is configured; otherwise they carry the placeholder.
func (c *Client) Recommend(ctx context.Context, text string, withInsights bool) (out []Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err, "results", len(out)) }()

	out, err = c.recommendSvc.Recommend(ctx, recommenduc.Request{Text: text, UseAI: withInsights})
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return out, nil
}

// withInstruction prefixes texts embedded through e; empty is a passthrough.
func withInstruction(e indexuc.Embedder, instruction string) indexuc.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// embedderAdapter wraps public Embedder to satisfy the internal batch contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.BatchFallback(ctx, a, texts)
	}
	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
