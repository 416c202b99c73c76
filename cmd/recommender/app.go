package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/config"
	dbRedis "github.com/kailas-cloud/recommender/internal/db/redis"
	"github.com/kailas-cloud/recommender/internal/domain"
	logpkg "github.com/kailas-cloud/recommender/internal/logger"
	"github.com/kailas-cloud/recommender/internal/metrics"
	"github.com/kailas-cloud/recommender/internal/repository/assessment"
	"github.com/kailas-cloud/recommender/internal/repository/embcache"
	"github.com/kailas-cloud/recommender/internal/scraper"
	geminiGen "github.com/kailas-cloud/recommender/internal/transport/gemini"
	openaiEmb "github.com/kailas-cloud/recommender/internal/transport/openai"
	"github.com/kailas-cloud/recommender/internal/transport/web"
	embeddinguc "github.com/kailas-cloud/recommender/internal/usecase/embedding"
	indexuc "github.com/kailas-cloud/recommender/internal/usecase/index"
	ingestuc "github.com/kailas-cloud/recommender/internal/usecase/ingest"
	insightuc "github.com/kailas-cloud/recommender/internal/usecase/insight"
	"github.com/kailas-cloud/recommender/internal/version"
)

// app is the composition root shared by all commands.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func newApp() (*app, error) {
	env := envFlag
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.Register()

	logger.Debug("Configuration loaded",
		zap.String("version", version.Version),
		zap.String("env", env),
	)
	return &app{env: env, cfg: cfg, logger: logger}, nil
}

func (a *app) close() { _ = a.logger.Sync() }

func (a *app) openStore(ctx context.Context) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Database.Addrs,
		Password: a.cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, config.Seconds(a.cfg.Database.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	a.logger.Info("Connected to database", zap.Strings("addrs", a.cfg.Database.Addrs))
	return store, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
// The base provider is returned too for health checks.
func (a *app) buildEmbedder(store *dbRedis.Store) (*embeddinguc.InstrumentedEmbedder, *openaiEmb.Embedder) {
	ec := a.cfg.Embedding

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:   ec.APIKey,
		BaseURL:  ec.BaseURL,
		Model:    ec.Model,
		Provider: ec.Provider,
		Timeout:  config.Seconds(ec.TimeoutSec),
		Logger:   a.logger,
	})

	cached := embcache.New(base, store, embcache.Options{
		Model: ec.Model,
		Dim:   ec.Dimensions,
		TTL:   time.Duration(ec.CacheTTLHours) * time.Hour,
	}, metrics.EmbeddingCacheTotal, a.logger)

	embedder := embeddinguc.NewInstrumentedEmbedder(
		cached, ec.Provider, ec.Model, ec.Dimensions, a.logger,
	).WithMaxBatch(ec.MaxBatch)

	return embedder, base
}

func (a *app) buildRepo(store *dbRedis.Store) *assessment.Repo {
	return assessment.New(store, a.cfg.Index.Collection, a.cfg.Embedding.Dimensions).
		WithHNSW(assessment.HNSWConfig{
			M:           a.cfg.Index.HNSWM,
			EFConstruct: a.cfg.Index.HNSWEFConstruct,
		})
}

// buildIndex wires separate document and query embedders. Instruction
// prefixes are outermost, so the cache key includes them.
func (a *app) buildIndex(store *dbRedis.Store) (*indexuc.Service, *assessment.Repo, *openaiEmb.Embedder) {
	embedder, base := a.buildEmbedder(store)
	repo := a.buildRepo(store)

	ec := a.cfg.Embedding
	var docEmb indexuc.Embedder = embedder
	if ec.DocumentInstruction != "" {
		docEmb = domain.NewInstructionEmbedder(embedder, ec.DocumentInstruction)
	}
	var queryEmb domain.Embedder = embedder
	if ec.QueryInstruction != "" {
		queryEmb = domain.NewInstructionEmbedder(embedder, ec.QueryInstruction)
	}
	if ec.DocumentInstruction != "" || ec.QueryInstruction != "" {
		a.logger.Info("Embedding instructions set",
			zap.String("document", ec.DocumentInstruction),
			zap.String("query", ec.QueryInstruction))
	}

	svc := indexuc.New(repo, docEmb, a.cfg.Index.BatchSize, a.logger).WithQueryEmbedder(queryEmb)
	return svc, repo, base
}

func (a *app) buildIngest() *ingestuc.Service {
	sc := a.cfg.Scraper
	listing := web.New(web.Options{UserAgent: sc.UserAgent, Timeout: config.Seconds(sc.ListingTimeout)})
	detail := web.New(web.Options{UserAgent: sc.UserAgent, Timeout: config.Seconds(sc.DetailTimeout)})

	s := scraper.New(listing, detail, scraper.Options{
		BaseURL:      sc.BaseURL,
		ListingURLs:  sc.ListingURLs,
		ListingDelay: time.Duration(sc.ListingDelayMs) * time.Millisecond,
		DetailDelay:  time.Duration(sc.DetailDelayMs) * time.Millisecond,
	}, a.logger)

	return ingestuc.New(s, a.cfg.Catalog.Path, a.logger)
}

// buildInsights returns a service with a nil generator when no credential is set.
func (a *app) buildInsights(ctx context.Context) (*insightuc.Service, func(), error) {
	ic := a.cfg.Insights
	opts := insightuc.Options{
		RatePerSecond:   ic.RatePerSec,
		Burst:           ic.Burst,
		Timeout:         config.Seconds(ic.TimeoutSec),
		BreakerFailures: ic.BreakerFailures,
		BreakerCooldown: config.Seconds(ic.BreakerCooldownSec),
	}
	noop := func() {}

	if !ic.Enabled() {
		a.logger.Warn("Insights API key not set, AI insights disabled")
		return insightuc.New(nil, opts, a.logger), noop, nil
	}

	// Pass nil interface (not typed nil pointer!) when the generator is absent.
	var gen insightuc.Generator
	closeFn := noop
	switch ic.Provider {
	case "gemini":
		g, err := geminiGen.NewGenerator(ctx, &geminiGen.Config{
			APIKey:      ic.APIKey,
			Model:       ic.Model,
			MaxTokens:   ic.MaxTokens,
			Temperature: ic.Temperature,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("create gemini generator: %w", err)
		}
		gen, closeFn = g, func() { _ = g.Close() }
	default:
		gen = openaiEmb.NewGenerator(&openaiEmb.GeneratorConfig{
			APIKey:      ic.APIKey,
			BaseURL:     ic.BaseURL,
			Model:       ic.Model,
			MaxTokens:   ic.MaxTokens,
			Temperature: ic.Temperature,
			Timeout:     config.Seconds(ic.TimeoutSec),
		})
	}

	a.logger.Info("AI insights enabled",
		zap.String("provider", gen.Name()),
		zap.String("model", ic.Model),
	)
	return insightuc.New(gen, opts, a.logger), closeFn, nil
}
