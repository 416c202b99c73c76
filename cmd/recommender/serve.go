package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/config"
	chiTransport "github.com/kailas-cloud/recommender/internal/transport/chi"
	"github.com/kailas-cloud/recommender/internal/transport/web"
	healthuc "github.com/kailas-cloud/recommender/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
	"github.com/kailas-cloud/recommender/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /recommend",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	logger.Info("Starting recommender API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.Strings("db_addrs", a.cfg.Database.Addrs),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	idx, repo, baseEmbedder := a.buildIndex(store)

	insights, closeInsights, err := a.buildInsights(ctx)
	if err != nil {
		return err
	}
	defer closeInsights()

	resolver := recommenduc.NewResolver(web.New(web.Options{
		UserAgent: a.cfg.Resolver.UserAgent,
		Timeout:   config.Seconds(a.cfg.Resolver.TimeoutSec),
	}))
	recommendSvc := recommenduc.New(resolver, idx,
		recommenduc.NewAssembler(insights, a.cfg.Insights.Concurrency))

	healthSvc := healthuc.New(store, baseEmbedder, repo, insights.Enabled())

	if exists, err := repo.Exists(ctx); err == nil && !exists {
		logger.Warn("Vector index not built yet, /recommend will fail until `recommender index` runs",
			zap.String("index", repo.IndexName()))
	}

	server := chiTransport.NewServer(recommendSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
		ReadTimeout:  config.Seconds(a.cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Seconds(a.cfg.HTTP.WriteTimeoutSec),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(a.cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
