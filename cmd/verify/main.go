package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-data-verify/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-data-verify/internal/adapter/kafka"
	"github.com/couchcryptid/storm-data-verify/internal/config"
	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/engine"
	"github.com/couchcryptid/storm-data-verify/internal/observability"
	"github.com/couchcryptid/storm-data-verify/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	domain.SetLabelCacheSize(cfg.LabelCacheSize)
	eng := engine.New(cfg.Metrics...)
	logger.Info("verification engine configured", "metrics", eng.Metrics(), "label_cache_size", cfg.LabelCacheSize)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	verifier := pipeline.NewVerifier(eng)
	results := pipeline.NewResults()

	p := pipeline.New(reader, verifier, writer, results, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, results, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start verification pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete", "outputs_stored", results.Len())
}
