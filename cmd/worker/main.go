package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/wfs-input-generator/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wfs-input-generator/internal/adapter/kafka"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/catalog"
	"github.com/couchcryptid/wfs-input-generator/internal/config"
	"github.com/couchcryptid/wfs-input-generator/internal/generator"
	"github.com/couchcryptid/wfs-input-generator/internal/observability"
	"github.com/couchcryptid/wfs-input-generator/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	registry := catalog.New(logger)
	service := generator.NewService(registry, logger, metrics)
	logger.Info("backends registered", "backends", registry.List())

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(service)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	opts := httpadapter.Options{
		GenerateTimeout: cfg.GenerateTimeout,
		MaxRequestBytes: cfg.MaxRequestBytes,
	}
	if cfg.GenerateAPIEnabled {
		opts.Service = service
		logger.Info("generation api enabled", "timeout", cfg.GenerateTimeout, "max_request_bytes", cfg.MaxRequestBytes)
	} else {
		logger.Info("generation api disabled")
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

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

	logger.Info("shutdown complete")
}
