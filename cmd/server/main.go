package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanshika/clientdesk/internal/aggregation"
	"github.com/vanshika/clientdesk/internal/archive"
	"github.com/vanshika/clientdesk/internal/config"
	"github.com/vanshika/clientdesk/internal/insights"
	"github.com/vanshika/clientdesk/internal/lifecycle"
	"github.com/vanshika/clientdesk/internal/logging"
	"github.com/vanshika/clientdesk/internal/repository"
	"github.com/vanshika/clientdesk/internal/server"
	"github.com/vanshika/clientdesk/internal/service"
	"github.com/vanshika/clientdesk/internal/store"
	"github.com/vanshika/clientdesk/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingOptions{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flushing traces failed", "error", err)
		}
	}()

	storeClient, err := store.Open(ctx, store.Options{
		Driver:         cfg.Store.Driver,
		DSN:            cfg.Store.DSN,
		Database:       cfg.Store.Database,
		Username:       cfg.Store.Username,
		Password:       cfg.Store.Password,
		MaxConnections: cfg.Store.MaxConnections,
	})
	if err != nil {
		logger.Error("failed to open store", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer func() {
		if err := storeClient.Close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	var metrics *telemetry.Metrics
	if cfg.HTTP.MetricsEnabled {
		metrics = telemetry.NewMetrics()
	}

	repo := repository.New(storeClient)
	clients := service.NewClientService(repo)

	engine := aggregation.NewEngine(repo, logger)
	orchestrator, err := buildOrchestrator(ctx, logger, cfg, storeClient)
	if err != nil {
		logger.Error("failed to configure client deletion", "error", err)
		os.Exit(1)
	}
	if metrics != nil {
		engine.WithObserver(metrics)
		orchestrator.WithObserver(metrics)
	}

	// Without an endpoint, stored narratives are still served and generation answers 503.
	var gen insights.Generator
	if cfg.Insights.Endpoint != "" {
		gen = insights.NewHTTPGenerator(cfg.Insights.Endpoint, cfg.Insights.Model, cfg.Insights.Timeout)
		logger.Info("insight generation enabled", "endpoint", cfg.Insights.Endpoint, "model", cfg.Insights.Model)
	}
	narratives := insights.NewService(engine, repo, gen, cfg.Insights.Model, logger)

	apiHandlers := server.NewAPIHandlers(logger, clients, engine, orchestrator, narratives)
	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.StoreHealthService{Client: storeClient},
		API:              apiHandlers,
		Metrics:          metrics,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowCredentials: cfg.HTTP.AllowCredentials,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildOrchestrator(ctx context.Context, logger *slog.Logger, cfg config.Config, deleter lifecycle.Deleter) (*lifecycle.Orchestrator, error) {
	policy, err := lifecycle.ParsePolicy(cfg.Lifecycle.ClientDeletePolicy)
	if err != nil {
		return nil, err
	}
	orchestrator := lifecycle.NewOrchestrator(deleter, logger)
	orchestrator.WithPolicy(policy)

	sink, err := archive.Open(ctx, archive.Options{
		Driver:    cfg.Archive.Driver,
		Root:      cfg.Archive.FSRoot,
		Bucket:    cfg.Archive.S3Bucket,
		Region:    cfg.Archive.S3Region,
		Endpoint:  cfg.Archive.S3Endpoint,
		PathStyle: cfg.Archive.S3PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("open deletion archive: %w", err)
	}
	if sink != nil {
		orchestrator.WithSink(sink)
		logger.Info("deletion reports archived", "driver", cfg.Archive.Driver)
	}
	return orchestrator, nil
}
