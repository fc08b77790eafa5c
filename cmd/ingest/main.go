package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/clientdesk/internal/config"
	"github.com/vanshika/clientdesk/internal/generator"
	"github.com/vanshika/clientdesk/internal/logging"
	"github.com/vanshika/clientdesk/internal/repository"
	"github.com/vanshika/clientdesk/internal/service"
	"github.com/vanshika/clientdesk/internal/store"
)

func main() {
	var (
		datasetDir = flag.String("dataset-dir", "./data", "Directory containing clients.json and record files")
		workers    = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	dataset, err := generator.ReadDataset(*datasetDir)
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "dir", *datasetDir)
		os.Exit(1)
	}
	if len(dataset.Clients) == 0 {
		logger.Error("clients dataset empty", "dir", *datasetDir)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := openStore(ctx, logger, cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	svc := service.NewClientService(repository.New(client))
	ingestor := service.NewBulkIngestor(svc, *workers)

	steps := []struct {
		name  string
		count int
		run   func() error
	}{
		{"clients", len(dataset.Clients), func() error { return ingestor.IngestClients(ctx, dataset.Clients) }},
		{"manual inputs", len(dataset.ManualInputs), func() error { return ingestor.IngestManualInputs(ctx, dataset.ManualInputs) }},
		{"calculated data", len(dataset.Calculated), func() error { return ingestor.IngestCalculatedData(ctx, dataset.Calculated) }},
		{"behavioral data", len(dataset.Behavior), func() error { return ingestor.IngestBehavioralData(ctx, dataset.Behavior) }},
		{"trend points", len(dataset.Trends), func() error { return ingestor.IngestTrendPoints(ctx, dataset.Trends) }},
		{"risk indicators", len(dataset.RiskIndicators), func() error { return ingestor.IngestRiskIndicators(ctx, dataset.RiskIndicators) }},
	}

	start := time.Now()
	for _, step := range steps {
		logger.Info("ingesting "+step.name, "count", step.count, "workers", *workers)
		if err := step.run(); err != nil {
			logger.Error(step.name+" ingestion failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "clients", len(dataset.Clients))
}

func openStore(ctx context.Context, logger *slog.Logger, cfg config.StoreConfig) (store.Client, error) {
	if cfg.Driver == store.DriverMemory {
		logger.Warn("ingesting into the in-memory store; data is discarded on exit")
	}
	client, err := store.Open(ctx, store.Options{
		Driver:         cfg.Driver,
		DSN:            cfg.DSN,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to store", "driver", cfg.Driver)
	return client, nil
}
