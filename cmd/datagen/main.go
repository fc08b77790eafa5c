package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/clientdesk/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		clients       = flag.Int("clients", cfg.NumClients, "number of clients to generate (max 9999)")
		trendMonths   = flag.Int("trend-months", cfg.TrendMonths, "months of trend history per client")
		missingChance = flag.Float64("missing-chance", cfg.MissingRecordChance, "probability of omitting each optional record")
		seed          = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir     = flag.String("output-dir", "data", "directory to write the dataset files")
		writeStdout   = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumClients:          *clients,
		TrendMonths:         *trendMonths,
		MissingRecordChance: clampProbability(*missingChance),
		Seed:                *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d clients (%d manual inputs, %d trend points) into %s\n",
		len(dataset.Clients), len(dataset.ManualInputs), len(dataset.Trends), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
