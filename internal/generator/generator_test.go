package generator

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/metrics"
	"github.com/vanshika/clientdesk/internal/repository"
	"github.com/vanshika/clientdesk/internal/service"
	"github.com/vanshika/clientdesk/internal/store"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := Config{NumClients: 25, TrendMonths: 12, MissingRecordChance: 0.2, Seed: 7, Now: fixedNow}

	first, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical datasets for the same seed")
	}
}

func TestGenerateProducesValidClients(t *testing.T) {
	ds, err := New(Config{NumClients: 50, Seed: 3, Now: fixedNow}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(ds.Clients) != 50 {
		t.Fatalf("expected 50 clients, got %d", len(ds.Clients))
	}

	seen := make(map[string]struct{}, len(ds.Clients))
	for _, c := range ds.Clients {
		if !domain.ValidClientID(c.ID) {
			t.Fatalf("invalid client id %q", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			t.Fatalf("duplicate client id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if !domain.ValidStatus(c.Status) || !domain.ValidRiskProfile(c.RiskProfile) {
			t.Fatalf("unexpected status/profile %q/%q", c.Status, c.RiskProfile)
		}
	}
}

func TestGenerateLeavesSomeClientsWithoutRecords(t *testing.T) {
	ds, err := New(Config{NumClients: 100, MissingRecordChance: 0.5, Seed: 11, Now: fixedNow}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(ds.ManualInputs) == 0 || len(ds.ManualInputs) == len(ds.Clients) {
		t.Fatalf("expected a partial set of manual inputs, got %d of %d", len(ds.ManualInputs), len(ds.Clients))
	}
	if len(ds.Calculated) == len(ds.Clients) {
		t.Fatalf("expected some clients without calculated data")
	}
}

func TestCalculatedDataMatchesManualTotals(t *testing.T) {
	ds, err := New(Config{NumClients: 40, Seed: 5, Now: fixedNow}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	manual := make(map[string]domain.ManualFinancialInput, len(ds.ManualInputs))
	for _, in := range ds.ManualInputs {
		manual[in.ClientID] = in
	}

	checked := 0
	for _, calc := range ds.Calculated {
		if err := metrics.ValidateProfitabilityScore(calc.ProfitabilityScore); err != nil {
			t.Fatalf("client %s: %v", calc.ClientID, err)
		}
		in, ok := manual[calc.ClientID]
		if !ok {
			continue
		}
		checked++
		if want := metrics.Sum(in.CASABalance, in.FixedDeposits, in.InvestmentBalance); calc.TotalAssets != want {
			t.Fatalf("client %s: assets %v, want %v", calc.ClientID, calc.TotalAssets, want)
		}
		if want := metrics.Sum(in.TotalLiabilities, in.CreditCardUsed); calc.TotalLiabilities != want {
			t.Fatalf("client %s: liabilities %v, want %v", calc.ClientID, calc.TotalLiabilities, want)
		}
	}
	if checked == 0 {
		t.Fatalf("expected at least one client with both manual and calculated data")
	}
}

func TestTrendPointsCoverConfiguredMonths(t *testing.T) {
	ds, err := New(Config{NumClients: 1, TrendMonths: 12, Seed: 9, Now: fixedNow}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(ds.Trends) != 12 {
		t.Fatalf("expected 12 trend points, got %d", len(ds.Trends))
	}
	if ds.Trends[0].Month != "2023-07" || ds.Trends[11].Month != "2024-06" {
		t.Fatalf("unexpected month range %s..%s", ds.Trends[0].Month, ds.Trends[11].Month)
	}
	for _, ind := range ds.RiskIndicators {
		if ind.Value < 0 || ind.Value > 100 {
			t.Fatalf("risk indicator %s out of range: %v", ind.Indicator, ind.Value)
		}
	}
}

func TestGenerateRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{NumClients: 10, Seed: 1, Now: fixedNow}).Generate(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewClampsClientCount(t *testing.T) {
	g := New(Config{NumClients: MaxClients + 50, Seed: 1, Now: fixedNow})
	if g.cfg.NumClients != MaxClients {
		t.Fatalf("expected NumClients clamped to %d, got %d", MaxClients, g.cfg.NumClients)
	}
}

func TestWriteAndReadDatasetRoundTrip(t *testing.T) {
	ds, err := New(Config{NumClients: 5, Seed: 2, Now: fixedNow}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	dir := t.TempDir()
	if err := WriteDataset(ds, dir); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	loaded, err := ReadDataset(dir)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	if len(loaded.Clients) != len(ds.Clients) || len(loaded.Trends) != len(ds.Trends) {
		t.Fatalf("round trip lost records: %d/%d clients, %d/%d trends",
			len(loaded.Clients), len(ds.Clients), len(loaded.Trends), len(ds.Trends))
	}
}

func TestReadDatasetRequiresClients(t *testing.T) {
	_, err := ReadDataset(t.TempDir())
	if !errors.Is(err, ErrMissingDataset) {
		t.Fatalf("expected ErrMissingDataset, got %v", err)
	}
}

func TestGeneratedDatasetIngests(t *testing.T) {
	ds, err := New(Config{NumClients: 15, MissingRecordChance: 0.3, Seed: 21, Now: fixedNow}).Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	client := store.NewMemoryClient()
	svc := service.NewClientService(repository.New(client))
	ingestor := service.NewBulkIngestor(svc, 3)
	ctx := context.Background()

	steps := []func() error{
		func() error { return ingestor.IngestClients(ctx, ds.Clients) },
		func() error { return ingestor.IngestManualInputs(ctx, ds.ManualInputs) },
		func() error { return ingestor.IngestCalculatedData(ctx, ds.Calculated) },
		func() error { return ingestor.IngestBehavioralData(ctx, ds.Behavior) },
		func() error { return ingestor.IngestTrendPoints(ctx, ds.Trends) },
		func() error { return ingestor.IngestRiskIndicators(ctx, ds.RiskIndicators) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if got := client.Count(repository.CollectionClients); got != len(ds.Clients) {
		t.Fatalf("expected %d stored clients, got %d", len(ds.Clients), got)
	}
	if got := client.Count(repository.CollectionTrends); got != len(ds.Trends) {
		t.Fatalf("expected %d stored trend points, got %d", len(ds.Trends), got)
	}
}
