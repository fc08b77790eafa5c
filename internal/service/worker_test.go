package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vanshika/clientdesk/internal/domain"
)

func TestBulkIngestorAggregatesErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := newStubRepository()
	repo.createErr = boom
	ingestor := NewBulkIngestor(newTestService(repo), 2)

	err := ingestor.IngestClients(context.Background(), []ClientInput{
		{ID: "900101-14-0001", Name: "A"},
		{ID: "900101-14-0002", Name: "B"},
	})
	if err == nil {
		t.Fatalf("expected aggregated error, got nil")
	}
	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("expected TaskError type, got %T", err)
	}
	if len(taskErr.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(taskErr.Errors))
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected TaskError to unwrap to the cause")
	}
}

func TestBulkIngestorLoadsDataset(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo)
	ingestor := NewBulkIngestor(svc, 3)
	ctx := context.Background()

	var clients []ClientInput
	var points []domain.MonthlyTrendPoint
	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("900101-14-%04d", i)
		clients = append(clients, ClientInput{ID: id, Name: fmt.Sprintf("Client %d", i)})
		points = append(points, domain.MonthlyTrendPoint{ClientID: id, Month: "2024-01", CASA: float64(i)})
	}

	if err := ingestor.IngestClients(ctx, clients); err != nil {
		t.Fatalf("ingest clients: %v", err)
	}
	if err := ingestor.IngestTrendPoints(ctx, points); err != nil {
		t.Fatalf("ingest trends: %v", err)
	}
	if err := ingestor.IngestRiskIndicators(ctx, []domain.RiskIndicator{
		{ClientID: clients[0].ID, Indicator: "liquidity", Value: 40},
	}); err != nil {
		t.Fatalf("ingest indicators: %v", err)
	}
	if len(repo.clients) != 10 || len(repo.trends) != 10 || len(repo.indicators) != 1 {
		t.Fatalf("unexpected counts: clients=%d trends=%d indicators=%d",
			len(repo.clients), len(repo.trends), len(repo.indicators))
	}
}

func TestBulkIngestorRecordsForUnknownClientFail(t *testing.T) {
	ingestor := NewBulkIngestor(newTestService(newStubRepository()), 1)
	err := ingestor.IngestBehavioralData(context.Background(), []domain.BehavioralData{
		{ClientID: testClientID},
	})
	if err == nil {
		t.Fatalf("expected error for records of an unknown client")
	}
}

func TestBulkIngestorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ingestor := NewBulkIngestor(newTestService(newStubRepository()), 1)

	clients := make([]ClientInput, 50)
	for i := range clients {
		clients[i] = ClientInput{ID: fmt.Sprintf("900101-14-%04d", i), Name: "X"}
	}
	err := ingestor.IngestClients(ctx, clients)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBulkIngestorEmptyInput(t *testing.T) {
	ingestor := NewBulkIngestor(newTestService(newStubRepository()), 0)
	if err := ingestor.IngestManualInputs(context.Background(), nil); err != nil {
		t.Fatalf("expected nil for empty input, got %v", err)
	}
}
