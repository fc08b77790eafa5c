package service

import (
	"context"
	"errors"
	"sync"

	"github.com/vanshika/clientdesk/internal/domain"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor loads client datasets through the ClientService using a
// fixed-size worker pool. Clients must be ingested before their records.
type BulkIngestor struct {
	service *ClientService
	workers int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(service *ClientService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// IngestClients upserts the provided clients concurrently.
func (bi *BulkIngestor) IngestClients(ctx context.Context, clients []ClientInput) error {
	return bi.run(ctx, len(clients), func(idx int) error {
		return bi.service.UpsertClient(ctx, clients[idx])
	})
}

// IngestManualInputs stores manual financial inputs concurrently.
func (bi *BulkIngestor) IngestManualInputs(ctx context.Context, inputs []domain.ManualFinancialInput) error {
	return bi.run(ctx, len(inputs), func(idx int) error {
		return bi.service.SaveManualInputs(ctx, inputs[idx])
	})
}

// IngestCalculatedData stores calculated financial data concurrently.
func (bi *BulkIngestor) IngestCalculatedData(ctx context.Context, data []domain.CalculatedFinancialData) error {
	return bi.run(ctx, len(data), func(idx int) error {
		return bi.service.SaveCalculatedData(ctx, data[idx])
	})
}

// IngestBehavioralData stores behaviour summaries concurrently.
func (bi *BulkIngestor) IngestBehavioralData(ctx context.Context, data []domain.BehavioralData) error {
	return bi.run(ctx, len(data), func(idx int) error {
		return bi.service.SaveBehavioralData(ctx, data[idx])
	})
}

// IngestTrendPoints upserts monthly trend points concurrently.
func (bi *BulkIngestor) IngestTrendPoints(ctx context.Context, points []domain.MonthlyTrendPoint) error {
	return bi.run(ctx, len(points), func(idx int) error {
		return bi.service.RecordTrendPoint(ctx, points[idx])
	})
}

// IngestRiskIndicators inserts risk readings concurrently.
func (bi *BulkIngestor) IngestRiskIndicators(ctx context.Context, indicators []domain.RiskIndicator) error {
	return bi.run(ctx, len(indicators), func(idx int) error {
		_, err := bi.service.RecordRiskIndicator(ctx, indicators[idx])
		return err
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

	cancelled := false
Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			cancelled = true
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if cancelled {
		return ctx.Err()
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
