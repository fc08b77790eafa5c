// Package aggregation merges the independently updated per-client record sets
// into default-filled read models.
package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshika/clientdesk/internal/domain"
	"github.com/vanshika/clientdesk/internal/metrics"
	"github.com/vanshika/clientdesk/internal/store"
)

// Repository is the read contract the engine needs from storage.
type Repository interface {
	GetClient(ctx context.Context, clientID string) (domain.Client, error)
	GetManualInputs(ctx context.Context, clientID string) (domain.ManualFinancialInput, error)
	GetCalculatedData(ctx context.Context, clientID string) (domain.CalculatedFinancialData, error)
	GetBehavioralData(ctx context.Context, clientID string) (domain.BehavioralData, error)
	ListTrendPoints(ctx context.Context, clientID string) ([]domain.MonthlyTrendPoint, error)
	ListRiskIndicators(ctx context.Context, clientID string) ([]domain.RiskIndicator, error)
}

// Observer receives aggregation outcomes, typically Prometheus collectors.
type Observer interface {
	ObserveAggregation(outcome string, elapsed time.Duration)
	ObserveSourceFailure(source string)
}

// Aggregation outcomes reported to the Observer.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type nopObserver struct{}

func (nopObserver) ObserveAggregation(string, time.Duration) {}
func (nopObserver) ObserveSourceFailure(string)              {}

// Engine aggregates client data. It holds no mutable state after
// construction and is safe for concurrent use.
//
// No timeout is applied internally: a stuck fetch stalls Aggregate until the
// caller's context is done or the store call returns.
type Engine struct {
	repo     Repository
	logger   *slog.Logger
	nowFn    func() time.Time
	tracer   trace.Tracer
	observer Observer
}

// NewEngine constructs an Engine with a wall clock and no-op observer.
func NewEngine(repo Repository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		repo:     repo,
		logger:   logger.With("component", "aggregation"),
		nowFn:    time.Now,
		tracer:   otel.Tracer("github.com/vanshika/clientdesk/internal/aggregation"),
		observer: nopObserver{},
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (e *Engine) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		e.nowFn = nowFn
	}
}

// WithObserver attaches an outcome observer.
func (e *Engine) WithObserver(o Observer) {
	if o != nil {
		e.observer = o
	}
}

// Aggregate resolves the client and its optional sources and builds the view
// model. A missing client fails with an error matching ErrClientNotFound and
// no optional source is fetched. Optional source failures never surface.
func (e *Engine) Aggregate(ctx context.Context, clientID string) (ViewModel, error) {
	started := time.Now()
	ctx, span := e.tracer.Start(ctx, "aggregation.Aggregate",
		trace.WithAttributes(attribute.String("client.id", clientID)))
	defer span.End()

	set, err := e.Load(ctx, clientID)
	if err != nil {
		outcome := OutcomeError
		if store.IsNotFound(err) {
			outcome = OutcomeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.observer.ObserveAggregation(outcome, time.Since(started))
		return ViewModel{}, err
	}

	vm := Build(set, e.nowFn())
	e.observer.ObserveAggregation(OutcomeOK, time.Since(started))
	return vm, nil
}

// Dashboard returns only the dashboard read model.
func (e *Engine) Dashboard(ctx context.Context, clientID string) (DashboardMetrics, error) {
	vm, err := e.Aggregate(ctx, clientID)
	if err != nil {
		return DashboardMetrics{}, err
	}
	return vm.Dashboard, nil
}

// FinancialSummary returns only the financial summary read model.
func (e *Engine) FinancialSummary(ctx context.Context, clientID string) (FinancialSummaryMetrics, error) {
	vm, err := e.Aggregate(ctx, clientID)
	if err != nil {
		return FinancialSummaryMetrics{}, err
	}
	return vm.FinancialSummary, nil
}

// Trends returns the client's monthly series, synthetic when nothing is stored.
func (e *Engine) Trends(ctx context.Context, clientID string) (TrendSeries, error) {
	vm, err := e.Aggregate(ctx, clientID)
	if err != nil {
		return TrendSeries{}, err
	}
	return vm.Trends, nil
}

// GetTrendDataForType returns one series ordered ascending by month.
func (e *Engine) GetTrendDataForType(ctx context.Context, clientID, series string) ([]TrendValue, error) {
	if !validSeries(series) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, series)
	}
	trends, err := e.Trends(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return SeriesValues(trends.Points, series), nil
}

// RiskIndicators returns the client's indicators with derived severity.
func (e *Engine) RiskIndicators(ctx context.Context, clientID string) ([]RiskIndicatorView, error) {
	if _, err := e.resolveClient(ctx, clientID); err != nil {
		return nil, err
	}
	indicators, err := e.repo.ListRiskIndicators(ctx, clientID)
	if err != nil && !store.IsNotFound(err) {
		return nil, fmt.Errorf("risk indicators %s: %w", clientID, err)
	}
	out := make([]RiskIndicatorView, 0, len(indicators))
	for _, ind := range indicators {
		out = append(out, RiskIndicatorView{
			Indicator:   ind.Indicator,
			Value:       ind.Value,
			Severity:    metrics.RiskSeverity(ind.Value),
			Description: ind.Description,
		})
	}
	return out, nil
}

// Load resolves the client and fans out to the four optional sources
// concurrently. A failing source never cancels its siblings.
func (e *Engine) Load(ctx context.Context, clientID string) (ClientRecordSet, error) {
	client, err := e.resolveClient(ctx, clientID)
	if err != nil {
		return ClientRecordSet{}, err
	}

	var (
		wg          sync.WaitGroup
		manual      domain.ManualFinancialInput
		manualErr   error
		calculated  domain.CalculatedFinancialData
		calcErr     error
		behavior    domain.BehavioralData
		behaviorErr error
		trends      []domain.MonthlyTrendPoint
		trendsErr   error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		manualErr = e.fetch(ctx, SourceManualInputs, func(ctx context.Context) (err error) {
			manual, err = e.repo.GetManualInputs(ctx, clientID)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		calcErr = e.fetch(ctx, SourceCalculated, func(ctx context.Context) (err error) {
			calculated, err = e.repo.GetCalculatedData(ctx, clientID)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		behaviorErr = e.fetch(ctx, SourceBehavior, func(ctx context.Context) (err error) {
			behavior, err = e.repo.GetBehavioralData(ctx, clientID)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		trendsErr = e.fetch(ctx, SourceTrends, func(ctx context.Context) (err error) {
			trends, err = e.repo.ListTrendPoints(ctx, clientID)
			return err
		})
	}()
	wg.Wait()

	set := ClientRecordSet{
		Client:       client,
		ManualInputs: defaultManualInputs(clientID),
		Calculated:   defaultCalculated(clientID),
		Behavior:     defaultBehavior(clientID),
		Trends:       []domain.MonthlyTrendPoint{},
		Sources:      make(map[string]SourceStatus, 4),
	}

	set.Sources[SourceManualInputs] = e.resolve(clientID, SourceManualInputs, manualErr)
	if set.Sources[SourceManualInputs] == SourceLoaded {
		set.ManualInputs = manual
	}
	set.Sources[SourceCalculated] = e.resolve(clientID, SourceCalculated, calcErr)
	if set.Sources[SourceCalculated] == SourceLoaded {
		set.Calculated = calculated
		set.HasCalculated = true
	}
	set.Sources[SourceBehavior] = e.resolve(clientID, SourceBehavior, behaviorErr)
	if set.Sources[SourceBehavior] == SourceLoaded {
		set.Behavior = behavior
	}
	set.Sources[SourceTrends] = e.resolve(clientID, SourceTrends, trendsErr)
	if set.Sources[SourceTrends] == SourceLoaded {
		if len(trends) == 0 {
			set.Sources[SourceTrends] = SourceMissing
		} else {
			set.Trends = trends
		}
	}

	hydrate(&set)
	return set, nil
}

func (e *Engine) resolveClient(ctx context.Context, clientID string) (domain.Client, error) {
	client, err := e.repo.GetClient(ctx, clientID)
	if err != nil {
		if store.IsNotFound(err) {
			return domain.Client{}, fmt.Errorf("aggregate %s: %w", clientID, ErrClientNotFound)
		}
		return domain.Client{}, fmt.Errorf("aggregate %s: resolve client: %w", clientID, err)
	}
	return client, nil
}

func (e *Engine) fetch(ctx context.Context, source string, fn func(context.Context) error) error {
	ctx, span := e.tracer.Start(ctx, "aggregation.fetch",
		trace.WithAttributes(attribute.String("source", source)))
	defer span.End()

	err := fn(ctx)
	if err != nil && !store.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (e *Engine) resolve(clientID, source string, err error) SourceStatus {
	switch {
	case err == nil:
		return SourceLoaded
	case store.IsNotFound(err):
		return SourceMissing
	default:
		unavailable := &SourceUnavailableError{Source: source, Err: err}
		e.logger.Warn("optional source unavailable, using defaults",
			"clientId", clientID,
			"source", source,
			"error", unavailable,
		)
		e.observer.ObserveSourceFailure(source)
		return SourceUnavailable
	}
}

func validSeries(series string) bool {
	for _, s := range domain.TrendSeriesTypes {
		if s == series {
			return true
		}
	}
	return false
}
