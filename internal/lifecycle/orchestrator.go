// Package lifecycle deletes a client and every dependent record set. The
// store offers no multi-collection transactions, so deletion is a sequential
// best-effort run that reports per-collection outcomes.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshika/clientdesk/internal/store"
)

// Policy decides whether the client record is deleted after dependent
// deletes have failed.
type Policy string

const (
	// PolicyDeleteAlways attempts the client delete regardless of earlier errors.
	PolicyDeleteAlways Policy = "always"
	// PolicyDeleteIfClean keeps the client record when any dependent delete failed.
	PolicyDeleteIfClean Policy = "if-clean"
)

// ParsePolicy maps a configuration string onto a Policy.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyDeleteAlways:
		return PolicyDeleteAlways, nil
	case PolicyDeleteIfClean:
		return PolicyDeleteIfClean, nil
	default:
		return "", fmt.Errorf("unknown client delete policy %q", raw)
	}
}

// Deleter is the store capability the orchestrator needs.
type Deleter interface {
	DeleteMany(ctx context.Context, collection string, filter store.Filter) (int64, error)
}

// ReportSink receives every finished report, e.g. for a manual cleanup queue.
type ReportSink interface {
	Store(ctx context.Context, report Report) error
}

// Observer receives deletion outcomes.
type Observer interface {
	ObserveDeletion(success bool, elapsed time.Duration)
	ObserveCollectionFailure(collection string)
}

type nopObserver struct{}

func (nopObserver) ObserveDeletion(bool, time.Duration) {}
func (nopObserver) ObserveCollectionFailure(string)     {}

// Orchestrator runs complete client deletions.
type Orchestrator struct {
	store       Deleter
	logger      *slog.Logger
	policy      Policy
	collections []string
	sink        ReportSink
	nowFn       func() time.Time
	tracer      trace.Tracer
	observer    Observer
}

// NewOrchestrator constructs an Orchestrator using PolicyDeleteAlways and the
// compiled-in DependentCollections.
func NewOrchestrator(deleter Deleter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:       deleter,
		logger:      logger.With("component", "lifecycle"),
		policy:      PolicyDeleteAlways,
		collections: append([]string(nil), DependentCollections...),
		nowFn:       time.Now,
		tracer:      otel.Tracer("github.com/vanshika/clientdesk/internal/lifecycle"),
		observer:    nopObserver{},
	}
}

// WithPolicy sets the client delete policy.
func (o *Orchestrator) WithPolicy(p Policy) {
	if p != "" {
		o.policy = p
	}
}

// WithSink attaches a sink that receives every report.
func (o *Orchestrator) WithSink(sink ReportSink) {
	o.sink = sink
}

// WithClock overrides the time provider (used primarily in tests).
func (o *Orchestrator) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		o.nowFn = nowFn
	}
}

// WithObserver attaches an outcome observer.
func (o *Orchestrator) WithObserver(obs Observer) {
	if obs != nil {
		o.observer = obs
	}
}

// DeleteClientCompletely deletes every dependent record of clientID in order,
// then the client record according to the policy. Collection failures are
// recorded and the run continues. The run ignores cancellation of ctx once
// started.
//
// A client id that never existed is indistinguishable from a client without
// data; ClientRecordRemoved tells the two apart after the fact.
func (o *Orchestrator) DeleteClientCompletely(ctx context.Context, clientID string) Report {
	ctx = context.WithoutCancel(ctx)
	started := time.Now()
	ctx, span := o.tracer.Start(ctx, "lifecycle.DeleteClientCompletely",
		trace.WithAttributes(attribute.String("client.id", clientID)))
	defer span.End()

	report := Report{
		ClientID:           clientID,
		DeletedCollections: []string{},
		Errors:             []CollectionError{},
		Policy:             o.policy,
		StartedAt:          o.nowFn(),
	}

	if strings.TrimSpace(clientID) == "" {
		report.Errors = append(report.Errors, CollectionError{
			Collection: ClientCollection,
			Message:    "client id is required",
		})
		return o.finish(ctx, span, report, started)
	}

	logger := o.logger.With("clientId", clientID)
	logger.Info("client deletion started", "collections", len(o.collections), "policy", string(o.policy))

	for _, collection := range o.collections {
		n, err := o.store.DeleteMany(ctx, collection, store.Filter{store.FieldClientID: clientID})
		if err != nil {
			o.recordFailure(logger, &report, collection, err)
			continue
		}
		report.DeletedCollections = append(report.DeletedCollections, collection)
		logger.Debug("collection cleared", "collection", collection, "deleted", n)
	}

	if o.policy == PolicyDeleteIfClean && len(report.Errors) > 0 {
		report.ClientDeleteSkipped = true
		logger.Warn("client record kept after failed dependent deletes", "failed", len(report.Errors))
	} else {
		n, err := o.store.DeleteMany(ctx, ClientCollection, store.Filter{store.FieldID: clientID})
		if err != nil {
			o.recordFailure(logger, &report, ClientCollection, err)
		} else {
			report.DeletedCollections = append(report.DeletedCollections, ClientCollection)
			report.ClientRecordRemoved = n > 0
		}
	}

	return o.finish(ctx, span, report, started)
}

func (o *Orchestrator) recordFailure(logger *slog.Logger, report *Report, collection string, err error) {
	failure := &RecoverableCollectionError{Collection: collection, Err: err}
	logger.Error("collection delete failed", "collection", collection, "error", failure)
	report.Errors = append(report.Errors, CollectionError{
		Collection: collection,
		Message:    err.Error(),
	})
	o.observer.ObserveCollectionFailure(collection)
}

func (o *Orchestrator) finish(ctx context.Context, span trace.Span, report Report, started time.Time) Report {
	report.Success = len(report.Errors) == 0 && !report.ClientDeleteSkipped
	report.FinishedAt = o.nowFn()

	span.SetAttributes(
		attribute.Bool("deletion.success", report.Success),
		attribute.Int("deletion.failed_collections", len(report.Errors)),
	)
	if !report.Success {
		span.SetStatus(codes.Error, "partial deletion")
	}
	o.observer.ObserveDeletion(report.Success, time.Since(started))

	o.logger.Info("client deletion finished",
		"clientId", report.ClientID,
		"success", report.Success,
		"deleted", len(report.DeletedCollections),
		"failed", len(report.Errors),
		"clientRecordRemoved", report.ClientRecordRemoved,
	)

	if o.sink != nil {
		if err := o.sink.Store(ctx, report); err != nil {
			o.logger.Error("store deletion report", "clientId", report.ClientID, "error", err)
		}
	}
	return report
}
