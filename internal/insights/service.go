package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanshika/clientdesk/internal/aggregation"
	"github.com/vanshika/clientdesk/internal/domain"
)

// ErrDisabled is returned by Narrate when no generator is configured.
var ErrDisabled = errors.New("insight generation is not configured")

// Aggregator is the read side Narrate builds prompts from.
type Aggregator interface {
	Aggregate(ctx context.Context, clientID string) (aggregation.ViewModel, error)
}

// Store persists and retrieves narratives.
type Store interface {
	InsertInsight(ctx context.Context, in domain.Insight) (domain.Insight, error)
	LatestInsight(ctx context.Context, clientID string) (domain.Insight, error)
}

// Service generates and stores client narratives.
type Service struct {
	agg    Aggregator
	store  Store
	gen    Generator
	model  string
	logger *slog.Logger
	nowFn  func() time.Time
}

// NewService wires the insight service. gen may be nil, in which case Narrate
// fails with ErrDisabled and Latest still serves stored narratives.
func NewService(agg Aggregator, store Store, gen Generator, model string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		agg:    agg,
		store:  store,
		gen:    gen,
		model:  model,
		logger: logger.With("component", "insights"),
		nowFn:  time.Now,
	}
}

// WithClock overrides the time provider.
func (s *Service) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Narrate aggregates the client, generates a narrative and stores it.
func (s *Service) Narrate(ctx context.Context, clientID string) (domain.Insight, error) {
	if s.gen == nil {
		return domain.Insight{}, ErrDisabled
	}
	vm, err := s.agg.Aggregate(ctx, clientID)
	if err != nil {
		return domain.Insight{}, err
	}

	started := s.nowFn()
	text, err := s.gen.Generate(ctx, BuildPrompt(vm))
	if err != nil {
		s.logger.Error("narrative generation failed", "clientId", clientID, "error", err)
		return domain.Insight{}, fmt.Errorf("generate narrative %s: %w", clientID, err)
	}

	insight, err := s.store.InsertInsight(ctx, domain.Insight{
		ClientID:    clientID,
		Narrative:   text,
		Model:       s.model,
		GeneratedAt: s.nowFn().UTC(),
	})
	if err != nil {
		return domain.Insight{}, err
	}
	s.logger.Info("narrative generated", "clientId", clientID, "model", s.model, "duration", s.nowFn().Sub(started))
	return insight, nil
}

// Latest returns the most recent stored narrative for the client.
func (s *Service) Latest(ctx context.Context, clientID string) (domain.Insight, error) {
	return s.store.LatestInsight(ctx, clientID)
}
