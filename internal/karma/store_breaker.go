package karma

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/lasombra/rebot/internal/domain"
)

// ErrStoreUnavailable is returned by BreakerStore when the circuit is open
// and calls are failing fast instead of hitting a struggling backend.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// BreakerStore decorates a CounterStore with a circuit breaker so that a
// storage outage fails fast rather than stalling every message on I/O
// timeouts. The engine already degrades gracefully on store errors; the
// breaker just shortens the failure path.
//
// Settings: 60% failure rate over min 5 requests in a 10s window trips the
// breaker, 30s delay before half-open, one success to close again.
type BreakerStore struct {
	inner  domain.CounterStore
	cb     circuitbreaker.CircuitBreaker[any]
	logger *slog.Logger
}

// NewBreakerStore wraps inner with a circuit breaker. onStateChange may be
// nil; it is invoked with the old and new state names on every transition
// (used to feed metrics).
func NewBreakerStore(inner domain.CounterStore, logger *slog.Logger, onStateChange func(from, to string)) *BreakerStore {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			logger.Warn("Counter store circuit breaker state changed",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if onStateChange != nil {
				onStateChange(e.OldState.String(), e.NewState.String())
			}
		}).
		Build()

	return &BreakerStore{inner: inner, cb: cb, logger: logger}
}

var _ domain.CounterStore = (*BreakerStore)(nil)

func (s *BreakerStore) GetScore(ctx context.Context, key string) (int64, error) {
	if !s.cb.TryAcquirePermit() {
		return 0, fmt.Errorf("get score: %w", ErrStoreUnavailable)
	}
	score, err := s.inner.GetScore(ctx, key)
	s.record(err)
	return score, err
}

func (s *BreakerStore) Upsert(ctx context.Context, key string, score int64) error {
	if !s.cb.TryAcquirePermit() {
		return fmt.Errorf("upsert score: %w", ErrStoreUnavailable)
	}
	err := s.inner.Upsert(ctx, key, score)
	s.record(err)
	return err
}

func (s *BreakerStore) ListByPrefix(ctx context.Context, prefix string) ([]domain.Target, error) {
	if !s.cb.TryAcquirePermit() {
		return nil, fmt.Errorf("list by prefix: %w", ErrStoreUnavailable)
	}
	targets, err := s.inner.ListByPrefix(ctx, prefix)
	s.record(err)
	return targets, err
}

// State exposes the breaker state for tests and monitoring.
func (s *BreakerStore) State() circuitbreaker.State {
	return s.cb.State()
}

// record feeds the breaker. A missing score is an expected condition, not a
// backend failure.
func (s *BreakerStore) record(err error) {
	if err != nil && !errors.Is(err, domain.ErrScoreNotFound) {
		s.cb.RecordError(err)
		return
	}
	s.cb.RecordSuccess()
}
