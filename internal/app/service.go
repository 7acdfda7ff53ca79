// Package app is the application layer: the only component that references
// multiple domain components. It glues the karma engine, the reply renderer,
// and the pipeline metrics together behind the boundary the transport
// adapters call.
package app

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/lasombra/rebot/internal/adapter/metrics"
	"github.com/lasombra/rebot/internal/domain"
	"github.com/lasombra/rebot/internal/i18n"
	"github.com/lasombra/rebot/internal/karma"
)

// Service orchestrates the message-processing use cases.
type Service struct {
	engine   *karma.Engine
	renderer *i18n.Renderer
	metrics  *metrics.KarmaMetrics
	clock    clockwork.Clock
}

func NewService(engine *karma.Engine, renderer *i18n.Renderer, m *metrics.KarmaMetrics, clock clockwork.Clock) *Service {
	return &Service{
		engine:   engine,
		renderer: renderer,
		metrics:  m,
		clock:    clock,
	}
}

// ProcessMessage runs one chat message through the karma pipeline and
// returns both the structured result and the localized reply. The reply is
// empty when the bot has nothing to say. This method never returns an
// error: storage failures degrade inside the engine.
func (s *Service) ProcessMessage(ctx context.Context, actor, messageText, locale string) (domain.Result, string) {
	start := s.clock.Now()
	result := s.engine.Process(ctx, actor, messageText)

	s.metrics.Processed.WithLabelValues(string(result.Outcome)).Inc()
	s.metrics.ProcessingDuration.Observe(s.clock.Since(start).Seconds())
	if result.StoreDegraded {
		s.metrics.DegradedResults.Inc()
	}

	return result, s.renderer.Render(result, locale)
}

// Score returns the current karma of a single target key.
func (s *Service) Score(ctx context.Context, key string) (int64, error) {
	return s.engine.Score(ctx, key)
}

// Leaderboard lists targets by key prefix, ascending by key.
func (s *Service) Leaderboard(ctx context.Context, prefix string) ([]domain.Target, error) {
	return s.engine.Leaderboard(ctx, prefix)
}
