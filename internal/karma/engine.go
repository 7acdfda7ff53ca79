package karma

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lasombra/rebot/internal/domain"
)

// Engine orchestrates the karma pipeline: whole-message match, self-target
// rejection, dedup check, counter read-modify-write, dedup insert.
//
// Storage failures are absorbed: Process never returns an error, because a
// storage outage must not break chat processing. Degraded results are
// logged and flagged on the returned Result.
type Engine struct {
	store  domain.CounterStore
	dedup  domain.DedupStore
	logger *slog.Logger
}

func NewEngine(store domain.CounterStore, dedup domain.DedupStore, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		dedup:  dedup,
		logger: logger,
	}
}

// Process handles one inbound chat message from actorID. Each call is a
// single transaction; there is no state carried between calls beyond the
// dedup cache and the counter store.
func (e *Engine) Process(ctx context.Context, actorID, messageText string) domain.Result {
	// Cheap gate first: most chat messages carry no karma expression at all,
	// so they bail before the stricter whole-message check.
	if !ContainsExpression(messageText) {
		return domain.Result{Outcome: domain.OutcomeNoMatch}
	}

	expr, ok := MatchWholeMessage(messageText)
	if !ok {
		return domain.Result{Outcome: domain.OutcomeNoMatch}
	}

	if expr.Target == actorID {
		return domain.Result{
			Outcome:  domain.OutcomeSelfTarget,
			Target:   expr.Target,
			Operator: expr.Operator,
		}
	}

	key := domain.DedupKey(expr.Target, actorID)

	cached, present, err := e.dedup.GetIfPresent(ctx, key)
	if err != nil {
		// Fail open: a broken dedup store must not block karma updates.
		e.logger.Warn("Dedup lookup failed, proceeding unsuppressed", "key", key, "error", err)
	}
	if present {
		return domain.Result{
			Outcome:  domain.OutcomeSuppressed,
			Target:   expr.Target,
			Operator: expr.Operator,
			Score:    cached,
		}
	}

	degraded := false

	current, err := e.store.GetScore(ctx, expr.Target)
	switch {
	case errors.Is(err, domain.ErrScoreNotFound):
		current = 0
	case err != nil:
		e.logger.Warn("Score read failed, degrading to zero", "target", expr.Target, "error", err)
		current = 0
		degraded = true
	}

	newScore := current + expr.Operator.Delta()

	if err := e.store.Upsert(ctx, expr.Target, newScore); err != nil {
		e.logger.Warn("Score write failed, update dropped", "target", expr.Target, "score", newScore, "error", err)
		degraded = true
	}

	// The dedup entry is recorded even when the write failed, so a storage
	// incident does not turn retries into a counter stampede.
	if err := e.dedup.Put(ctx, key, newScore); err != nil {
		e.logger.Warn("Dedup insert failed", "key", key, "error", err)
	}

	return domain.Result{
		Outcome:       domain.OutcomeApplied,
		Target:        expr.Target,
		Operator:      expr.Operator,
		Score:         newScore,
		StoreDegraded: degraded,
	}
}

// Score returns the current counter for key, mapping a never-stored key to
// zero.
func (e *Engine) Score(ctx context.Context, key string) (int64, error) {
	score, err := e.store.GetScore(ctx, key)
	if errors.Is(err, domain.ErrScoreNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return score, nil
}

// Leaderboard lists targets whose key starts with prefix, ascending by key.
// Unlike Process, storage failures surface to the caller here: listing is a
// query surface, not the chat pipeline.
func (e *Engine) Leaderboard(ctx context.Context, prefix string) ([]domain.Target, error) {
	return e.store.ListByPrefix(ctx, prefix)
}
