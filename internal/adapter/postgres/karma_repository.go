package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lasombra/rebot/internal/domain"
	"github.com/lasombra/rebot/internal/platform/retry"
)

// KarmaRepo persists karma counters. Reads and writes get one quick retry
// for transient failures; anything beyond that is the circuit breaker's
// problem.
type KarmaRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	policy retry.Policy
}

func NewKarmaRepo(pool *pgxpool.Pool, logger *slog.Logger) *KarmaRepo {
	r := &KarmaRepo{
		pool:   pool,
		logger: logger,
	}
	r.policy = retry.Policy{
		MaxAttempts:    2,
		InitialBackoff: 50 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			logger.Warn("Retrying karma store operation", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	return r
}

var _ domain.CounterStore = (*KarmaRepo)(nil)

func retryable(err error) bool {
	return !errors.Is(err, domain.ErrScoreNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (r *KarmaRepo) GetScore(ctx context.Context, key string) (int64, error) {
	return retry.Do(ctx, r.policy, retryable, func() (int64, error) {
		var score int64
		err := r.pool.QueryRow(ctx, `
			SELECT score FROM karma_counters WHERE key = $1
		`, key).Scan(&score)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrScoreNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("failed to get score for %q: %w", key, err)
		}
		return score, nil
	})
}

func (r *KarmaRepo) Upsert(ctx context.Context, key string, score int64) error {
	return retry.DoVoid(ctx, r.policy, retryable, func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO karma_counters (key, score, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (key) DO UPDATE SET
				score = EXCLUDED.score,
				updated_at = NOW()
		`, key, score)
		if err != nil {
			return fmt.Errorf("failed to upsert score for %q: %w", key, err)
		}
		return nil
	})
}

func (r *KarmaRepo) ListByPrefix(ctx context.Context, prefix string) ([]domain.Target, error) {
	return retry.Do(ctx, r.policy, retryable, func() ([]domain.Target, error) {
		rows, err := r.pool.Query(ctx, `
			SELECT key, score FROM karma_counters
			WHERE key LIKE $1 ESCAPE '\'
			ORDER BY key ASC
		`, escapeLikePattern(prefix)+"%")
		if err != nil {
			return nil, fmt.Errorf("failed to list scores by prefix %q: %w", prefix, err)
		}
		defer rows.Close()

		var targets []domain.Target
		for rows.Next() {
			var t domain.Target
			if err := rows.Scan(&t.Key, &t.Score); err != nil {
				return nil, fmt.Errorf("failed to scan score row: %w", err)
			}
			targets = append(targets, t)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read score rows: %w", err)
		}
		return targets, nil
	})
}

// escapeLikePattern neutralizes LIKE metacharacters so a prefix containing
// % or _ matches literally.
func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
