package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lasombra/rebot/internal/domain"
)

const dedupKeyPrefix = "rebot:dedup:"

// DedupStore suppresses repeated karma votes across instances by keeping
// recently applied (target, actor) pairs in Redis with a TTL. Expiry is
// handled by Redis itself, so unlike the in-process cache there are no
// eviction notifications to observe.
type DedupStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewDedupStore(client *goredis.Client, ttl time.Duration) *DedupStore {
	return &DedupStore{client: client, ttl: ttl}
}

var _ domain.DedupStore = (*DedupStore)(nil)

// GetIfPresent reports whether the key is still within its dedup window.
func (s *DedupStore) GetIfPresent(ctx context.Context, key string) (int64, bool, error) {
	raw, err := s.client.Get(ctx, dedupKeyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read dedup key %q: %w", key, err)
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt dedup value for %q: %w", key, err)
	}
	return value, true, nil
}

// Put records the key for the dedup window. A zero TTL means votes are
// never suppressed, so the key is not stored at all.
func (s *DedupStore) Put(ctx context.Context, key string, value int64) error {
	if s.ttl <= 0 {
		return nil
	}

	err := s.client.Set(ctx, dedupKeyPrefix+key, value, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to write dedup key %q: %w", key, err)
	}
	return nil
}
