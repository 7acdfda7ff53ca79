package karma

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lasombra/rebot/internal/domain"
)

// RemovalCause explains why a dedup entry left the cache.
type RemovalCause string

const (
	RemovalExpired  RemovalCause = "expired"
	RemovalExplicit RemovalCause = "explicit"
	RemovalSize     RemovalCause = "size"
	RemovalReplaced RemovalCause = "replaced"
)

// RemovalListener observes every entry removal, regardless of cause.
// It is invoked without the cache lock held, so it may call back into the
// cache if it needs to.
type RemovalListener func(key string, value int64, cause RemovalCause)

// DedupCache is the time-windowed suppression store. Each entry is keyed by
// the composite "target:actor" string and holds the score recorded when
// suppression began. Entries are visible for exactly ttl after insertion;
// a ttl of zero makes entries expire immediately, disabling suppression.
//
// Expiry is lazy on access, with a periodic sweep (StartEvictionTimer)
// preventing unbounded growth from keys that are never read again.
type DedupCache struct {
	mu         sync.Mutex
	entries    map[string]dedupEntry
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
	logger     *slog.Logger
	onRemoval  RemovalListener
}

type dedupEntry struct {
	value      int64
	insertedAt time.Time
}

type removal struct {
	key   string
	value int64
	cause RemovalCause
}

// NewDedupCache creates a suppression cache. maxEntries <= 0 means unbounded.
// onRemoval may be nil.
func NewDedupCache(ttl time.Duration, maxEntries int, clock clockwork.Clock, logger *slog.Logger, onRemoval RemovalListener) *DedupCache {
	return &DedupCache{
		entries:    make(map[string]dedupEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		logger:     logger,
		onRemoval:  onRemoval,
	}
}

var _ domain.DedupStore = (*DedupCache)(nil)

// GetIfPresent returns the stored value for key, or absent if the key was
// never inserted or its window has elapsed. An expired entry found here is
// removed and reported to the removal listener.
func (c *DedupCache) GetIfPresent(_ context.Context, key string) (int64, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return 0, false, nil
	}
	if c.expired(entry, c.clock.Now()) {
		delete(c.entries, key)
		c.mu.Unlock()
		c.notify(removal{key, entry.value, RemovalExpired})
		return 0, false, nil
	}
	c.mu.Unlock()
	return entry.value, true, nil
}

// Put inserts or overwrites the entry for key, resetting its expiry window
// to now + ttl. Overwriting a live entry reports a "replaced" removal;
// inserting past the capacity limit evicts the oldest entry with a "size"
// removal.
func (c *DedupCache) Put(_ context.Context, key string, value int64) error {
	var removals []removal

	c.mu.Lock()
	now := c.clock.Now()

	if old, ok := c.entries[key]; ok {
		cause := RemovalReplaced
		if c.expired(old, now) {
			cause = RemovalExpired
		}
		removals = append(removals, removal{key, old.value, cause})
	} else if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if victim, ok := c.oldestLocked(); ok {
			removals = append(removals, removal{victim, c.entries[victim].value, RemovalSize})
			delete(c.entries, victim)
		}
	}

	c.entries[key] = dedupEntry{value: value, insertedAt: now}
	c.mu.Unlock()

	c.notify(removals...)
	return nil
}

// Invalidate removes the entry for key, reporting an "explicit" removal if
// one was present.
func (c *DedupCache) Invalidate(key string) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if ok {
		c.notify(removal{key, entry.value, RemovalExplicit})
	}
}

// Size returns the number of entries currently held, including entries that
// are expired but not yet swept.
func (c *DedupCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictExpired removes every expired entry and returns the count removed.
func (c *DedupCache) EvictExpired() int {
	var removals []removal

	c.mu.Lock()
	now := c.clock.Now()
	for key, entry := range c.entries {
		if c.expired(entry, now) {
			delete(c.entries, key)
			removals = append(removals, removal{key, entry.value, RemovalExpired})
		}
	}
	c.mu.Unlock()

	c.notify(removals...)
	return len(removals)
}

// StartEvictionTimer starts a background sweep at the given interval and
// returns a stop function.
func (c *DedupCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.EvictExpired(); evicted > 0 {
					c.logger.Debug("Evicted expired dedup entries",
						"count", evicted,
						"remaining", c.Size(),
					)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// expired reports whether the entry's window has elapsed at now. With a
// zero ttl an entry is expired the instant it is inserted.
func (c *DedupCache) expired(entry dedupEntry, now time.Time) bool {
	return !now.Before(entry.insertedAt.Add(c.ttl))
}

func (c *DedupCache) oldestLocked() (string, bool) {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.insertedAt
			found = true
		}
	}
	return oldestKey, found
}

func (c *DedupCache) notify(removals ...removal) {
	if c.onRemoval == nil {
		return
	}
	for _, r := range removals {
		c.onRemoval(r.key, r.value, r.cause)
	}
}
