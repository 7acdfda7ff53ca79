package karma

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lasombra/rebot/internal/domain"
)

// InMemoryStore is a CounterStore for single-instance deployments without a
// database, and for tests. Scores are lost on restart.
type InMemoryStore struct {
	mu     sync.RWMutex
	scores map[string]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{scores: make(map[string]int64)}
}

var _ domain.CounterStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) GetScore(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.scores[key]
	if !ok {
		return 0, domain.ErrScoreNotFound
	}
	return score, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, key string, score int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[key] = score
	return nil
}

func (s *InMemoryStore) ListByPrefix(_ context.Context, prefix string) ([]domain.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var targets []domain.Target
	for key, score := range s.scores {
		if strings.HasPrefix(key, prefix) {
			targets = append(targets, domain.Target{Key: key, Score: score})
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Key < targets[j].Key })
	return targets, nil
}
