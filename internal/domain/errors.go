package domain

import "errors"

// ErrScoreNotFound is returned by CounterStore.GetScore when the key has
// never been stored. It is an expected condition, distinct from an I/O
// failure: callers map it to a zero score.
var ErrScoreNotFound = errors.New("karma score not found")
