package domain

import "context"

// Operator is the direction of a karma expression.
type Operator int

const (
	OperatorIncrement Operator = iota + 1
	OperatorDecrement
)

// Delta returns the score change for the operator (+1 or -1).
func (o Operator) Delta() int64 {
	if o == OperatorDecrement {
		return -1
	}
	return 1
}

func (o Operator) String() string {
	if o == OperatorDecrement {
		return "decrement"
	}
	return "increment"
}

// Expression is a parsed karma expression: a target token plus an operator.
// It is transient and never persisted.
type Expression struct {
	Target   string
	Operator Operator
}

// Target is a tracked entity and its current score. Targets are created
// implicitly on first increment or decrement; the score is unbounded and
// may be negative.
type Target struct {
	Key   string
	Score int64
}

// Outcome classifies the result of processing one chat message.
type Outcome string

const (
	// OutcomeNoMatch means the message contains no karma expression.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeSelfTarget means the actor tried to change their own karma.
	OutcomeSelfTarget Outcome = "self_target"
	// OutcomeSuppressed means the actor already changed this target's karma
	// within the dedup window. Score carries the value cached at that time.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeApplied means the counter was updated. Score carries the new value.
	OutcomeApplied Outcome = "applied"
)

// Result is the structured outcome of processing one message. Rendering it
// into user-facing text is the responsibility of the i18n collaborator.
type Result struct {
	Outcome  Outcome
	Target   string
	Operator Operator
	Score    int64
	// StoreDegraded is set when a storage failure was absorbed during
	// processing and the score may be stale or lost.
	StoreDegraded bool
}

// CounterStore is the persistence port for karma counters.
//
// GetScore returns ErrScoreNotFound for a key that has never been stored;
// callers decide whether that maps to a zero score. Upsert creates the row
// if absent and overwrites otherwise (last writer wins; the engine's dedup
// cache is the only concurrency control). ListByPrefix returns targets
// whose key starts with prefix, ascending by key.
type CounterStore interface {
	GetScore(ctx context.Context, key string) (int64, error)
	Upsert(ctx context.Context, key string, score int64) error
	ListByPrefix(ctx context.Context, prefix string) ([]Target, error)
}

// DedupStore is the suppression port consulted before every counter update.
// Keys are composite "target:actor" strings; the stored value is the score
// at the time suppression began. An entry is visible for exactly the
// configured TTL after insertion.
type DedupStore interface {
	GetIfPresent(ctx context.Context, key string) (int64, bool, error)
	Put(ctx context.Context, key string, value int64) error
}

// DedupKey builds the composite suppression key for an (actor, target) pair.
func DedupKey(target, actor string) string {
	return target + ":" + actor
}
