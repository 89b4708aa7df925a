package regcode

import (
	"context"
	"fmt"
	"strings"

	"tourreg/internal/core/apperror"
	"tourreg/pkg/logger"
)

// Strategy defines how the next sequence number is obtained.
type Strategy int

const (
	// StrategyOptimistic reads the current max and reserves max+1.
	// A uniqueness violation on the reservation triggers a retry.
	StrategyOptimistic Strategy = iota

	// StrategyCounter increments a database-side counter keyed by (region, category).
	// The counter value is still reserved, so codes stay unique even if the counter drifts.
	StrategyCounter
)

// DefaultAttempts bounds the retry loop of a single allocation.
const DefaultAttempts = 5

// ParseStrategy converts a config value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "optimistic":
		return StrategyOptimistic, nil
	case "counter":
		return StrategyCounter, nil
	default:
		return 0, fmt.Errorf("unknown allocation strategy %q", s)
	}
}

func (s Strategy) String() string {
	if s == StrategyCounter {
		return "counter"
	}
	return "optimistic"
}

// Store is the persistence required by the allocator.
type Store interface {
	// FindMaxSequence returns the highest reserved sequence for the pair, 0 if none.
	FindMaxSequence(ctx context.Context, region, categoryCode string) (int, error)

	// ReserveCode records the code. Returns CODE_TAKEN if it is already reserved.
	ReserveCode(ctx context.Context, code Code) error
}

// Counter is an atomic per-(region, category) sequence.
type Counter interface {
	// Next increments and returns the counter for the pair.
	Next(ctx context.Context, region, categoryCode string) (int, error)
}

// Observer receives allocation outcomes. Implemented by the metrics package.
type Observer interface {
	AllocationRetry(strategy string)
	AllocationDone(strategy, outcome string)
}

// Options configures an Allocator.
type Options struct {
	Strategy Strategy
	// Attempts is the maximum number of reservations tried per call (default 5).
	Attempts int
}

// Allocator mints registry codes. Safe for concurrent use.
// Callers must invoke it outside of database transactions: a failed
// reservation aborts the surrounding Postgres transaction.
type Allocator struct {
	store    Store
	counter  Counter
	opts     Options
	observer Observer
}

// NewAllocator creates an allocator. counter is required for StrategyCounter only;
// observer may be nil.
func NewAllocator(store Store, counter Counter, opts Options, observer Observer) (*Allocator, error) {
	if store == nil {
		return nil, fmt.Errorf("regcode: store is required")
	}
	if opts.Strategy == StrategyCounter && counter == nil {
		return nil, fmt.Errorf("regcode: counter strategy requires a counter")
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	return &Allocator{store: store, counter: counter, opts: opts, observer: observer}, nil
}

// Allocate reserves the next code for a region and category id.
func (a *Allocator) Allocate(ctx context.Context, region, categoryID string) (Code, error) {
	reg, err := NormalizeRegion(region)
	if err != nil {
		return Code{}, apperror.NewValidation("cannot allocate registry code: invalid region").
			WithDetail("region", region).
			WithCause(err)
	}
	cat := CategoryCode(categoryID)
	scope := ScopeOf(reg, cat)
	strategy := a.opts.Strategy.String()

	for attempt := 1; attempt <= a.opts.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			a.done(strategy, "canceled")
			return Code{}, err
		}

		seq, err := a.nextSequence(ctx, reg, cat)
		if err != nil {
			a.done(strategy, "error")
			return Code{}, wrapStoreError("regcode.next_sequence", err)
		}

		code := Code{Region: reg, Category: cat, Sequence: seq}
		err = a.store.ReserveCode(ctx, code)
		if err == nil {
			logger.Info(ctx, "registry code allocated",
				"code", code.String(), "attempt", attempt, "strategy", strategy)
			a.done(strategy, "allocated")
			return code, nil
		}
		if !apperror.IsCodeTaken(err) {
			a.done(strategy, "error")
			return Code{}, wrapStoreError("regcode.reserve", err)
		}

		logger.Warn(ctx, "registry code taken, retrying",
			"code", code.String(), "attempt", attempt, "max_attempts", a.opts.Attempts)
		if a.observer != nil {
			a.observer.AllocationRetry(strategy)
		}
	}

	a.done(strategy, "conflict")
	return Code{}, apperror.NewAllocationConflict(scope, a.opts.Attempts)
}

func (a *Allocator) nextSequence(ctx context.Context, region, cat string) (int, error) {
	if a.opts.Strategy == StrategyCounter {
		return a.counter.Next(ctx, region, cat)
	}
	highest, err := a.store.FindMaxSequence(ctx, region, cat)
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

func (a *Allocator) done(strategy, outcome string) {
	if a.observer != nil {
		a.observer.AllocationDone(strategy, outcome)
	}
}

// wrapStoreError keeps AppErrors intact and marks anything else as a store failure.
func wrapStoreError(op string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewExternalService(op, err)
}
