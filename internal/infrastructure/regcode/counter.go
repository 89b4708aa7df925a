// Package regcode provides the PostgreSQL counter behind the counter allocation strategy.
package regcode

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tourreg/internal/core/apperror"
	domainregcode "tourreg/internal/domain/regcode"
)

// Querier is the database access the counter needs. *pgxpool.Pool satisfies it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ domainregcode.Counter = (*Counter)(nil)

// Counter increments registry_code_counters with a single UPSERT ... RETURNING.
// A missing row is seeded from the highest reserved sequence, so switching
// strategies on a populated registry does not replay taken codes.
//
// Counter calls run outside of business transactions, like all allocation writes.
type Counter struct {
	querier Querier
}

// New creates a counter over querier.
func New(querier Querier) *Counter {
	return &Counter{querier: querier}
}

const nextSQL = `
	INSERT INTO registry_code_counters (region, category_code, current_val)
	VALUES ($1, $2, (
		SELECT COALESCE(MAX(sequence), 0) + 1
		FROM registry_code_reservations
		WHERE region = $1 AND category_code = $2
	))
	ON CONFLICT (region, category_code)
	DO UPDATE SET current_val = registry_code_counters.current_val + 1
	RETURNING current_val
`

// Next returns the incremented counter for the pair.
func (c *Counter) Next(ctx context.Context, region, categoryCode string) (int, error) {
	if c == nil || c.querier == nil {
		return 0, apperror.NewInternal(fmt.Errorf("registry code counter is not initialized"))
	}
	var next int
	if err := c.querier.QueryRow(ctx, nextSQL, region, categoryCode).Scan(&next); err != nil {
		return 0, apperror.NewExternalService("regcode.counter_next", err).
			WithDetail("scope", domainregcode.ScopeOf(region, categoryCode))
	}
	return next, nil
}
