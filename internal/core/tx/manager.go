// Package tx provides transaction management abstractions.
// Domain services depend on Manager, not on a concrete database.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// If fn returns an error, the transaction is rolled back.
// Nested calls reuse the existing transaction from context.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopManager runs fn directly. Used with storage drivers that have no transactions.
type NoopManager struct{}

// RunInTransaction implements Manager.
func (NoopManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ Manager = NoopManager{}
