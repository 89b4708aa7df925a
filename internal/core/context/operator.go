// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// OperatorContext identifies who submitted a registry change.
// Authentication happens upstream; the registry only records the identity it is given.
type OperatorContext struct {
	OperatorID string
	Source     string // "api", "worker", ...
}

type operatorContextKey struct{}

// WithOperator adds OperatorContext to context.
func WithOperator(ctx context.Context, op *OperatorContext) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns OperatorContext from context.
func GetOperator(ctx context.Context) *OperatorContext {
	if v, ok := ctx.Value(operatorContextKey{}).(*OperatorContext); ok {
		return v
	}
	return nil
}

// GetOperatorID returns the operator id or empty string.
func GetOperatorID(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.OperatorID
	}
	return ""
}
