package validation

import (
	"github.com/shopspring/decimal"

	"tourreg/internal/domain/registry"
)

var hundred = decimal.NewFromInt(100)

// CompletenessScorer scores field presence across all tiers, each field weighted equally.
type CompletenessScorer struct {
	fields []Field
}

// NewCompletenessScorer uses the TrackedFields table.
func NewCompletenessScorer() *CompletenessScorer {
	return &CompletenessScorer{fields: TrackedFields}
}

// Score returns round(100 * filled / total) in [0, 100].
func (s *CompletenessScorer) Score(r *registry.Record) int {
	if r == nil || len(s.fields) == 0 {
		return 0
	}
	filled := 0
	for _, f := range s.fields {
		if f.Filled(r) {
			filled++
		}
	}
	score := decimal.NewFromInt(int64(filled)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(len(s.fields)))).
		Round(0)
	return int(score.IntPart())
}

// Missing lists the tracked fields that are not filled, grouped by tier order.
func (s *CompletenessScorer) Missing(r *registry.Record) []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, f := range s.fields {
		if !f.Filled(r) {
			out = append(out, f.Name)
		}
	}
	return out
}
