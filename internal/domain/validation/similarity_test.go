package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Rural Rd 10", "Rural Rd 10", 1},
		{"case and padding", "  Blue Lagoon Cave", "blue lagoon cave ", 1},
		{"both empty", "", "", 1},
		{"one empty", "Cave", "", 0},
		{"one letter added", "Blue Lagoon Cave", "Blue Lagoon Caves", 16.0 / 17.0},
		{"classic", "kitten", "sitting", 4.0 / 7.0},
		{"multibyte", "São João", "Sao Joao", 6.0 / 8.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Range(t *testing.T) {
	for _, pair := range [][2]string{{"a", "zzzz"}, {"hotel", "motel"}, {"x", "x"}} {
		s := Similarity(pair[0], pair[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.InDelta(t, s, Similarity(pair[1], pair[0]), 1e-9)
	}
}
