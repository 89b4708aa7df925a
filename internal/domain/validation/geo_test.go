package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 0, DistanceKm(-20.4, -56.4, -20.4, -56.4), 1e-9)
	assert.InDelta(t, 111.195, DistanceKm(0, 0, 0, 1), 0.01)
	assert.InDelta(t, 0.0111, DistanceKm(-20.4, -56.4, -20.4001, -56.4), 0.0001)
	// São Paulo to Rio de Janeiro
	assert.InDelta(t, 360.7, DistanceKm(-23.5505, -46.6333, -22.9068, -43.1729), 0.5)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(-20.4, -56.4, -22.9, -43.2)
	b := DistanceKm(-22.9, -43.2, -20.4, -56.4)
	assert.InDelta(t, a, b, 1e-9)
}

func TestIsValidCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"bounds", 90, -180, true},
		{"other bounds", -90, 180, true},
		{"latitude too high", 90.01, 0, false},
		{"longitude too low", 0, -180.5, false},
		{"nan", math.NaN(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCoordinate(tt.lat, tt.lon))
		})
	}
}
