package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
)

func strPtr(s string) *string { return &s }

func TestNewRecord(t *testing.T) {
	r := NewRecord("Blue Lagoon Cave", "natural", "MS")

	assert.False(t, id.IsNil(r.ID))
	assert.Equal(t, StatusDraft, r.Status)
	assert.True(t, r.IsActive)
	assert.False(t, r.HasRegistryCode())
	assert.False(t, r.HasCoordinates())
	assert.NoError(t, r.Validate())
}

func TestRecord_Validate(t *testing.T) {
	bad := PriceRange("cheap")
	negative := -1
	unknown := VerificationStatus("maybe")

	tests := []struct {
		name      string
		mutate    func(r *Record)
		wantField string
	}{
		{"unknown status", func(r *Record) { r.Status = "archived" }, "status"},
		{"unknown price range", func(r *Record) { r.PriceRange = &bad }, "priceRange"},
		{"unknown verification status", func(r *Record) { r.VerificationStatus = &unknown }, "verificationStatus"},
		{"negative capacity", func(r *Record) { r.Capacity = &negative }, "capacity"},
		{"three letter region", func(r *Record) { r.Region = "MSX" }, "region"},
		{"digit in region", func(r *Record) { r.Region = "M1" }, "region"},
		{"non-ascii region", func(r *Record) { r.Region = "MÉ" }, "region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord("Blue Lagoon Cave", "natural", "MS")
			tt.mutate(r)

			err := r.Validate()
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeFieldValidation, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Details["field"])
		})
	}
}

func TestRecord_ValidateAllowsMissingRegion(t *testing.T) {
	r := NewRecord("Blue Lagoon Cave", "natural", "")
	assert.NoError(t, r.Validate())
}

func TestRecord_HasRegistryCode(t *testing.T) {
	r := NewRecord("Blue Lagoon Cave", "natural", "MS")
	r.RegistryCode = strPtr("")
	assert.False(t, r.HasRegistryCode())

	r.RegistryCode = strPtr("REGISTRY-MS-NAT-0001")
	assert.True(t, r.HasRegistryCode())
}

func TestRecord_CloneIsDeep(t *testing.T) {
	lat, lon := -20.4, -56.4
	r := NewRecord("Blue Lagoon Cave", "natural", "MS")
	r.Address = strPtr("Rural Rd 10")
	r.Latitude, r.Longitude = &lat, &lon
	r.Amenities = []string{"parking"}

	c := r.Clone()
	require.Equal(t, r, c)

	*c.Address = "Other Rd"
	*c.Latitude = 0
	c.Amenities[0] = "pool"

	assert.Equal(t, "Rural Rd 10", *r.Address)
	assert.Equal(t, -20.4, *r.Latitude)
	assert.Equal(t, []string{"parking"}, r.Amenities)
	assert.Nil(t, (*Record)(nil).Clone())
}
