package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch_Apply(t *testing.T) {
	r := NewRecord("Blue Lagoon Cave", "natural", "MS")
	r.City = strPtr("Bonito")
	r.Tags = []string{"cave"}
	code := "REGISTRY-MS-NAT-0001"
	r.RegistryCode = &code

	lat := -20.4
	moderate := PriceModerate
	p := Patch{
		Name:       strPtr("Blue Lagoon"),
		City:       strPtr(""),
		Region:     strPtr(" ms "),
		Latitude:   &lat,
		PriceRange: &moderate,
		Tags:       &[]string{},
		Amenities:  &[]string{"parking", "restrooms"},
	}
	p.Apply(r)

	assert.Equal(t, "Blue Lagoon", r.Name)
	assert.Nil(t, r.City)
	assert.Equal(t, "MS", r.Region)
	assert.Equal(t, -20.4, *r.Latitude)
	assert.Equal(t, PriceModerate, *r.PriceRange)
	assert.Nil(t, r.Tags)
	assert.Equal(t, []string{"parking", "restrooms"}, r.Amenities)
	assert.Equal(t, "natural", r.CategoryID, "untouched field")
	assert.Equal(t, code, *r.RegistryCode, "pipeline-owned field")
}

func TestPatch_ApplyDoesNotAlias(t *testing.T) {
	r := NewRecord("Blue Lagoon Cave", "natural", "MS")
	name := "Gruta Azul"
	features := []string{"ramp"}
	p := Patch{Description: &name, AccessibilityFeatures: &features}
	p.Apply(r)

	name = "changed"
	features[0] = "changed"

	assert.Equal(t, "Gruta Azul", *r.Description)
	assert.Equal(t, []string{"ramp"}, r.AccessibilityFeatures)
}

func TestPatch_ClearCoordinates(t *testing.T) {
	lat, lon := -20.4, -56.4
	r := NewRecord("Blue Lagoon Cave", "natural", "MS")
	r.Latitude, r.Longitude = &lat, &lon

	p := Patch{ClearCoordinates: true}
	p.Apply(r)

	assert.False(t, r.HasCoordinates())
	assert.Nil(t, r.Latitude)
}

func TestPatch_ClearEnums(t *testing.T) {
	budget := PriceBudget
	verified := VerificationVerified
	r := NewRecord("Blue Lagoon Cave", "natural", "MS")
	r.PriceRange = &budget
	r.VerificationStatus = &verified

	empty := PriceRange("")
	emptyStatus := VerificationStatus("")
	p := Patch{PriceRange: &empty, VerificationStatus: &emptyStatus}
	p.Apply(r)

	assert.Nil(t, r.PriceRange)
	assert.Nil(t, r.VerificationStatus)
}
