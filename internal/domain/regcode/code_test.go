package regcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/core/apperror"
)

func TestCode_String(t *testing.T) {
	assert.Equal(t, "REGISTRY-MS-NAT-0007", Code{Region: "MS", Category: "NAT", Sequence: 7}.String())
	assert.Equal(t, "REGISTRY-SP-GEN-12345", Code{Region: "SP", Category: "GEN", Sequence: 12345}.String())
	assert.Equal(t, "MS-NAT-", Code{Region: "MS", Category: "NAT", Sequence: 1}.Scope())
}

func TestParse(t *testing.T) {
	c, err := Parse("REGISTRY-MS-HOS-0042")
	require.NoError(t, err)
	assert.Equal(t, Code{Region: "MS", Category: "HOS", Sequence: 42}, c)

	c, err = Parse(Code{Region: "RJ", Category: "PRA", Sequence: 10001}.String())
	require.NoError(t, err)
	assert.Equal(t, 10001, c.Sequence)

	for _, bad := range []string{"", "REGISTRY-MS-NAT-7", "REGISTRY-ms-NAT-0007", "REG-MS-NAT-0007", "REGISTRY-MS-NAT-0000"} {
		_, err := Parse(bad)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), bad)
	}
}

func TestNormalizeRegion(t *testing.T) {
	r, err := NormalizeRegion(" ms ")
	require.NoError(t, err)
	assert.Equal(t, "MS", r)

	for _, bad := range []string{"", "M", "MSX", "M1", "ÁB"} {
		_, err := NormalizeRegion(bad)
		assert.True(t, apperror.HasCode(err, apperror.CodeFieldValidation), bad)
	}
}

func TestCategoryCode(t *testing.T) {
	assert.Equal(t, "NAT", CategoryCode("natural"))
	assert.Equal(t, "HOS", CategoryCode("Lodging"))
	assert.Equal(t, "PRA", CategoryCode(" BEACH "))
	assert.Equal(t, FallbackCategoryCode, CategoryCode("spaceport"))
	assert.Equal(t, FallbackCategoryCode, CategoryCode(""))

	c, ok := LookupCategory("gastronomy")
	require.True(t, ok)
	assert.Equal(t, "GAS", c.Code)
	_, ok = LookupCategory("spaceport")
	assert.False(t, ok)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 14)
	cats[0].Code = "XXX"
	assert.Equal(t, "NAT", CategoryCode("natural"))
	assert.Equal(t, "NAT", Categories()[0].Code)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyOptimistic, s)

	s, err = ParseStrategy("Counter")
	require.NoError(t, err)
	assert.Equal(t, StrategyCounter, s)
	assert.Equal(t, "counter", s.String())

	_, err = ParseStrategy("random")
	assert.Error(t, err)
}
