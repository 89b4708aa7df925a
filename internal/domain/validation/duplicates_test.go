package validation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/registry"
)

func TestCompare(t *testing.T) {
	a := blueLagoon()

	t.Run("identical place", func(t *testing.T) {
		score, reasons := Compare(a, blueLagoon())
		assert.InDelta(t, 100, score, 1e-9)
		assert.Equal(t, []string{"similar name (100%)", "similar address (100%)", "within 100 m (0 m)"}, reasons)
	})

	t.Run("near name and location", func(t *testing.T) {
		b := blueLagoon()
		b.Name = "Blue Lagoon Caves"
		b.Latitude = ptr(-20.4001)
		score, reasons := Compare(a, b)
		assert.InDelta(t, 16.0/17.0*50+30+20, score, 1e-9)
		assert.Equal(t, []string{"similar name (94%)", "similar address (100%)", "within 100 m (11 m)"}, reasons)
	})

	t.Run("name only stays at threshold", func(t *testing.T) {
		b := registry.NewRecord("Blue Lagoon Cave", "natural", "MS")
		score, _ := Compare(a, b)
		assert.InDelta(t, 50, score, 1e-9)
	})

	t.Run("blank names are ignored", func(t *testing.T) {
		x, y := blueLagoon(), blueLagoon()
		x.Name, y.Name = "", ""
		score, reasons := Compare(x, y)
		assert.InDelta(t, 50, score, 1e-9)
		assert.Len(t, reasons, 2)
	})

	t.Run("unrelated", func(t *testing.T) {
		b := registry.NewRecord("Red Rock Hotel", "lodging", "MS")
		b.Address = ptr("Avenida Central 500")
		score, reasons := Compare(a, b)
		assert.Zero(t, score)
		assert.Empty(t, reasons)
	})
}

func TestFindDuplicates_RanksAndCaps(t *testing.T) {
	rec := blueLagoon()

	var stored []*registry.Record
	for i := 0; i < 7; i++ {
		r := blueLagoon()
		r.Name = fmt.Sprintf("Blue Lagoon Cave %d", i)
		stored = append(stored, r)
	}
	exact := blueLagoon()
	stored = append(stored, exact)
	stored = append(stored, registry.NewRecord("Red Rock Hotel", "lodging", "MS"))

	src := &stubSource{records: stored}
	got, err := NewDuplicateDetector(src, DetectorOptions{}).FindDuplicates(context.Background(), rec, id.ID{})
	require.NoError(t, err)

	require.Len(t, got, MaxCandidates)
	assert.Equal(t, exact.ID, got[0].RecordID)
	for i, c := range got {
		assert.Greater(t, c.Similarity, ReportThreshold)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Similarity, c.Similarity)
		}
	}
}

func TestFindDuplicates_ExcludesSelf(t *testing.T) {
	rec := blueLagoon()
	src := &stubSource{records: []*registry.Record{rec}}

	got, err := NewDuplicateDetector(src, DetectorOptions{}).FindDuplicates(context.Background(), rec, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.Len(t, src.filters, 1)
	assert.Equal(t, rec.ID, src.filters[0].ExcludeID)
	assert.Empty(t, src.filters[0].Region)
}

func TestFindDuplicates_SameRegionOnly(t *testing.T) {
	src := &stubSource{}
	_, err := NewDuplicateDetector(src, DetectorOptions{SameRegionOnly: true}).
		FindDuplicates(context.Background(), blueLagoon(), id.ID{})
	require.NoError(t, err)
	assert.Equal(t, "MS", src.filters[0].Region)
}

func TestFindDuplicates_SourceFailure(t *testing.T) {
	src := &stubSource{err: errors.New("connection reset")}
	_, err := NewDuplicateDetector(src, DetectorOptions{}).FindDuplicates(context.Background(), blueLagoon(), id.ID{})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeExternalService))
}

func TestFindDuplicates_EmptyStore(t *testing.T) {
	got, err := NewDuplicateDetector(&stubSource{}, DetectorOptions{}).
		FindDuplicates(context.Background(), blueLagoon(), id.ID{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
