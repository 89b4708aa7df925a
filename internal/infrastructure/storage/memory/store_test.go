package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/audit"
	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/registry"
)

func seed(t *testing.T, s *Store, name, category, region string) *registry.Record {
	t.Helper()
	rec := registry.NewRecord(name, category, region)
	require.NoError(t, s.Create(context.Background(), rec))
	return rec
}

func TestStore_CreateGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := seed(t, s, "Blue Lagoon Cave", "natural", "MS")

	assert.Equal(t, 1, rec.Version)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	got.Name = "mutated"
	again, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Lagoon Cave", again.Name)

	err = s.Create(ctx, rec)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	_, err = s.Get(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestStore_Query(t *testing.T) {
	s := New()
	ctx := context.Background()
	cave := seed(t, s, "Blue Lagoon Cave", "natural", "MS")
	seed(t, s, "Aquario Natural", "natural", "MS")
	seed(t, s, "Pousada Rio", "lodging", "MS")
	seed(t, s, "Praia Grande", "beach", "SP")
	require.NoError(t, s.AssignRegistryCode(ctx, cave.ID, "REGISTRY-MS-NAT-0001"))

	all, err := s.Query(ctx, registry.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Aquario Natural", all[0].Name)

	coded := true
	tests := []struct {
		name   string
		filter registry.Filter
		want   int
	}{
		{"region", registry.Filter{Region: "ms"}, 3},
		{"category", registry.Filter{CategoryID: "natural"}, 2},
		{"exclude", registry.Filter{ExcludeID: cave.ID}, 3},
		{"search", registry.Filter{Search: "LAGOON"}, 1},
		{"has code", registry.Filter{HasRegistryCode: &coded}, 1},
		{"limit", registry.Filter{Limit: 2}, 2},
		{"offset", registry.Filter{Offset: 3}, 1},
		{"offset past end", registry.Filter{Offset: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestStore_UpdateVersionCheck(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := seed(t, s, "Blue Lagoon Cave", "natural", "MS")

	city := "Bonito"
	updated, err := s.Update(ctx, rec.ID, registry.Patch{Version: 1, City: &city})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "Bonito", *updated.City)

	_, err = s.Update(ctx, rec.ID, registry.Patch{Version: 1, City: &city})
	assert.True(t, apperror.IsConcurrentModification(err))

	_, err = s.Update(ctx, rec.ID, registry.Patch{City: &city})
	assert.NoError(t, err, "zero version skips the check")

	_, err = s.Update(ctx, id.New(), registry.Patch{})
	assert.True(t, apperror.IsNotFound(err))
}

func TestStore_AssignRegistryCodeOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := seed(t, s, "Blue Lagoon Cave", "natural", "MS")

	require.NoError(t, s.AssignRegistryCode(ctx, rec.ID, "REGISTRY-MS-NAT-0001"))
	err := s.AssignRegistryCode(ctx, rec.ID, "REGISTRY-MS-NAT-0002")
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyAssigned))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "REGISTRY-MS-NAT-0001", *got.RegistryCode)
}

func TestStore_SetScores(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := seed(t, s, "Blue Lagoon Cave", "natural", "MS")

	require.NoError(t, s.SetScores(ctx, rec.ID, 30, 66))
	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, *got.CompletenessScore)
	assert.Equal(t, 66, *got.ComplianceScore)

	assert.True(t, apperror.IsNotFound(s.SetScores(ctx, id.New(), 1, 1)))
}

func TestStore_Reservations(t *testing.T) {
	s := New()
	ctx := context.Background()

	highest, err := s.FindMaxSequence(ctx, "MS", "NAT")
	require.NoError(t, err)
	assert.Zero(t, highest)

	require.NoError(t, s.ReserveCode(ctx, regcode.Code{Region: "MS", Category: "NAT", Sequence: 1}))
	require.NoError(t, s.ReserveCode(ctx, regcode.Code{Region: "MS", Category: "NAT", Sequence: 3}))
	require.NoError(t, s.ReserveCode(ctx, regcode.Code{Region: "MS", Category: "HOS", Sequence: 9}))

	err = s.ReserveCode(ctx, regcode.Code{Region: "MS", Category: "NAT", Sequence: 3})
	assert.True(t, apperror.IsCodeTaken(err))

	highest, err = s.FindMaxSequence(ctx, "MS", "NAT")
	require.NoError(t, err)
	assert.Equal(t, 3, highest)

	next, err := s.Next(ctx, "MS", "NAT")
	require.NoError(t, err)
	assert.Equal(t, 4, next, "counter seeds from reservations")
	next, err = s.Next(ctx, "MS", "NAT")
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}

func TestStore_History(t *testing.T) {
	s := New()
	ctx := context.Background()
	recordID := id.New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []audit.Action{audit.ActionCreate, audit.ActionUpdate, audit.ActionAllocate} {
		require.NoError(t, s.Append(ctx, audit.Entry{
			RecordID:  recordID,
			Action:    action,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := s.History(ctx, recordID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, audit.ActionAllocate, entries[0].Action)
	assert.False(t, id.IsNil(entries[0].ID))

	entries, err = s.History(ctx, recordID, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = s.History(ctx, id.New(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
