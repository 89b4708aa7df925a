package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreg/internal/core/id"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{"name": "Blue Lagoon", "city": "Bonito", "tags": []any{"cave"}}
	newState := map[string]any{"name": "Blue Lagoon Cave", "tags": []any{"cave"}, "phone": "6799998888"}

	changes := Diff(oldState, newState)

	assert.Len(t, changes, 3)
	assert.Equal(t, map[string]any{"old": "Blue Lagoon", "new": "Blue Lagoon Cave"}, changes["name"])
	assert.Equal(t, map[string]any{"old": "Bonito", "new": nil}, changes["city"])
	assert.Equal(t, map[string]any{"old": nil, "new": "6799998888"}, changes["phone"])
	assert.NotContains(t, changes, "tags")
}

func TestSnapshot(t *testing.T) {
	type rec struct {
		Name  string  `json:"name"`
		Score *int    `json:"score,omitempty"`
		Lat   float64 `json:"lat"`
	}
	m := Snapshot(rec{Name: "Cave", Lat: -20.4})

	assert.Equal(t, map[string]any{"name": "Cave", "lat": -20.4}, m)
	assert.Nil(t, Snapshot(func() {}))
}

func TestNewEntry(t *testing.T) {
	recordID := id.New()
	e, err := NewEntry(recordID, ActionAllocate, "op-7", map[string]any{"registryCode": "REGISTRY-MS-NAT-0001"})
	require.NoError(t, err)

	assert.False(t, id.IsNil(e.ID))
	assert.Equal(t, recordID, e.RecordID)
	assert.Equal(t, ActionAllocate, e.Action)
	assert.Equal(t, "op-7", e.OperatorID)
	assert.False(t, e.CreatedAt.IsZero())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(e.Payload, &payload))
	assert.Equal(t, "REGISTRY-MS-NAT-0001", payload["registryCode"])

	_, err = NewEntry(recordID, ActionCreate, "", make(chan int))
	assert.Error(t, err)
}
