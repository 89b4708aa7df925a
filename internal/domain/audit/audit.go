// Package audit defines the validation audit trail of registry records.
package audit

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"tourreg/internal/core/id"
)

// Action is the type of audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionAllocate Action = "allocate"
	ActionRescore  Action = "rescore"
)

// Entry is one audit record.
// Payload holds the pipeline summary and, for updates, the field diff.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	RecordID   id.ID           `db:"record_id" json:"recordId"`
	Action     Action          `db:"action" json:"action"`
	OperatorID string          `db:"operator_id" json:"operatorId,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Log appends and reads audit entries.
type Log interface {
	Append(ctx context.Context, e Entry) error
	// History returns entries for a record, newest first.
	History(ctx context.Context, recordID id.ID, limit int) ([]Entry, error)
}

// NewEntry builds an entry with payload marshaled from v.
func NewEntry(recordID id.ID, action Action, operatorID string, v any) (Entry, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:         id.New(),
		RecordID:   recordID,
		Action:     action,
		OperatorID: operatorID,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Snapshot flattens v through its JSON form for diffing.
func Snapshot(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// Diff calculates the difference between old and new states.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}
