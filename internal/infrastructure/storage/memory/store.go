// Package memory provides an in-process registry store for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tourreg/internal/core/apperror"
	"tourreg/internal/core/id"
	"tourreg/internal/domain/audit"
	"tourreg/internal/domain/regcode"
	"tourreg/internal/domain/registry"
)

var (
	_ registry.Repository = (*Store)(nil)
	_ regcode.Counter     = (*Store)(nil)
	_ audit.Log           = (*Store)(nil)
)

// Store keeps records, code reservations, counters and audit entries in maps.
// Returned records are copies.
type Store struct {
	mu           sync.RWMutex
	records      map[id.ID]*registry.Record
	reservations map[string]regcode.Code
	counters     map[string]int
	audit        map[id.ID][]audit.Entry
	now          func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		records:      make(map[id.ID]*registry.Record),
		reservations: make(map[string]regcode.Code),
		counters:     make(map[string]int),
		audit:        make(map[id.ID][]audit.Entry),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Get returns a copy of the record.
func (s *Store) Get(_ context.Context, recordID id.ID) (*registry.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordID]
	if !ok {
		return nil, apperror.NewNotFound("registry record", recordID.String())
	}
	return rec.Clone(), nil
}

// Query filters in memory and orders by name.
func (s *Store) Query(_ context.Context, f registry.Filter) ([]*registry.Record, error) {
	s.mu.RLock()
	out := make([]*registry.Record, 0, len(s.records))
	for _, rec := range s.records {
		if matches(rec, f) {
			out = append(out, rec.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*registry.Record{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(rec *registry.Record, f registry.Filter) bool {
	if !id.IsNil(f.ExcludeID) && rec.ID == f.ExcludeID {
		return false
	}
	if f.Region != "" && !strings.EqualFold(rec.Region, f.Region) {
		return false
	}
	if f.CategoryID != "" && !strings.EqualFold(rec.CategoryID, f.CategoryID) {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.HasRegistryCode != nil && rec.HasRegistryCode() != *f.HasRegistryCode {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Create stores a copy of rec with version 1.
func (s *Store) Create(_ context.Context, rec *registry.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id.IsNil(rec.ID) {
		rec.ID = id.New()
	}
	if _, exists := s.records[rec.ID]; exists {
		return apperror.NewConflict("registry record already exists").WithDetail("id", rec.ID.String())
	}
	now := s.now()
	rec.Version = 1
	rec.CreatedAt, rec.UpdatedAt = now, now
	s.records[rec.ID] = rec.Clone()
	return nil
}

// Update applies patch under the write lock with an optimistic version check.
func (s *Store) Update(_ context.Context, recordID id.ID, patch registry.Patch) (*registry.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok {
		return nil, apperror.NewNotFound("registry record", recordID.String())
	}
	if patch.Version != 0 && patch.Version != rec.Version {
		return nil, apperror.NewConcurrentModification("registry record", recordID.String())
	}
	next := rec.Clone()
	patch.Apply(next)
	next.Version++
	next.UpdatedAt = s.now()
	s.records[recordID] = next
	return next.Clone(), nil
}

// SetScores stores pipeline scores.
func (s *Store) SetScores(_ context.Context, recordID id.ID, completeness, compliance int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok {
		return apperror.NewNotFound("registry record", recordID.String())
	}
	rec.CompletenessScore = &completeness
	rec.ComplianceScore = &compliance
	return nil
}

// AssignRegistryCode sets the code once.
func (s *Store) AssignRegistryCode(_ context.Context, recordID id.ID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordID]
	if !ok {
		return apperror.NewNotFound("registry record", recordID.String())
	}
	if rec.HasRegistryCode() {
		return apperror.NewAlreadyAssigned(recordID.String(), *rec.RegistryCode)
	}
	rec.RegistryCode = &code
	return nil
}

// FindMaxSequence scans reservations for the pair.
func (s *Store) FindMaxSequence(_ context.Context, region, categoryCode string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	highest := 0
	for _, c := range s.reservations {
		if c.Region == region && c.Category == categoryCode && c.Sequence > highest {
			highest = c.Sequence
		}
	}
	return highest, nil
}

// ReserveCode inserts the code unless it is already present.
func (s *Store) ReserveCode(_ context.Context, code regcode.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := code.String()
	if _, taken := s.reservations[key]; taken {
		return apperror.NewCodeTaken(key)
	}
	s.reservations[key] = code
	return nil
}

// Next increments the counter for the pair, seeding it from existing reservations.
func (s *Store) Next(_ context.Context, region, categoryCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := regcode.ScopeOf(region, categoryCode)
	current, ok := s.counters[key]
	if !ok {
		for _, c := range s.reservations {
			if c.Region == region && c.Category == categoryCode && c.Sequence > current {
				current = c.Sequence
			}
		}
	}
	current++
	s.counters[key] = current
	return current, nil
}

// Append stores an audit entry.
func (s *Store) Append(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.audit[e.RecordID] = append(s.audit[e.RecordID], e)
	return nil
}

// History returns entries newest first.
func (s *Store) History(_ context.Context, recordID id.ID, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.audit[recordID]
	out := make([]audit.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
