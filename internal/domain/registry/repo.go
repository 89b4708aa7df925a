package registry

import (
	"context"

	"tourreg/internal/core/id"
	"tourreg/internal/domain/regcode"
)

// Filter narrows Query results. Zero values mean "no constraint".
type Filter struct {
	Region     string
	CategoryID string
	Status     Status
	ExcludeID  id.ID
	Search     string // case-insensitive substring of name

	// HasRegistryCode filters by code presence when set.
	HasRegistryCode *bool

	// Limit of 0 returns everything (duplicate scans need the full set).
	Limit  int
	Offset int
}

// Repository is the store contract used by the pipeline and the service.
// Infrastructure failures are returned as EXTERNAL_SERVICE_ERROR AppErrors.
type Repository interface {
	// Get returns NOT_FOUND when the record does not exist.
	Get(ctx context.Context, recordID id.ID) (*Record, error)

	// Query returns records matching f ordered by name.
	Query(ctx context.Context, f Filter) ([]*Record, error)

	// Create inserts rec and sets its version and timestamps.
	Create(ctx context.Context, rec *Record) error

	// Update applies patch with an optimistic version check and returns the stored record.
	Update(ctx context.Context, recordID id.ID, patch Patch) (*Record, error)

	// SetScores stores the pipeline scores without touching the version.
	SetScores(ctx context.Context, recordID id.ID, completeness, compliance int) error

	// AssignRegistryCode sets the code only when the record has none yet.
	AssignRegistryCode(ctx context.Context, recordID id.ID, code string) error

	regcode.Store
}
