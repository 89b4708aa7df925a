package dto

import (
	"strings"

	"tourreg/internal/core/apperror"
	"tourreg/internal/domain/audit"
	"tourreg/internal/domain/registry"
	"tourreg/internal/domain/submission"
	"tourreg/internal/domain/validation"
)

// --- Request DTOs ---

// RecordRequest carries the submitted record fields. Missing business data is not
// rejected here: it is reported by the compliance scorer.
type RecordRequest struct {
	registry.Patch

	// AcknowledgeDuplicates lets the record receive a code despite duplicate candidates.
	AcknowledgeDuplicates bool `json:"acknowledgeDuplicates"`
}

// ToRecord converts the request into a new draft record.
func (r *RecordRequest) ToRecord() *registry.Record {
	rec := registry.NewRecord("", "", "")
	r.Patch.Apply(rec)
	return rec
}

// AllocateRequest is the optional body of POST /records/:id/allocate.
type AllocateRequest struct {
	AcknowledgeDuplicates bool `json:"acknowledgeDuplicates"`
}

// ListRecordsQuery is the query string of GET /records and GET /export.
type ListRecordsQuery struct {
	PaginationRequest
	Region          string `form:"region"`
	CategoryID      string `form:"category"`
	Status          string `form:"status"`
	Search          string `form:"search"`
	HasRegistryCode *bool  `form:"hasRegistryCode"`
}

// Validate rejects unknown status values.
func (q *ListRecordsQuery) Validate() error {
	if q.Status != "" && !registry.Status(q.Status).IsValid() {
		return apperror.NewFieldValidation("status", "unknown status").WithDetail("status", q.Status)
	}
	return nil
}

// ToFilter converts the query into a repository filter.
func (q *ListRecordsQuery) ToFilter() registry.Filter {
	return registry.Filter{
		Region:          strings.ToUpper(strings.TrimSpace(q.Region)),
		CategoryID:      strings.ToLower(strings.TrimSpace(q.CategoryID)),
		Status:          registry.Status(q.Status),
		Search:          q.Search,
		HasRegistryCode: q.HasRegistryCode,
		Limit:           q.Limit,
		Offset:          q.Offset,
	}
}

// --- Response DTOs ---

// RecordResponse is a stored record, with the validation outcome for write operations.
type RecordResponse struct {
	*registry.Record
	Validation *validation.Outcome `json:"validation,omitempty"`
}

// FromResult creates a response from a service result.
func FromResult(res *submission.Result) RecordResponse {
	return RecordResponse{Record: res.Record, Validation: res.Outcome}
}

// DuplicatesResponse lists duplicate candidates of a record.
type DuplicatesResponse struct {
	Items []validation.DuplicateCandidate `json:"items"`
	Count int                             `json:"count"`
}

// HistoryResponse lists audit entries of a record.
type HistoryResponse struct {
	Items []audit.Entry `json:"items"`
	Count int           `json:"count"`
}
