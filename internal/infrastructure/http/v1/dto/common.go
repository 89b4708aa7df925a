// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// --- Pagination ---

// PaginationRequest contains limit/offset parameters.
type PaginationRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Defaults sets default pagination values.
func (p *PaginationRequest) Defaults() {
	if p.Limit == 0 {
		p.Limit = 50
	}
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items  any `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// --- Error Response ---

// ErrorResponse is the body rendered by middleware.ErrorHandler.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
