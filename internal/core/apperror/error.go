// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All registry errors that reach an API boundary must use AppError.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal        = "INTERNAL_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"

	// Validation errors (400)
	CodeValidation      = "VALIDATION_ERROR"
	CodeFieldValidation = "FIELD_VALIDATION_ERROR"

	// Business rule violations (422)
	CodeComplianceViolation    = "COMPLIANCE_VIOLATION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict           = "CONFLICT"
	CodeDuplicateConflict  = "DUPLICATE_CONFLICT"
	CodeAllocationConflict = "ALLOCATION_CONFLICT"
	CodeCodeTaken          = "CODE_TAKEN"
	CodeAlreadyAssigned    = "CODE_ALREADY_ASSIGNED"
)

// AppError is the standard error type for the registry.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field, region, attempts, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewFieldValidation creates an error for a single missing or malformed field (400).
func NewFieldValidation(field, message string) *AppError {
	return &AppError{
		Code:       CodeFieldValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field},
	}
}

// NewComplianceViolation reports a record that fails compliance rules (422).
func NewComplianceViolation(message string) *AppError {
	return &AppError{
		Code:       CodeComplianceViolation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewExternalService wraps a failure of the store or another collaborator (503).
// The operation name ends up in details so dashboards can group failures.
func NewExternalService(op string, err error) *AppError {
	return &AppError{
		Code:       CodeExternalService,
		Message:    "External service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"operation": op},
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicateConflict reports high-similarity candidates that need a human decision.
func NewDuplicateConflict(candidates int) *AppError {
	return &AppError{
		Code:       CodeDuplicateConflict,
		Message:    "Possible duplicate records found",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"candidates": candidates},
	}
}

// NewAllocationConflict is returned when code allocation exhausted its retries.
func NewAllocationConflict(prefix string, attempts int) *AppError {
	return &AppError{
		Code:       CodeAllocationConflict,
		Message:    "Could not allocate a registry code, retry later",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"prefix": prefix, "attempts": attempts},
	}
}

// NewCodeTaken signals a uniqueness violation on a registry code reservation.
func NewCodeTaken(code string) *AppError {
	return &AppError{
		Code:       CodeCodeTaken,
		Message:    "Registry code already reserved",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"registryCode": code},
	}
}

// NewAlreadyAssigned signals that a record already carries a registry code.
func NewAlreadyAssigned(recordID any, code string) *AppError {
	return &AppError{
		Code:       CodeAlreadyAssigned,
		Message:    "Record already has a registry code",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"id": recordID, "registryCode": code},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return HasCode(err, CodeConcurrentModification)
}

// IsCodeTaken checks if error is CodeCodeTaken
func IsCodeTaken(err error) bool {
	return HasCode(err, CodeCodeTaken)
}

// IsAllocationConflict checks if error is CodeAllocationConflict
func IsAllocationConflict(err error) bool {
	return HasCode(err, CodeAllocationConflict)
}
