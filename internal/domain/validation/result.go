package validation

import "tourreg/internal/core/apperror"

// Issue codes.
const (
	IssueRequired           = "required"
	IssueInvalidFormat      = "invalid_format"
	IssueInvalidChecksum    = "invalid_checksum"
	IssueInvalidCoordinates = "invalid_coordinates"
	IssueMissingCoordinates = "missing_coordinates"
	IssueRecommended        = "recommended"
)

// Issue is a single finding on a record.
// Kind is apperror.CodeFieldValidation or apperror.CodeComplianceViolation.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Penalty int    `json:"penalty"`
}

// Result is the outcome of a compliance evaluation.
type Result struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Score    int     `json:"score"`
}

func fieldIssue(field, code, msg string, penalty int) Issue {
	return Issue{Field: field, Code: code, Kind: apperror.CodeFieldValidation, Message: msg, Penalty: penalty}
}

func complianceIssue(field, code, msg string, penalty int) Issue {
	return Issue{Field: field, Code: code, Kind: apperror.CodeComplianceViolation, Message: msg, Penalty: penalty}
}
