package validation

import (
	"fmt"
	"regexp"

	"tourreg/internal/domain/registry"
)

// Penalties applied by ComplianceScorer.
const (
	PenaltyRequired           = 10
	PenaltyEmail              = 5
	PenaltyPhone              = 2
	PenaltyInvalidCoordinates = 10
	PenaltyMissingCoordinates = 5
	PenaltyRecommended        = 1
	PenaltyChecksum           = 5
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ComplianceScorer applies the rule-based penalty model starting at 100.
type ComplianceScorer struct {
	required    []Field
	recommended []Field
}

// NewComplianceScorer uses the RequiredFields and RecommendedFields tables.
func NewComplianceScorer() *ComplianceScorer {
	return &ComplianceScorer{required: RequiredFields, recommended: RecommendedFields}
}

// Evaluate scores r. It is deterministic and never fails.
func (s *ComplianceScorer) Evaluate(r *registry.Record) Result {
	res := Result{Errors: []Issue{}, Warnings: []Issue{}}
	if r == nil {
		r = &registry.Record{}
	}

	for _, f := range s.required {
		if !f.Filled(r) {
			res.Errors = append(res.Errors, fieldIssue(f.Name, IssueRequired,
				fmt.Sprintf("%s is required", f.Name), PenaltyRequired))
		}
	}

	if optText(r.Email) && !emailRE.MatchString(*r.Email) {
		res.Errors = append(res.Errors, complianceIssue("email", IssueInvalidFormat,
			"email must look like local@domain.tld", PenaltyEmail))
	}

	if optText(r.Phone) {
		if n := len(onlyDigits(*r.Phone)); n < 10 || n > 11 {
			res.Warnings = append(res.Warnings, complianceIssue("phone", IssueInvalidFormat,
				"phone must have 10 or 11 digits", PenaltyPhone))
		}
	}

	switch {
	case r.HasCoordinates():
		if !IsValidCoordinate(*r.Latitude, *r.Longitude) {
			res.Errors = append(res.Errors, complianceIssue("coordinates", IssueInvalidCoordinates,
				"latitude must be in [-90, 90] and longitude in [-180, 180]", PenaltyInvalidCoordinates))
		}
	case r.Latitude != nil || r.Longitude != nil:
		res.Errors = append(res.Errors, complianceIssue("coordinates", IssueInvalidCoordinates,
			"latitude and longitude must be provided together", PenaltyInvalidCoordinates))
	default:
		res.Warnings = append(res.Warnings, fieldIssue("coordinates", IssueMissingCoordinates,
			"coordinates are not set", PenaltyMissingCoordinates))
	}

	for _, f := range s.recommended {
		if !f.Filled(r) {
			res.Warnings = append(res.Warnings, fieldIssue(f.Name, IssueRecommended,
				fmt.Sprintf("%s is recommended", f.Name), PenaltyRecommended))
		}
	}

	if optText(r.RegistrationNumber) && !ValidateTaxID(*r.RegistrationNumber) {
		res.Errors = append(res.Errors, complianceIssue("registrationNumber", IssueInvalidChecksum,
			"registration number failed checksum validation", PenaltyChecksum))
	}

	score := 100
	for _, i := range res.Errors {
		score -= i.Penalty
	}
	for _, i := range res.Warnings {
		score -= i.Penalty
	}
	res.Score = max(score, 0)
	res.IsValid = len(res.Errors) == 0
	return res
}
