// Package validation implements the registry validation pipeline:
// taxpayer id checksums, geo distance, text similarity, completeness and
// compliance scoring, duplicate detection and the orchestrating Pipeline.
//
// Scorers never return errors for bad data. Malformed input is reported as
// Issues in a Result; only store failures and allocation exhaustion are errors.
package validation
