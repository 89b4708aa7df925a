// Package regcode provides registry code formatting and allocation.
// Pattern: REGISTRY-{REGION}-{CAT}-{SEQ} (e.g., REGISTRY-MS-NAT-0007)
package regcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tourreg/internal/core/apperror"
)

const (
	// CodePrefix starts every rendered registry code.
	CodePrefix = "REGISTRY"

	// SequenceWidth is the zero-padded width of the sequence part.
	SequenceWidth = 4
)

var (
	regionRE = regexp.MustCompile(`^[A-Z]{2}$`)
	codeRE   = regexp.MustCompile(`^REGISTRY-([A-Z]{2})-([A-Z]{3})-(\d{4,})$`)
)

// Code is a parsed registry code.
type Code struct {
	Region   string
	Category string
	Sequence int
}

// String renders the code in its canonical form.
func (c Code) String() string {
	return fmt.Sprintf("%s-%s-%s-%0*d", CodePrefix, c.Region, c.Category, SequenceWidth, c.Sequence)
}

// Scope returns the "{REGION}-{CAT}-" prefix shared by all codes of a sequence.
func (c Code) Scope() string {
	return ScopeOf(c.Region, c.Category)
}

// ScopeOf builds the sequence scope for a region and category code.
func ScopeOf(region, categoryCode string) string {
	return region + "-" + categoryCode + "-"
}

// Parse converts a rendered code back into its parts.
func Parse(s string) (Code, error) {
	m := codeRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Code{}, apperror.NewValidation("invalid registry code format").
			WithDetail("registryCode", s)
	}
	seq, err := strconv.Atoi(m[3])
	if err != nil || seq < 1 {
		return Code{}, apperror.NewValidation("invalid registry code sequence").
			WithDetail("registryCode", s)
	}
	return Code{Region: m[1], Category: m[2], Sequence: seq}, nil
}

// NormalizeRegion upper-cases and checks a two-letter region code.
func NormalizeRegion(region string) (string, error) {
	r := strings.ToUpper(strings.TrimSpace(region))
	if !regionRE.MatchString(r) {
		return "", apperror.NewFieldValidation("region", "region must be a two-letter code").
			WithDetail("value", region)
	}
	return r, nil
}
