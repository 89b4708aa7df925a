package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity returns (longer - editDistance) / longer over case-normalized input,
// in [0, 1]. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	longer := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longer {
		longer = n
	}
	if longer == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(longer-dist) / float64(longer)
}
