package validation

// TaxID lengths after stripping formatting.
const (
	IndividualIDLength   = 11
	OrganizationIDLength = 14
)

// ValidateTaxID checks an individual (11 digits) or organizational (14 digits)
// taxpayer identifier. Formatting characters are ignored.
func ValidateTaxID(raw string) bool {
	digits := onlyDigits(raw)
	switch len(digits) {
	case IndividualIDLength:
		return validIndividual(digits)
	case OrganizationIDLength:
		return validOrganization(digits)
	default:
		return false
	}
}

func validIndividual(d []int) bool {
	if allSame(d) {
		return false
	}
	first := checkDigit(d[:9], individualWeights(9))
	second := checkDigit(d[:10], individualWeights(10))
	return first == d[9] && second == d[10]
}

func validOrganization(d []int) bool {
	if allSame(d) {
		return false
	}
	first := checkDigit(d[:12], organizationWeights(12))
	second := checkDigit(d[:13], organizationWeights(13))
	return first == d[12] && second == d[13]
}

// individualWeights returns n+1, n, ..., 2.
func individualWeights(n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = n + 1 - i
	}
	return w
}

// organizationWeights starts at n-7 and cycles down to 2, then resets to 9.
func organizationWeights(n int) []int {
	w := make([]int, n)
	pos := n - 7
	for i := range w {
		w[i] = pos
		pos--
		if pos < 2 {
			pos = 9
		}
	}
	return w
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, d := range digits {
		sum += d * weights[i]
	}
	r := 11 - sum%11
	if r >= 10 {
		return 0
	}
	return r
}

func onlyDigits(s string) []int {
	out := make([]int, 0, len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			out = append(out, int(c-'0'))
		}
	}
	return out
}

func allSame(d []int) bool {
	for _, v := range d[1:] {
		if v != d[0] {
			return false
		}
	}
	return true
}

