package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// NUMERIC COERCION
// =============================================================================

var numericCleanRe = regexp.MustCompile(`[$,%\s]`)

// CoerceNumeric parses a raw cell into a float. Currency symbols, thousands
// separators and percent signs are stripped; accounting-style parenthesized
// values become negative. Unparseable input yields NaN, never an error: a
// malformed cell degrades that cell only, not the row or the run.
func CoerceNumeric(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "nan") {
		return math.NaN()
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = numericCleanRe.ReplaceAllString(s, "")
	if s == "" {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	if negative {
		f = -f
	}
	return f
}

// CoerceAmount is CoerceNumeric for expense contexts: extracted amounts are
// magnitudes, so parenthesized (credit) values are folded to their absolute
// value rather than kept negative.
func CoerceAmount(raw string) float64 {
	f := CoerceNumeric(raw)
	if math.IsNaN(f) {
		return f
	}
	return math.Abs(f)
}
