package loan

import "fmt"

// =============================================================================
// TREASURY CURVE
// =============================================================================

// TreasuryTerm selects the index term for rate pricing.
type TreasuryTerm string

const (
	Term5Y  TreasuryTerm = "5Y"
	Term7Y  TreasuryTerm = "7Y"
	Term10Y TreasuryTerm = "10Y"
	Term15Y TreasuryTerm = "15Y" // synthetic: mean of 10Y and 20Y
	Term20Y TreasuryTerm = "20Y"
	Term30Y TreasuryTerm = "30Y"
)

// TreasuryCurve is an immutable snapshot of quoted treasury rates in
// percent. There is no independently quoted 15-year point: Rate derives it
// as the arithmetic mean of the 10- and 20-year rates at evaluation time.
// Each engine holds its own curve; concurrent analyses never share mutable
// rate state.
type TreasuryCurve struct {
	Rates map[TreasuryTerm]float64 `json:"rates" yaml:"rates"`
}

// DefaultTreasuryCurve returns the standing quote sheet used when no curve
// is configured.
func DefaultTreasuryCurve() TreasuryCurve {
	return TreasuryCurve{Rates: map[TreasuryTerm]float64{
		Term5Y:  4.25,
		Term7Y:  4.35,
		Term10Y: 4.45,
		Term20Y: 4.75,
		Term30Y: 4.85,
	}}
}

// Rate returns the curve rate for a term.
func (c TreasuryCurve) Rate(term TreasuryTerm) (float64, error) {
	if term == Term15Y {
		ten, okTen := c.Rates[Term10Y]
		twenty, okTwenty := c.Rates[Term20Y]
		if !okTen || !okTwenty {
			return 0, fmt.Errorf("15Y treasury requires both 10Y and 20Y quotes")
		}
		return (ten + twenty) / 2, nil
	}
	r, ok := c.Rates[term]
	if !ok {
		return 0, fmt.Errorf("no treasury quote for term %s", term)
	}
	return r, nil
}

// ValidTerm reports whether the term is one of the supported selections.
func ValidTerm(term TreasuryTerm) bool {
	switch term {
	case Term5Y, Term7Y, Term10Y, Term15Y, Term20Y, Term30Y:
		return true
	}
	return false
}
