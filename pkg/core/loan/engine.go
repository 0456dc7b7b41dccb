package loan

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// =============================================================================
// LOAN SIZING ENGINE
// =============================================================================

// ErrInvalidPropertyState is returned when scenarios are requested before a
// positive NOI and property value are set. An explicit error keeps "property
// not set" distinguishable from "no program qualifies".
var ErrInvalidPropertyState = errors.New("loan sizing requires positive NOI and property value")

// Engine evaluates every configured program against the current property
// state. It is a pure calculator over that state: CalculateScenarios can be
// called repeatedly and never mutates the engine. Engines are not safe for
// concurrent mutation; give each analysis its own instance.
type Engine struct {
	programs []Constraints
	curve    TreasuryCurve
	term     TreasuryTerm

	noi           float64
	propertyValue float64
	capRate       float64
}

// NewEngine builds an engine over the given programs and treasury curve.
// Passing nil programs selects the defaults.
func NewEngine(programs []Constraints, curve TreasuryCurve) *Engine {
	if programs == nil {
		programs = DefaultPrograms()
	}
	return &Engine{programs: programs, curve: curve, term: Term10Y}
}

// SetPropertyByCapRate derives property value as NOI / capRate.
func (e *Engine) SetPropertyByCapRate(noi, capRate float64) error {
	if capRate <= 0 {
		return fmt.Errorf("cap rate must be positive, got %f", capRate)
	}
	e.noi = noi
	e.capRate = capRate
	e.propertyValue = noi / capRate
	return nil
}

// SetPropertyByValue derives the implied cap rate as NOI / value.
func (e *Engine) SetPropertyByValue(noi, propertyValue float64) error {
	if propertyValue <= 0 {
		return fmt.Errorf("property value must be positive, got %f", propertyValue)
	}
	e.noi = noi
	e.propertyValue = propertyValue
	e.capRate = noi / propertyValue
	return nil
}

// SetTreasuryTerm selects the index term for pricing.
func (e *Engine) SetTreasuryTerm(term TreasuryTerm) error {
	if !ValidTerm(term) {
		return fmt.Errorf("unsupported treasury term %q", term)
	}
	e.term = term
	return nil
}

// PropertyValue returns the current property value.
func (e *Engine) PropertyValue() float64 { return e.propertyValue }

// CapRate returns the current cap rate.
func (e *Engine) CapRate() float64 { return e.capRate }

// CalculateScenarios evaluates every program (and every Fannie/Freddie
// tier) and returns the qualifying scenarios sorted descending by loan
// amount. A program with no qualifying scenario contributes nothing; an
// unset or non-positive property state is an error.
func (e *Engine) CalculateScenarios(stepDownPrepay bool) ([]Scenario, error) {
	if e.noi <= 0 || e.propertyValue <= 0 {
		return nil, ErrInvalidPropertyState
	}

	treasuryRate, err := e.curve.Rate(e.term)
	if err != nil {
		return nil, err
	}

	var scenarios []Scenario
	for _, prog := range e.programs {
		// Structurally too small: even at max leverage the program minimum
		// cannot be reached.
		if prog.MinLoanAmount > e.propertyValue*prog.MaxLTV {
			continue
		}

		if len(prog.Tiers) > 0 {
			for _, tier := range prog.Tiers {
				if s, ok := e.evaluate(prog, &tier, treasuryRate, stepDownPrepay); ok {
					scenarios = append(scenarios, s)
				}
			}
		} else {
			if s, ok := e.evaluate(prog, nil, treasuryRate, stepDownPrepay); ok {
				scenarios = append(scenarios, s)
			}
		}
	}

	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].LoanAmount > scenarios[j].LoanAmount
	})
	return scenarios, nil
}

// evaluate sizes a single program/tier combination. ok is false when the
// sized loan falls below the program minimum.
func (e *Engine) evaluate(prog Constraints, tier *TierPricing, treasuryRate float64, stepDownPrepay bool) (Scenario, bool) {
	maxLTV := prog.MaxLTV
	minDSCR := prog.MinDSCR
	tierName := ""
	if tier != nil {
		maxLTV = tier.MaxLTV
		minDSCR = tier.MinDSCR
		tierName = tier.Name
	}

	// Candidate ceilings; the binding constraint is the first minimum in
	// LTV, DSCR, Debt Yield order.
	ltvCeiling := e.propertyValue * maxLTV
	dscrCeiling := math.Inf(1)
	if minDSCR > 0 {
		dscrCeiling = e.noi / minDSCR
	}
	dyCeiling := math.Inf(1)
	if prog.MinDebtYield > 0 {
		dyCeiling = e.noi / prog.MinDebtYield
	}

	loanAmount := ltvCeiling
	binding := BindingLTV
	if dscrCeiling < loanAmount {
		loanAmount = dscrCeiling
		binding = BindingDSCR
	}
	if dyCeiling < loanAmount {
		loanAmount = dyCeiling
		binding = BindingDebtYield
	}

	if loanAmount < prog.MinLoanAmount {
		return Scenario{}, false
	}

	spread := e.spread(prog, tier, loanAmount, stepDownPrepay)
	rate := treasuryRate + spread/100

	var payment, dscr float64
	if prog.InterestOnly || prog.AmortizationYears == 0 {
		payment = loanAmount * (rate / 100) / 12
	} else {
		payment = annuityPayment(loanAmount, rate, prog.AmortizationYears)
	}
	if payment > 0 {
		dscr = (e.noi / 12) / payment
	} else {
		dscr = math.Inf(1)
	}

	s := Scenario{
		Program:           prog.Program,
		TierName:          tierName,
		LoanAmount:        loanAmount,
		LTV:               loanAmount / e.propertyValue,
		DSCR:              dscr,
		DebtYield:         e.noi / loanAmount,
		InterestRate:      rate,
		MonthlyPayment:    payment,
		AmortizationYears: prog.AmortizationYears,
		TreasuryRate:      treasuryRate,
		SpreadBps:         spread,
		StepDownPrepay:    stepDownPrepay && prog.StepDownPrepayBps > 0,
		BindingConstraint: binding,
	}

	s.Notes = append(s.Notes, fmt.Sprintf("Treasury %s: %.2f%%", e.term, treasuryRate))
	s.Notes = append(s.Notes, fmt.Sprintf("Spread: %.0f bps", spread))
	if tierName != "" {
		s.Notes = append(s.Notes, "Tier pricing: "+tierName)
	}
	if s.StepDownPrepay {
		s.Notes = append(s.Notes, fmt.Sprintf("Step-down prepay: +%.0f bps", prog.StepDownPrepayBps))
	}
	s.Notes = append(s.Notes, "Binding constraint: "+binding)

	return s, true
}

// spread computes total pricing in basis points over treasury.
func (e *Engine) spread(prog Constraints, tier *TierPricing, loanAmount float64, stepDownPrepay bool) float64 {
	spread := prog.BaseSpreadBps

	// Agency pricing is loan-size dependent.
	if prog.Program == ProgramFannieFreddie {
		if loanAmount >= agencyLargeLoanThreshold {
			spread = agencyLargeLoanSpread
		} else {
			spread = agencySmallLoanSpread
		}
	}
	if tier != nil {
		spread += tier.SpreadAdjustment
	}
	if stepDownPrepay && prog.StepDownPrepayBps > 0 {
		spread += prog.StepDownPrepayBps
	}
	return spread
}

// annuityPayment is the standard level-payment formula. rate is annual in
// percent; a zero rate degrades to straight-line principal.
func annuityPayment(principal, rate float64, years int) float64 {
	monthlyRate := rate / 100 / 12
	n := float64(years * 12)
	if monthlyRate <= 0 {
		return principal / n
	}
	f := math.Pow(1+monthlyRate, n)
	return principal * (monthlyRate * f) / (f - 1)
}
