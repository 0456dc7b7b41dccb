// Package loan sizes debt against NOI across the supported loan programs
// and prices each qualifying scenario off the treasury curve.
package loan

// =============================================================================
// LOAN PROGRAM STRUCTURES
// =============================================================================

// Program identifies a loan program family.
type Program string

const (
	ProgramFannieFreddie Program = "fannie_freddie"
	ProgramCMBS          Program = "cmbs"
	ProgramDebtFund      Program = "debt_fund"
)

// DisplayName returns the underwriter-facing program label.
func (p Program) DisplayName() string {
	switch p {
	case ProgramFannieFreddie:
		return "Fannie/Freddie"
	case ProgramCMBS:
		return "CMBS"
	case ProgramDebtFund:
		return "Debt Fund"
	}
	return string(p)
}

// Binding constraint labels, in tie-break priority order.
const (
	BindingLTV       = "LTV"
	BindingDSCR      = "DSCR"
	BindingDebtYield = "Debt Yield"
)

// TierPricing is one Fannie/Freddie leverage tier: lower leverage and higher
// coverage buy a spread discount.
type TierPricing struct {
	Name             string  `json:"name" yaml:"name"`
	MaxLTV           float64 `json:"max_ltv" yaml:"max_ltv"`
	MinDSCR          float64 `json:"min_dscr" yaml:"min_dscr"`
	SpreadAdjustment float64 `json:"spread_adjustment" yaml:"spread_adjustment"` // bps from base
}

// Constraints is one loan program's sizing and pricing parameter set.
// MinDebtYield of 0 means the program has no debt-yield requirement;
// AmortizationYears of 0 means interest-only.
type Constraints struct {
	Program           Program       `json:"program" yaml:"program"`
	MaxLTV            float64       `json:"max_ltv" yaml:"max_ltv"`
	MinDSCR           float64       `json:"min_dscr" yaml:"min_dscr"`
	MinDebtYield      float64       `json:"min_debt_yield" yaml:"min_debt_yield"`
	AmortizationYears int           `json:"amortization_years" yaml:"amortization_years"`
	InterestOnly      bool          `json:"interest_only" yaml:"interest_only"`
	BaseSpreadBps     float64       `json:"base_spread_bps" yaml:"base_spread_bps"`
	MinLoanAmount     float64       `json:"min_loan_amount" yaml:"min_loan_amount"`
	StepDownPrepayBps float64       `json:"step_down_prepay_bps" yaml:"step_down_prepay_bps"` // 0 = unavailable
	Tiers             []TierPricing `json:"tiers,omitempty" yaml:"tiers"`
}

// Scenario is one evaluated program/tier combination. Scenarios below the
// program minimum are never emitted.
type Scenario struct {
	Program           Program  `json:"program"`
	TierName          string   `json:"tier_name,omitempty"`
	LoanAmount        float64  `json:"loan_amount"`
	LTV               float64  `json:"ltv"`
	DSCR              float64  `json:"dscr"`
	DebtYield         float64  `json:"debt_yield"`
	InterestRate      float64  `json:"interest_rate"` // percent
	MonthlyPayment    float64  `json:"monthly_payment"`
	AmortizationYears int      `json:"amortization_years"` // 0 = interest only
	TreasuryRate      float64  `json:"treasury_rate"`      // percent
	SpreadBps         float64  `json:"spread_bps"`
	StepDownPrepay    bool     `json:"step_down_prepay"`
	BindingConstraint string   `json:"binding_constraint"`
	Notes             []string `json:"notes"`
}

// Label renders the scenario's display name, e.g. "Fannie/Freddie (Tier 3)".
func (s Scenario) Label() string {
	if s.TierName != "" {
		return s.Program.DisplayName() + " (" + s.TierName + ")"
	}
	return s.Program.DisplayName()
}
