package loan

// =============================================================================
// PROGRAM DEFINITIONS
// =============================================================================

// Fannie/Freddie base spread is loan-size dependent: at or above this
// balance the agency spread tightens.
const (
	agencyLargeLoanThreshold = 6_000_000
	agencyLargeLoanSpread    = 150 // bps
	agencySmallLoanSpread    = 200 // bps
)

// DefaultPrograms returns the supported loan programs with their standing
// constraint sets. Values can be overridden via config (see pkg/core/config).
func DefaultPrograms() []Constraints {
	return []Constraints{
		{
			Program:           ProgramFannieFreddie,
			MaxLTV:            0.75,
			MinDSCR:           1.25,
			MinDebtYield:      0.08,
			AmortizationYears: 30,
			BaseSpreadBps:     150, // superseded by the loan-size rule
			MinLoanAmount:     1_000_000,
			StepDownPrepayBps: 50,
			Tiers: []TierPricing{
				{Name: "Tier 2", MaxLTV: 0.75, MinDSCR: 1.25, SpreadAdjustment: 0},
				{Name: "Tier 3", MaxLTV: 0.65, MinDSCR: 1.35, SpreadAdjustment: -25},
				{Name: "Tier 4", MaxLTV: 0.55, MinDSCR: 1.45, SpreadAdjustment: -50},
			},
		},
		{
			Program:       ProgramCMBS,
			MaxLTV:        0.75,
			MinDSCR:       1.25,
			MinDebtYield:  0.09,
			InterestOnly:  true,
			BaseSpreadBps: 300,
			MinLoanAmount: 5_000_000,
		},
		{
			Program:           ProgramDebtFund,
			MaxLTV:            0.80, // higher leverage for bridge/value-add
			MinDSCR:           0.95,
			AmortizationYears: 25,
			BaseSpreadBps:     150,
			MinLoanAmount:     20_000_000,
		},
	}
}
