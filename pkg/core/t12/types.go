// Package t12 extracts income and expense line items from trailing-12-month
// operating statements and applies the underwriting expense rule set.
package t12

import "multifamily_underwriting/pkg/models"

// =============================================================================
// T12 ANALYSIS STRUCTURES
// =============================================================================

// Expense categories in rule-application order. The order is part of the
// contract: the summary builder renders expense lines in this sequence.
const (
	CatVacancy             = "vacancy"
	CatPropertyTaxes       = "property_taxes"
	CatInsurance           = "insurance"
	CatElectricity         = "electricity"
	CatWater               = "water"
	CatSewer               = "sewer"
	CatTrash               = "trash"
	CatRepairsMaintenance  = "repairs_maintenance"
	CatPayroll             = "payroll"
	CatAdminFees           = "admin_fees"
	CatManagementFee       = "management_fee"
	CatReplacementReserves = "replacement_reserves"
)

// ExpenseOrder is the fixed rule and presentation order.
var ExpenseOrder = []string{
	CatVacancy,
	CatPropertyTaxes,
	CatInsurance,
	CatElectricity,
	CatWater,
	CatSewer,
	CatTrash,
	CatRepairsMaintenance,
	CatPayroll,
	CatAdminFees,
	CatManagementFee,
	CatReplacementReserves,
}

// ExpenseLineItem is one adjusted expense category. Adjusted is always >= 0
// and Rationale is never empty once a rule has run.
type ExpenseLineItem struct {
	Category  string  `json:"category"`
	Actual    float64 `json:"actual"`
	Adjusted  float64 `json:"adjusted"`
	Rationale string  `json:"rationale"`
}

// ExpenseAnalysis is the post-rule expense picture.
type ExpenseAnalysis struct {
	Lines         []ExpenseLineItem `json:"lines"` // in ExpenseOrder
	TotalAdjusted float64           `json:"total_adjusted"`
	// ExpenseRatioNote reports the 28%-of-EGI floor check. Advisory only;
	// no auto-correction is applied.
	ExpenseRatioNote string `json:"expense_ratio_note"`
}

// Line returns the line for a category, zero-valued when absent.
func (e *ExpenseAnalysis) Line(category string) ExpenseLineItem {
	for _, l := range e.Lines {
		if l.Category == category {
			return l
		}
	}
	return ExpenseLineItem{Category: category}
}

// IncomeAnalysis carries the T12 income line items.
type IncomeAnalysis struct {
	RentalIncome float64 `json:"rental_income"`
	OtherIncome  float64 `json:"other_income"`
}

// Result is the full T12 analysis handed to the summary builder.
type Result struct {
	Income   IncomeAnalysis  `json:"income"`
	Expenses ExpenseAnalysis `json:"expenses"`
	Flags    []models.Flag   `json:"flags"`
}
