// Package summary assembles the ordered underwriting ledger and computes
// net operating income from the rent roll and T12 analyses.
package summary

import (
	"strings"

	"multifamily_underwriting/pkg/core/rentroll"
	"multifamily_underwriting/pkg/core/t12"
)

// =============================================================================
// UNDERWRITING SUMMARY
// =============================================================================

// Line categories.
const (
	CategoryIncome  = "INCOME"
	CategoryExpense = "EXPENSE"
	CategoryNOI     = "NOI"
)

// UnderwritingLine is one row of the summary ledger. Reporting consumes the
// slice read-only; the builder owns construction. Renderers rely on the
// ordering contract and on IsTotal to place section breaks (the sheet is
// cut immediately after the NOI line).
type UnderwritingLine struct {
	LineItem   string  `json:"line_item"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"` // signed: losses negative
	PercentEGI float64 `json:"percent_egi"`
	Notes      string  `json:"notes"`
	IsTotal    bool    `json:"is_total"`
	IsOverride bool    `json:"is_override"`
}

// Result bundles the ledger with the headline figures.
type Result struct {
	Lines         []UnderwritingLine `json:"lines"`
	GPI           float64            `json:"gross_potential_income"`
	EGI           float64            `json:"effective_gross_income"`
	TotalExpenses float64            `json:"total_expenses"`
	NOI           float64            `json:"net_operating_income"`
	// ExpenseRatio is total expenses over EGI, in percent; 0 when EGI <= 0.
	ExpenseRatio float64 `json:"expense_ratio"`
}

// Build produces the ordered ledger: GPI, vacancy loss, other income, EGI,
// the non-zero adjusted expense lines, total operating expenses, and NOI.
// Percent-of-EGI divides by EGI floored at 1 so a degenerate EGI never
// panics; callers must treat EGI <= 0 as a reportable case rather than read
// meaning into those percentages.
//
// Vacancy appears both as the income-section loss and inside total operating
// expenses. That mirrors the source rule set's arithmetic and is preserved
// as-is; NOI = EGI - total adjusted expenses by definition here.
func Build(rr *rentroll.Analysis, t *t12.Result) *Result {
	var gpi, otherIncome float64
	if rr != nil {
		gpi = rr.AnnualGPI
	}

	var expenses t12.ExpenseAnalysis
	if t != nil {
		otherIncome = t.Income.OtherIncome
		expenses = t.Expenses
	}

	vacancy := expenses.Line(t12.CatVacancy).Adjusted
	egi := gpi - vacancy + otherIncome
	totalExpenses := expenses.TotalAdjusted
	noi := egi - totalExpenses

	egiDivisor := egi
	if egiDivisor < 1 {
		egiDivisor = 1
	}

	res := &Result{GPI: gpi, EGI: egi, TotalExpenses: totalExpenses, NOI: noi}
	if egi > 0 {
		res.ExpenseRatio = totalExpenses / egi * 100
	}

	add := func(item, category string, amount float64, notes string, isTotal, isOverride bool) {
		res.Lines = append(res.Lines, UnderwritingLine{
			LineItem:   item,
			Category:   category,
			Amount:     amount,
			PercentEGI: amount / egiDivisor * 100,
			Notes:      notes,
			IsTotal:    isTotal,
			IsOverride: isOverride,
		})
	}

	// INCOME SECTION
	add("GROSS POTENTIAL INCOME", CategoryIncome, gpi,
		"Based on current rent roll with vacant units at type-average rents", false, false)
	add("Vacancy Loss", CategoryIncome, -vacancy,
		"Higher of 5% of GPI or T12 actuals", false, false)
	add("Other Income", CategoryIncome, otherIncome,
		"Used actual T12 totals for other income streams", false, false)
	add("EFFECTIVE GROSS INCOME", CategoryIncome, egi,
		"GPI minus vacancy loss plus other income", true, false)

	// EXPENSE SECTION: one line per non-zero adjusted category, rule order.
	for _, line := range expenses.Lines {
		if line.Adjusted <= 0 {
			continue
		}
		add(displayName(line.Category), CategoryExpense, line.Adjusted,
			line.Rationale, false, line.Adjusted != line.Actual)
	}

	add("TOTAL OPERATING EXPENSES", CategoryExpense, totalExpenses,
		"Total of all adjusted operating expenses", true, false)
	add("NET OPERATING INCOME", CategoryNOI, noi,
		"EGI minus total operating expenses", true, false)

	return res
}

// displayName turns a category key into its ledger label
// (e.g. "repairs_maintenance" -> "Repairs Maintenance").
func displayName(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
