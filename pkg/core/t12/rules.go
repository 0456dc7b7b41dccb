package t12

import (
	"fmt"

	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/models"
)

// =============================================================================
// EXPENSE RULE SET
// =============================================================================

// Rule constants. Per-unit figures are annual dollars.
const (
	vacancyFloorRate   = 0.05  // 5% of annual GPI
	taxRefinanceUplift = 1.075 // +7.5% on refinance
	insuranceUplift    = 1.05
	utilityUplift      = 1.02
	perUnitCap         = 1500 // R&M and payroll cap
	adminFloor         = 1000 // flat
	adminPerUnitCap    = 400
	reservesPerUnit    = 250
	minExpenseRatio    = 0.28
)

// ageMinimum returns the age-based per-unit annual minimum used by the
// repairs & maintenance and payroll rules.
func ageMinimum(propertyAge int) float64 {
	switch {
	case propertyAge < 10:
		return 500
	case propertyAge < 20:
		return 600
	case propertyAge < 30:
		return 700
	case propertyAge < 40:
		return 800
	case propertyAge < 50:
		return 900
	default:
		return 1000
	}
}

// managementRate is tiered on annual GPI; boundaries are inclusive.
func managementRate(annualGPI float64) float64 {
	switch {
	case annualGPI <= 500_000:
		return 0.05
	case annualGPI <= 750_000:
		return 0.045
	case annualGPI <= 1_000_000:
		return 0.04
	case annualGPI <= 1_500_000:
		return 0.035
	case annualGPI <= 2_000_000:
		return 0.03
	default:
		return 0.025
	}
}

// Analyze extracts income and expense items from a normalized T12 table and
// applies the expense rule set. annualGPI comes from the rent roll analysis;
// when no rent roll is available callers pass 0 and the GPI-derived rules
// (vacancy floor, management fee) degrade to zero with their rationale
// intact. Nil rule slices fall back to the defaults. Analyze is a pure
// function of its inputs.
func Analyze(t *table.NormalizedTable, prop models.PropertyInfo, annualGPI float64, incomeRules, expenseRules []CategoryRule) *Result {
	prop = prop.WithDefaults()
	if incomeRules == nil {
		incomeRules = DefaultIncomeRules()
	}
	if expenseRules == nil {
		expenseRules = DefaultExpenseRules()
	}

	incomeItems := ExtractItems(t, incomeRules)
	expenseItems := ExtractItems(t, expenseRules)

	res := &Result{
		Income: IncomeAnalysis{
			RentalIncome: incomeItems["rental_income"],
			OtherIncome:  incomeItems["other_income"],
		},
	}
	if res.Income.OtherIncome == 0 {
		res.Flags = append(res.Flags, models.Flag{
			Type:     "missing_other_income",
			Severity: models.SeverityLow,
			Message:  "Other income missing from T12 - requires clarification",
		})
	}

	res.Expenses = ApplyExpenseRules(expenseItems, prop, annualGPI, res.Income.OtherIncome)
	return res
}

// ApplyExpenseRules runs the fixed-order rule set over extracted actuals.
// Every line carries a rationale embedding the actual and adjusted values.
func ApplyExpenseRules(actuals map[string]float64, prop models.PropertyInfo, annualGPI, otherIncome float64) ExpenseAnalysis {
	units := float64(prop.UnitCount)
	var out ExpenseAnalysis

	add := func(category string, actual, adjusted float64, rationale string) {
		out.Lines = append(out.Lines, ExpenseLineItem{
			Category:  category,
			Actual:    actual,
			Adjusted:  adjusted,
			Rationale: rationale,
		})
		out.TotalAdjusted += adjusted
	}

	// 1. Vacancy: greater of 5% of GPI and actuals.
	vacancyFloor := annualGPI * vacancyFloorRate
	actualVacancy := actuals[CatVacancy]
	vacancy := vacancyFloor
	if actualVacancy > vacancy {
		vacancy = actualVacancy
	}
	add(CatVacancy, actualVacancy, vacancy,
		fmt.Sprintf("Used $%.0f (5%% of GPI: $%.0f, actual: $%.0f)", vacancy, vacancyFloor, actualVacancy))

	// 2. Property taxes: refinance uplifts actuals 7.5%; acquisition keeps
	// actuals pending a millage-rate calculation that requires external
	// input and is deliberately not computed here.
	actualTaxes := actuals[CatPropertyTaxes]
	if prop.TransactionType == models.TransactionRefinance {
		add(CatPropertyTaxes, actualTaxes, actualTaxes*taxRefinanceUplift,
			fmt.Sprintf("Refinance: increased actual $%.0f by 7.5%% to $%.0f", actualTaxes, actualTaxes*taxRefinanceUplift))
	} else {
		add(CatPropertyTaxes, actualTaxes, actualTaxes,
			fmt.Sprintf("Acquisition: using actual $%.0f (millage rate calculation needed)", actualTaxes))
	}

	// 3. Insurance: +5%.
	actualIns := actuals[CatInsurance]
	add(CatInsurance, actualIns, actualIns*insuranceUplift,
		fmt.Sprintf("Increased actual $%.0f by 5%% to $%.0f", actualIns, actualIns*insuranceUplift))

	// 4. Utilities: +2% each. Spike removal is a known gap, not implemented.
	for _, cat := range []string{CatElectricity, CatWater, CatSewer, CatTrash} {
		actual := actuals[cat]
		add(cat, actual, actual*utilityUplift,
			fmt.Sprintf("Increased actual $%.0f by 2%% to $%.0f", actual, actual*utilityUplift))
	}

	// 5-6. Repairs & maintenance and payroll share the age-based clamp.
	minPerUnit := ageMinimum(prop.PropertyAge)
	for _, cat := range []string{CatRepairsMaintenance, CatPayroll} {
		actual := actuals[cat]
		floor := minPerUnit * units
		ceiling := perUnitCap * units
		switch {
		case actual < floor:
			add(cat, actual, floor,
				fmt.Sprintf("Raised actual $%.0f to $%.0f/unit minimum ($%.0f) for %dyr property",
					actual, minPerUnit, floor, prop.PropertyAge))
		case actual > ceiling:
			add(cat, actual, ceiling,
				fmt.Sprintf("Capped actual $%.0f at $%d/unit ($%.0f, excess $%.0f)",
					actual, perUnitCap, ceiling, actual-ceiling))
		default:
			add(cat, actual, actual,
				fmt.Sprintf("Used actual $%.0f (within $%.0f-$%.0f range)", actual, floor, ceiling))
		}
	}

	// 7. Admin/professional fees: $1,000 flat floor, $400/unit cap.
	actualAdmin := actuals[CatAdminFees]
	adminCap := adminPerUnitCap * units
	switch {
	case actualAdmin < adminFloor:
		add(CatAdminFees, actualAdmin, adminFloor,
			fmt.Sprintf("Raised actual $%.0f to $%d minimum", actualAdmin, adminFloor))
	case actualAdmin > adminCap:
		add(CatAdminFees, actualAdmin, adminCap,
			fmt.Sprintf("Capped actual $%.0f at $%d/unit ($%.0f)", actualAdmin, adminPerUnitCap, adminCap))
	default:
		add(CatAdminFees, actualAdmin, actualAdmin,
			fmt.Sprintf("Used actual $%.0f (within $%d-$%.0f range)", actualAdmin, adminFloor, adminCap))
	}

	// 8. Management fee: tiered rate on annual GPI, actuals ignored.
	rate := managementRate(annualGPI)
	add(CatManagementFee, actuals[CatManagementFee], annualGPI*rate,
		fmt.Sprintf("Applied %.1f%% rate to annual GPI of $%.0f (actual $%.0f ignored)",
			rate*100, annualGPI, actuals[CatManagementFee]))

	// 9. Replacement reserves: fixed per-unit allowance.
	add(CatReplacementReserves, actuals[CatReplacementReserves], reservesPerUnit*units,
		fmt.Sprintf("Applied $%d/unit for %d units", reservesPerUnit, prop.UnitCount))

	// 10. Expense ratio floor check. Advisory only; the shortfall is
	// reported, never auto-corrected.
	egi := annualGPI - vacancy + otherIncome
	if egi > 0 {
		ratio := out.TotalAdjusted / egi
		if ratio < minExpenseRatio {
			shortfall := egi*minExpenseRatio - out.TotalAdjusted
			out.ExpenseRatioNote = fmt.Sprintf("Expense ratio %.1f%% below 28%% minimum; shortfall $%.0f",
				ratio*100, shortfall)
		} else {
			out.ExpenseRatioNote = fmt.Sprintf("Expense ratio %.1f%% meets 28%% minimum", ratio*100)
		}
	}

	return out
}
