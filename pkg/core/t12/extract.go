package t12

import (
	"math"
	"strings"

	"multifamily_underwriting/pkg/core/table"
)

// =============================================================================
// LINE ITEM EXTRACTION
// =============================================================================

// CategoryRule binds a line-item category to the keywords that identify it
// in the description column. Rules are evaluated in order; within a rule the
// first matching row carrying a parsable amount wins, taking the first
// numeric cell after the description column.
type CategoryRule struct {
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultIncomeRules covers the income section of a T12.
func DefaultIncomeRules() []CategoryRule {
	return []CategoryRule{
		{Category: "rental_income", Keywords: []string{"rental income", "rent income", "rental revenue"}},
		{Category: "other_income", Keywords: []string{"other income", "misc income", "ancillary income"}},
	}
}

// DefaultExpenseRules covers the operating expense section.
func DefaultExpenseRules() []CategoryRule {
	return []CategoryRule{
		{Category: CatVacancy, Keywords: []string{"vacancy", "vacancy loss", "vacant"}},
		{Category: CatPropertyTaxes, Keywords: []string{"property tax", "real estate tax", "taxes"}},
		{Category: CatInsurance, Keywords: []string{"insurance"}},
		{Category: CatElectricity, Keywords: []string{"electric", "electricity"}},
		{Category: CatWater, Keywords: []string{"water"}},
		{Category: CatSewer, Keywords: []string{"sewer"}},
		{Category: CatTrash, Keywords: []string{"trash", "garbage"}},
		{Category: CatRepairsMaintenance, Keywords: []string{"repairs", "maintenance", "r&m", "repair & maintenance"}},
		{Category: CatPayroll, Keywords: []string{"payroll", "wages", "salary"}},
		{Category: CatAdminFees, Keywords: []string{"admin", "professional", "general admin", "office"}},
		{Category: CatManagementFee, Keywords: []string{"management", "mgmt"}},
	}
}

// ExtractItems scans the table for each category and returns the actual
// amounts found. The first column is treated as the description; the amount
// is the first cell after it that parses as a number, taken as a magnitude.
// Categories with no match are simply absent from the map.
func ExtractItems(t *table.NormalizedTable, rules []CategoryRule) map[string]float64 {
	items := make(map[string]float64)
	if t == nil || len(t.Columns) < 2 {
		return items
	}

	descCol := t.Columns[0]
	valueCols := t.Columns[1:]

	for _, rule := range rules {
	rowLoop:
		for _, row := range t.Rows {
			desc := strings.ToLower(row.Text(descCol))
			for _, kw := range rule.Keywords {
				if !strings.Contains(desc, kw) {
					continue
				}
				for _, col := range valueCols {
					v := table.CoerceAmount(row.Text(col))
					if !math.IsNaN(v) {
						items[rule.Category] = v
						break rowLoop
					}
				}
				// Section headers match keywords but carry no amount;
				// keep scanning rows for the detail line.
				continue rowLoop
			}
		}
	}
	return items
}
