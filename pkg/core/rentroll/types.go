// Package rentroll analyzes normalized rent roll tables: occupancy,
// per-unit-type statistics, and gross potential income.
package rentroll

import "multifamily_underwriting/pkg/models"

// =============================================================================
// RENT ROLL ANALYSIS STRUCTURES
// =============================================================================

// UnitRecord is one unit of the rent roll after normalization.
type UnitRecord struct {
	Unit     string  `json:"unit"`
	UnitType string  `json:"unit_type"`
	Sqft     float64 `json:"sqft"` // NaN when not reported
	Rent     float64 `json:"rent"` // 0 when missing or unparseable
	Status   string  `json:"status"`
	LeaseEnd string  `json:"lease_end,omitempty"`
	Occupied bool    `json:"occupied"`
}

// UnitTypeStats aggregates units sharing a unit-type label.
type UnitTypeStats struct {
	UnitCount     int     `json:"unit_count"`
	OccupiedCount int     `json:"occupied_count"`
	VacancyRate   float64 `json:"vacancy_rate"`
	AvgRent       float64 `json:"avg_rent"` // mean over units with rent > 0
	// AvgOccupiedRent is the imputation comparator: mean rent over occupied
	// units of this type only. 0 when the type has no occupied units.
	AvgOccupiedRent float64 `json:"avg_occupied_rent"`
	AvgSqft         float64 `json:"avg_sqft,omitempty"`
	RentPerSqft     float64 `json:"rent_per_sqft,omitempty"`
}

// Analysis is the full rent roll result handed to the summary builder.
type Analysis struct {
	TotalUnits    int `json:"total_units"`
	OccupiedUnits int `json:"occupied_units"`
	VacantUnits   int `json:"vacant_units"`

	// Monthly figures. CurrentMonthlyIncome sums rent over occupied units;
	// VacantUnitIncome imputes each vacant unit at its type's average
	// occupied rent (0 with no occupied comparator).
	CurrentMonthlyIncome float64 `json:"current_monthly_income"`
	VacantUnitIncome     float64 `json:"vacant_unit_income"`

	GrossPotentialIncome float64 `json:"gross_potential_income"` // monthly
	AnnualGPI            float64 `json:"annual_gpi"`

	ByUnitType map[string]UnitTypeStats `json:"by_unit_type"`
	Units      []UnitRecord             `json:"units"`
	Flags      []models.Flag            `json:"flags"`
}

// OccupancyRate returns occupancy as a percentage of total units.
func (a *Analysis) OccupancyRate() float64 {
	if a.TotalUnits == 0 {
		return 0
	}
	return float64(a.OccupiedUnits) / float64(a.TotalUnits) * 100
}
