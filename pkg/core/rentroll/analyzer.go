package rentroll

import (
	"fmt"
	"math"
	"strings"

	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/models"
)

// =============================================================================
// RENT ROLL ANALYZER
// =============================================================================

var (
	occupiedKeywords = []string{"occupied", "occ", "rented"}
	vacantKeywords   = []string{"vacant", "vac", "empty"}
)

// Units priced this far under their type average get flagged.
const underpricedThreshold = 0.7

// Analyze produces a rent roll analysis from a normalized table. It never
// fails: missing structure degrades the result and emits flags instead.
// Without a rent column every income field is zero and a high-severity flag
// reports that rent data is unavailable.
func Analyze(t *table.NormalizedTable) *Analysis {
	a := &Analysis{ByUnitType: make(map[string]UnitTypeStats)}

	if t == nil || len(t.Rows) == 0 {
		a.Flags = append(a.Flags, models.Flag{
			Type:     "empty_rent_roll",
			Severity: models.SeverityHigh,
			Message:  "Rent roll contains no usable rows",
		})
		return a
	}

	hasRent := t.HasColumn(table.ColRent)
	hasStatus := t.HasColumn(table.ColStatus)
	hasSqft := t.HasColumn(table.ColSqft)

	if !hasRent {
		a.TotalUnits = len(t.Rows)
		a.Flags = append(a.Flags, models.Flag{
			Type:     "missing_rent",
			Severity: models.SeverityHigh,
			Message:  "No rent column detected; income analysis unavailable",
			Action:   "Confirm rent roll format or supply rents by unit",
		})
		return a
	}

	// 1. Build unit records with occupancy classification.
	for _, row := range t.Rows {
		rec := UnitRecord{
			Unit:     row.Text(table.ColUnit),
			UnitType: row.Text(table.ColUnitType),
			Status:   row.Text(table.ColStatus),
			LeaseEnd: row.Text(table.ColLeaseEnd),
			Sqft:     row.Num(table.ColSqft),
			Rent:     row.Num(table.ColRent),
		}
		if math.IsNaN(rec.Rent) {
			rec.Rent = 0
		}
		if !hasSqft {
			rec.Sqft = math.NaN()
		}
		rec.Occupied = classifyOccupied(rec.Status, rec.Rent, hasStatus)
		a.Units = append(a.Units, rec)
	}

	a.TotalUnits = len(a.Units)
	for _, u := range a.Units {
		if u.Occupied {
			a.OccupiedUnits++
			a.CurrentMonthlyIncome += u.Rent
		}
	}
	a.VacantUnits = a.TotalUnits - a.OccupiedUnits

	// 2. Per-type statistics; occupied averages are the imputation base.
	a.ByUnitType = buildTypeStats(a.Units)

	// 3. Vacant income imputation: each vacant unit earns its type's average
	// occupied rent. A type with no occupied comparator contributes 0, a
	// known limitation carried over deliberately rather than patched with a
	// market-rent fallback.
	for _, u := range a.Units {
		if u.Occupied {
			continue
		}
		if stats, ok := a.ByUnitType[u.UnitType]; ok {
			a.VacantUnitIncome += stats.AvgOccupiedRent
		}
	}

	// 4. GPI.
	a.GrossPotentialIncome = a.CurrentMonthlyIncome + a.VacantUnitIncome
	a.AnnualGPI = a.GrossPotentialIncome * 12

	// 5. Underpriced units: strictly below 70% of the type average.
	a.Flags = append(a.Flags, flagUnderpriced(a.Units, a.ByUnitType)...)

	// 6. Data quality: square footage.
	if !hasSqft || anyMissingSqft(a.Units) {
		a.Flags = append(a.Flags, models.Flag{
			Type:     "missing_sqft",
			Severity: models.SeverityMedium,
			Message:  "Square footage data is missing or incomplete",
			Action:   "Request square footage by unit type",
		})
	}

	return a
}

// classifyOccupied applies status keywords first, then falls back to
// "rent > 0 means occupied" when no status column exists or nothing matched.
func classifyOccupied(status string, rent float64, hasStatus bool) bool {
	if hasStatus {
		s := strings.ToLower(status)
		for _, kw := range occupiedKeywords {
			if strings.Contains(s, kw) {
				return true
			}
		}
		for _, kw := range vacantKeywords {
			if strings.Contains(s, kw) {
				return false
			}
		}
	}
	return rent > 0
}

func buildTypeStats(units []UnitRecord) map[string]UnitTypeStats {
	type acc struct {
		count, occupied, rented int
		rentSum, occRentSum     float64
		sqftSum                 float64
		sqftCount               int
	}
	byType := make(map[string]*acc)

	for _, u := range units {
		st, ok := byType[u.UnitType]
		if !ok {
			st = &acc{}
			byType[u.UnitType] = st
		}
		st.count++
		if u.Rent > 0 {
			st.rentSum += u.Rent
			st.rented++
		}
		if u.Occupied {
			st.occupied++
			st.occRentSum += u.Rent
		}
		if !math.IsNaN(u.Sqft) && u.Sqft > 0 {
			st.sqftSum += u.Sqft
			st.sqftCount++
		}
	}

	out := make(map[string]UnitTypeStats, len(byType))
	for name, st := range byType {
		s := UnitTypeStats{
			UnitCount:     st.count,
			OccupiedCount: st.occupied,
			VacancyRate:   float64(st.count-st.occupied) / float64(st.count),
		}
		if st.rented > 0 {
			s.AvgRent = st.rentSum / float64(st.rented)
		}
		if st.occupied > 0 {
			s.AvgOccupiedRent = st.occRentSum / float64(st.occupied)
		}
		if st.sqftCount > 0 {
			s.AvgSqft = st.sqftSum / float64(st.sqftCount)
			if s.AvgSqft > 0 {
				s.RentPerSqft = s.AvgRent / s.AvgSqft
			}
		}
		out[name] = s
	}
	return out
}

func flagUnderpriced(units []UnitRecord, stats map[string]UnitTypeStats) []models.Flag {
	var flags []models.Flag
	for _, u := range units {
		st, ok := stats[u.UnitType]
		if !ok || st.AvgRent <= 0 || u.Rent <= 0 {
			continue
		}
		threshold := st.AvgRent * underpricedThreshold
		if u.Rent < threshold {
			percentUnder := (st.AvgRent - u.Rent) / st.AvgRent * 100
			flags = append(flags, models.Flag{
				Type:     "underpriced_unit",
				Severity: models.SeverityLow,
				Message: fmt.Sprintf("Unit %s (%s) is %.0f%% under type average ($%.0f vs $%.0f)",
					u.Unit, u.UnitType, percentUnder, u.Rent, st.AvgRent),
			})
		}
	}
	return flags
}

func anyMissingSqft(units []UnitRecord) bool {
	for _, u := range units {
		if math.IsNaN(u.Sqft) {
			return true
		}
	}
	return false
}
