// Package table provides the normalized table abstraction consumed by the
// rent roll and T12 analyzers. Extraction tools hand us loosely structured
// grids of strings; this package turns them into column-typed rows.
package table

import "math"

// =============================================================================
// TABLE STRUCTURES
// =============================================================================

// RawTable is the extraction collaborator's output: a header row plus data
// rows of string cells. Cells may be empty or garbled; nothing is trusted yet.
type RawTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Value is a single normalized cell. Num is NaN unless the cell sits in a
// coerced numeric column and parsed cleanly.
type Value struct {
	Text string
	Num  float64
}

// IsNumeric reports whether the cell carries a parsed number.
func (v Value) IsNumeric() bool {
	return !math.IsNaN(v.Num)
}

// Row maps semantic column names to cell values.
type Row map[string]Value

// NormalizedTable is an ordered sequence of rows keyed by semantic column
// names (e.g. "rent", "unit_type", "status"). Columns preserves detection
// order so renderers can reproduce the original layout.
type NormalizedTable struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether a semantic column was detected.
func (t *NormalizedTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Num returns the numeric value of a cell, NaN when absent or non-numeric.
func (r Row) Num(col string) float64 {
	v, ok := r[col]
	if !ok {
		return math.NaN()
	}
	return v.Num
}

// Text returns the raw text of a cell, empty when absent.
func (r Row) Text(col string) string {
	return r[col].Text
}
