package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"multifamily_underwriting/pkg/core/pipeline"
)

// =============================================================================
// FLAT EXPORT
// =============================================================================

// ExportRow is one spreadsheet row: the ledger, scenarios, and flags
// flattened into a single section-tagged shape.
type ExportRow struct {
	Section  string
	LineItem string
	Amount   float64
	Percent  float64
	Notes    string
}

// ExportRows flattens a run for spreadsheet handoff. Ledger lines come
// first in presentation order, then scenarios, then flags.
func ExportRows(res *pipeline.Result) []ExportRow {
	var rows []ExportRow
	if res == nil {
		return rows
	}

	if res.Summary != nil {
		for _, line := range res.Summary.Lines {
			rows = append(rows, ExportRow{
				Section:  line.Category,
				LineItem: line.LineItem,
				Amount:   line.Amount,
				Percent:  line.PercentEGI,
				Notes:    line.Notes,
			})
		}
	}

	for _, s := range res.Scenarios {
		rows = append(rows, ExportRow{
			Section:  "loan",
			LineItem: s.Label(),
			Amount:   s.LoanAmount,
			Percent:  s.LTV * 100,
			Notes: fmt.Sprintf("DSCR %.2fx, rate %.2f%%, %s binding",
				s.DSCR, s.InterestRate, s.BindingConstraint),
		})
	}

	for _, f := range res.Flags {
		rows = append(rows, ExportRow{
			Section:  "flag",
			LineItem: f.Type,
			Notes:    fmt.Sprintf("[%s] %s", f.Severity, f.Message),
		})
	}
	return rows
}

// WriteCSV writes the flattened run to w with a header record.
func WriteCSV(w io.Writer, res *pipeline.Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"section", "line_item", "amount", "percent_egi", "notes"}); err != nil {
		return err
	}
	for _, row := range ExportRows(res) {
		record := []string{
			row.Section,
			row.LineItem,
			fmt.Sprintf("%.2f", row.Amount),
			fmt.Sprintf("%.2f", row.Percent),
			row.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
