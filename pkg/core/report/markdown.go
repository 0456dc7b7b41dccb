// Package report renders a completed underwriting run as a markdown
// memorandum and as flat export rows for spreadsheet handoff.
package report

import (
	"fmt"
	"strings"

	"multifamily_underwriting/pkg/core/pipeline"
	"multifamily_underwriting/pkg/core/utils"
)

// =============================================================================
// MARKDOWN REPORT
// =============================================================================

// RenderMarkdown builds the underwriting memorandum for a run. The output
// is validated with goldmark before being returned; a render that fails
// validation is a bug, not an input problem.
func RenderMarkdown(res *pipeline.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("nil result")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Underwriting Summary: %s\n\n", orDefault(res.Property.PropertyName, "Unnamed Property"))
	fmt.Fprintf(&b, "Run `%s`\n\n", res.RunID)
	fmt.Fprintf(&b, "- Units: %d\n", res.Property.UnitCount)
	fmt.Fprintf(&b, "- Property age: %d years\n", res.Property.PropertyAge)
	fmt.Fprintf(&b, "- Transaction: %s\n\n", res.Property.TransactionType)

	if res.RentRoll != nil {
		b.WriteString("## Rent Roll\n\n")
		fmt.Fprintf(&b, "- Occupancy: %d of %d units (%.1f%%)\n",
			res.RentRoll.OccupiedUnits, res.RentRoll.TotalUnits, res.RentRoll.OccupancyRate())
		fmt.Fprintf(&b, "- Gross potential income: $%.0f/mo ($%.0f/yr)\n\n",
			res.RentRoll.GrossPotentialIncome, res.RentRoll.AnnualGPI)
	}

	if res.Summary != nil {
		b.WriteString("## Pro Forma\n\n")
		b.WriteString("| Line Item | Amount | % EGI | Notes |\n")
		b.WriteString("|---|---:|---:|---|\n")
		for _, line := range res.Summary.Lines {
			item := line.LineItem
			if line.IsTotal {
				item = "**" + item + "**"
			}
			fmt.Fprintf(&b, "| %s | $%.0f | %.1f%% | %s |\n",
				item, line.Amount, line.PercentEGI, escapePipes(line.Notes))
		}
		b.WriteString("\n")
		if res.T12 != nil && res.T12.Expenses.ExpenseRatioNote != "" {
			fmt.Fprintf(&b, "%s\n\n", res.T12.Expenses.ExpenseRatioNote)
		}
	}

	if len(res.Scenarios) > 0 {
		b.WriteString("## Loan Scenarios\n\n")
		b.WriteString("| Program | Loan Amount | LTV | DSCR | Rate | Binding |\n")
		b.WriteString("|---|---:|---:|---:|---:|---|\n")
		for _, s := range res.Scenarios {
			fmt.Fprintf(&b, "| %s | $%.0f | %.1f%% | %.2fx | %.2f%% | %s |\n",
				s.Label(), s.LoanAmount, s.LTV*100, s.DSCR, s.InterestRate, s.BindingConstraint)
		}
		b.WriteString("\n")
	}

	if len(res.Flags) > 0 {
		b.WriteString("## Flags\n\n")
		for _, f := range res.Flags {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", f.Type, f.Severity, f.Message)
		}
		b.WriteString("\n")
	}

	out := utils.CleanMarkdown(b.String())
	if !utils.ValidateMarkdown(out) {
		return "", fmt.Errorf("rendered report failed markdown validation")
	}
	return out, nil
}

// escapePipes keeps rationale text from breaking table cells.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
