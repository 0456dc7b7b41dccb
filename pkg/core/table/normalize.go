package table

import (
	"math"
	"strings"
)

// =============================================================================
// TABLE NORMALIZER
// =============================================================================

// Minimum share of populated cells a row needs to survive normalization.
// Multi-page extractions leave partial noise rows behind; anything under the
// threshold is treated as artifact rather than data.
const minRowFillRatio = 0.3

// Normalize cleans a raw extracted table into a column-typed structure:
//   - fully empty rows and columns are dropped
//   - repeated header rows (multi-page extraction artifacts) are removed
//   - rows with fewer than 30% of cells populated are dropped
//   - headers are renamed to semantic identifiers via the ordered rules
//   - cells in numeric columns are coerced (NaN on failure, never an error)
//
// Normalize is a pure function: the input table is never mutated and the
// result holds no references into it.
func Normalize(raw RawTable, rules []ColumnRule) *NormalizedTable {
	headers, rows := dropEmpty(raw.Headers, raw.Rows)
	rows = dropRepeatedHeaders(headers, rows)

	names := DetectColumns(headers, rules)
	numeric := numericColumns(rules)

	minFilled := int(float64(len(headers)) * minRowFillRatio)
	if minFilled < 1 {
		minFilled = 1
	}

	out := &NormalizedTable{Columns: names}
	for _, cells := range rows {
		filled := 0
		for _, c := range cells {
			if strings.TrimSpace(c) != "" {
				filled++
			}
		}
		if filled < minFilled {
			continue
		}

		row := make(Row, len(names))
		for i, name := range names {
			var text string
			if i < len(cells) {
				text = strings.TrimSpace(cells[i])
			}
			v := Value{Text: text, Num: math.NaN()}
			if numeric[name] {
				v.Num = CoerceAmount(text)
			}
			row[name] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func numericColumns(rules []ColumnRule) map[string]bool {
	m := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Numeric {
			m[r.Name] = true
		}
	}
	return m
}

// dropEmpty removes columns whose header and every cell are blank, and rows
// with no content at all.
func dropEmpty(headers []string, rows [][]string) ([]string, [][]string) {
	keepCol := make([]bool, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) != "" {
			keepCol[i] = true
		}
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if strings.TrimSpace(row[i]) != "" {
				keepCol[i] = true
			}
		}
	}

	var outHeaders []string
	for i, keep := range keepCol {
		if keep {
			outHeaders = append(outHeaders, headers[i])
		}
	}

	var outRows [][]string
	for _, row := range rows {
		empty := true
		cells := make([]string, 0, len(outHeaders))
		for i, keep := range keepCol {
			if !keep {
				continue
			}
			var c string
			if i < len(row) {
				c = row[i]
			}
			if strings.TrimSpace(c) != "" {
				empty = false
			}
			cells = append(cells, c)
		}
		if !empty {
			outRows = append(outRows, cells)
		}
	}
	return outHeaders, outRows
}

// dropRepeatedHeaders removes data rows that exactly duplicate the header row
// after case and whitespace folding.
func dropRepeatedHeaders(headers []string, rows [][]string) [][]string {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = foldCell(h)
	}

	var out [][]string
	for _, row := range rows {
		if isHeaderCopy(folded, row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func isHeaderCopy(folded []string, row []string) bool {
	if len(row) != len(folded) {
		return false
	}
	for i, c := range row {
		if foldCell(c) != folded[i] {
			return false
		}
	}
	return true
}

func foldCell(s string) string {
	return strings.ToLower(whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " "))
}
