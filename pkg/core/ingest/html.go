package ingest

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"multifamily_underwriting/pkg/core/table"
)

// =============================================================================
// HTML TABLE EXTRACTION
// =============================================================================

// ParseHTMLTables extracts every table from an HTML document. Offering
// memorandum exports and property-management system reports both arrive as
// HTML; each <table> becomes one candidate grid. Tables with fewer than two
// rows carry no data and are dropped.
func ParseHTMLTables(html string) ([]ExtractedTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var tables []ExtractedTable
	doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		title := findTableTitle(sel)
		parsed := parseTable(sel)
		if parsed == nil {
			return
		}
		tables = append(tables, ExtractedTable{Title: title, Table: *parsed})
	})
	return tables, nil
}

// findTableTitle looks at the element preceding the table, then at a
// single-cell first row, for title context.
func findTableTitle(sel *goquery.Selection) string {
	if prev := sel.Prev(); prev.Length() > 0 {
		text := strings.TrimSpace(prev.Text())
		lower := strings.ToLower(text)
		if strings.Contains(lower, "rent roll") ||
			strings.Contains(lower, "t12") ||
			strings.Contains(lower, "trailing 12") ||
			strings.Contains(lower, "operating statement") ||
			strings.Contains(lower, "income") ||
			strings.Contains(lower, "unit mix") {
			return text
		}
	}

	firstRow := sel.Find("tr").First()
	if firstRow.Length() > 0 {
		cells := firstRow.Find("td, th")
		if cells.Length() == 1 {
			return strings.TrimSpace(cells.Text())
		}
	}
	return ""
}

// parseTable converts one <table> into a raw grid. The first row with more
// than one cell becomes the header row; colspans are expanded by repeating
// the cell text so columns stay aligned with the data rows below.
func parseTable(sel *goquery.Selection) *table.RawTable {
	rows := sel.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	var headers []string
	headerIndex := -1
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := rowCells(row)
		if len(cells) > 1 {
			headers = cells
			headerIndex = i
			return false
		}
		return true
	})
	if headerIndex < 0 {
		return nil
	}

	var data [][]string
	rows.Slice(headerIndex+1, rows.Length()).Each(func(i int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) == 0 {
			return
		}
		data = append(data, cells)
	})
	if len(data) == 0 {
		return nil
	}

	return &table.RawTable{Headers: headers, Rows: data}
}

// rowCells reads one <tr>, expanding colspan so cell counts line up.
func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Find("td, th").Each(func(j int, cell *goquery.Selection) {
		text := strings.TrimSpace(cell.Text())
		span := 1
		if attr, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(attr)); err == nil && n > 1 {
				span = n
			}
		}
		for k := 0; k < span; k++ {
			cells = append(cells, text)
		}
	})
	return cells
}
