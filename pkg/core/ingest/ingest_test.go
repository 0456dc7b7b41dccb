package ingest

import (
	"strings"
	"testing"
)

func TestParseJSONTablesEnvelope(t *testing.T) {
	payload := `{"tables": [{"title": "Rent Roll", "headers": ["Unit", "Rent"], "rows": [["101", 1200], ["102", "1,250"]]}]}`

	tables, err := ParseJSONTables(payload)
	if err != nil {
		t.Fatalf("ParseJSONTables error: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	tab := tables[0]
	if tab.Title != "Rent Roll" {
		t.Errorf("title = %q, want %q", tab.Title, "Rent Roll")
	}
	if len(tab.Table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tab.Table.Rows))
	}
	// Numeric cells are stringified without float noise.
	if tab.Table.Rows[0][1] != "1200" {
		t.Errorf("numeric cell = %q, want %q", tab.Table.Rows[0][1], "1200")
	}
	if tab.Table.Rows[1][1] != "1,250" {
		t.Errorf("string cell = %q, want %q", tab.Table.Rows[1][1], "1,250")
	}
}

func TestParseJSONTablesGarbled(t *testing.T) {
	// Single quotes, unquoted keys, trailing comma: repairable.
	payload := `{tables: [{'title': 'T12', 'headers': ['Line Item', 'Amount'], 'rows': [['Taxes', '50000'],]}]}`

	tables, err := ParseJSONTables(payload)
	if err != nil {
		t.Fatalf("ParseJSONTables error on garbled payload: %v", err)
	}
	if len(tables) != 1 || tables[0].Title != "T12" {
		t.Fatalf("unexpected result: %+v", tables)
	}
}

func TestParseJSONTablesRecords(t *testing.T) {
	payload := `[{"Unit": "101", "Rent": 1200, "Status": "Occupied"}, {"Unit": "102", "Rent": 0, "Status": "Vacant"}]`

	tables, err := ParseJSONTables(payload)
	if err != nil {
		t.Fatalf("ParseJSONTables error: %v", err)
	}
	tab := tables[0].Table
	if len(tab.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %v", tab.Headers)
	}
	// Headers are sorted; values must line up with their header.
	rentIdx := -1
	for i, h := range tab.Headers {
		if h == "Rent" {
			rentIdx = i
		}
	}
	if rentIdx < 0 {
		t.Fatal("missing Rent header")
	}
	if tab.Rows[0][rentIdx] != "1200" {
		t.Errorf("rent cell = %q, want %q", tab.Rows[0][rentIdx], "1200")
	}
}

func TestParseJSONTablesRejectsUnknownShape(t *testing.T) {
	if _, err := ParseJSONTables(`{"foo": 42}`); err == nil {
		t.Error("expected error for unrecognized payload shape")
	}
}

func TestParseHTMLTables(t *testing.T) {
	html := `
		<html><body>
		<p>Rent Roll - Maple Court Apartments</p>
		<table>
			<tr><th>Unit</th><th>Type</th><th colspan="2">Rent / Sqft</th></tr>
			<tr><td>101</td><td>1BR</td><td>$1,200</td><td>650</td></tr>
			<tr><td>102</td><td>2BR</td><td>$1,500</td><td>900</td></tr>
		</table>
		<table><tr><td>too small</td></tr></table>
		</body></html>`

	tables, err := ParseHTMLTables(html)
	if err != nil {
		t.Fatalf("ParseHTMLTables error: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	tab := tables[0]
	if !strings.Contains(tab.Title, "Rent Roll") {
		t.Errorf("title = %q, want rent roll context", tab.Title)
	}
	// colspan=2 expands to two header cells, matching the data rows.
	if len(tab.Table.Headers) != 4 {
		t.Errorf("headers = %v, want 4 cells", tab.Table.Headers)
	}
	if len(tab.Table.Rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(tab.Table.Rows))
	}
}

func TestParseCSV(t *testing.T) {
	csv := "Unit,Rent,Status\n101,1200,Occupied\n102,0\n"

	tab, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV error: %v", err)
	}
	if len(tab.Table.Headers) != 3 {
		t.Errorf("headers = %v, want 3", tab.Table.Headers)
	}
	// Ragged trailing row survives.
	if len(tab.Table.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(tab.Table.Rows))
	}

	if _, err := ParseCSV(strings.NewReader("only,header\n")); err == nil {
		t.Error("expected error for csv without data rows")
	}
}

func TestExtractedTableText(t *testing.T) {
	payload := `{"tables": [{"title": "Rent Roll", "headers": ["Unit", "Monthly Rent"], "rows": [["101", "1200"]]}]}`
	tables, err := ParseJSONTables(payload)
	if err != nil {
		t.Fatalf("ParseJSONTables error: %v", err)
	}

	text := tables[0].Text()
	if !strings.Contains(text, "rent roll") || !strings.Contains(text, "monthly rent") {
		t.Errorf("flattened text missing expected content: %q", text)
	}
}
