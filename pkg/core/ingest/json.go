// Package ingest adapts extraction payloads into raw tables. Upstream
// extraction tools hand us JSON of uneven quality, HTML exports, or plain
// CSV; every adapter ends in the same place: table.RawTable grids for the
// normalizer.
package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/core/utils"
)

// =============================================================================
// JSON TABLE PAYLOADS
// =============================================================================

// ExtractedTable is one table pulled from a source document, with whatever
// title context the source offered.
type ExtractedTable struct {
	Title string         `json:"title,omitempty"`
	Table table.RawTable `json:"table"`
}

// Text flattens the table into a single lowercase string for document
// classification.
func (e ExtractedTable) Text() string {
	var b strings.Builder
	b.WriteString(e.Title)
	b.WriteString(" ")
	b.WriteString(strings.Join(e.Table.Headers, " "))
	for _, row := range e.Table.Rows {
		b.WriteString(" ")
		b.WriteString(strings.Join(row, " "))
	}
	return strings.ToLower(b.String())
}

// Wire shapes. Cells arrive as strings or numbers depending on the
// extractor, so rows are decoded loosely and stringified.
type tablePayload struct {
	Title   string          `json:"title"`
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

type envelopePayload struct {
	Tables []tablePayload `json:"tables"`
}

// ParseJSONTables decodes a JSON extraction payload into tables. Accepted
// shapes, tried in order:
//  1. {"tables": [{"title", "headers", "rows"}, ...]}
//  2. a single {"headers", "rows"} object
//  3. a bare array of flat objects (keys become headers)
//
// Payloads are parsed leniently: malformed JSON goes through repair and an
// Hjson fallback before the shape is rejected.
func ParseJSONTables(input string) ([]ExtractedTable, error) {
	var envelope envelopePayload
	if _, err := utils.SmartParse(input, &envelope); err == nil && len(envelope.Tables) > 0 {
		out := make([]ExtractedTable, 0, len(envelope.Tables))
		for _, p := range envelope.Tables {
			out = append(out, payloadToTable(p))
		}
		return out, nil
	}

	var single tablePayload
	if _, err := utils.SmartParse(input, &single); err == nil && len(single.Headers) > 0 {
		return []ExtractedTable{payloadToTable(single)}, nil
	}

	var records []map[string]interface{}
	if _, err := utils.SmartParse(input, &records); err == nil && len(records) > 0 {
		return []ExtractedTable{recordsToTable(records)}, nil
	}

	return nil, fmt.Errorf("unrecognized table payload shape")
}

func payloadToTable(p tablePayload) ExtractedTable {
	rows := make([][]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		row := make([]string, len(r))
		for i, cell := range r {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}
	return ExtractedTable{
		Title: p.Title,
		Table: table.RawTable{Headers: p.Headers, Rows: rows},
	}
}

// recordsToTable converts an array of flat objects into a grid. JSON object
// keys are unordered, so headers come out sorted; column detection works off
// header names, not position.
func recordsToTable(records []map[string]interface{}) ExtractedTable {
	seen := make(map[string]bool)
	var headers []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := rec[h]; ok {
				row[i] = cellString(v)
			}
		}
		rows = append(rows, row)
	}
	return ExtractedTable{Table: table.RawTable{Headers: headers, Rows: rows}}
}

// cellString renders a decoded JSON value the way the extractor would have
// printed it. Whole-number floats lose the trailing ".000000" noise.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
