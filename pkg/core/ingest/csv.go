package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"multifamily_underwriting/pkg/core/table"
)

// =============================================================================
// CSV EXTRACTION
// =============================================================================

// ParseCSV reads a CSV export into a single raw table. The first record is
// the header row. Ragged records are tolerated; property-management exports
// frequently drop trailing cells.
func ParseCSV(r io.Reader) (ExtractedTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return ExtractedTable{}, fmt.Errorf("csv read failed: %w", err)
	}
	if len(records) < 2 {
		return ExtractedTable{}, fmt.Errorf("csv has no data rows")
	}

	return ExtractedTable{
		Table: table.RawTable{Headers: records[0], Rows: records[1:]},
	}, nil
}
