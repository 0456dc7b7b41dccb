package classify

import (
	"testing"

	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/models"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultPatterns())

	cases := []struct {
		text string
		want models.DocumentType
	}{
		{"Rent Roll as of June 2026\nUnit Type\tMonthly Rent", models.DocRentRoll},
		{"Trailing 12 Operating Statement", models.DocT12},
		{"Offering Memorandum - Investment Summary", models.DocOfferingMemorandum},
		{"quarterly shareholder letter", models.DocUnknown},
	}
	for _, c2 := range cases {
		if got := c.Classify(c2.text); got != c2.want {
			t.Errorf("Classify(%q) = %q, want %q", c2.text, got, c2.want)
		}
	}
}

func TestQualityScorePrefersDenseTables(t *testing.T) {
	dense := table.RawTable{
		Headers: []string{"Unit", "Type", "Rent", "Status"},
		Rows: [][]string{
			{"101", "1BR", "1200", "Occupied"},
			{"102", "1BR", "1250", "Occupied"},
			{"103", "2BR", "1600", "Vacant"},
		},
	}
	sparse := table.RawTable{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"x", ""}, {"", ""}},
	}

	if QualityScore(dense) <= QualityScore(sparse) {
		t.Errorf("dense table should outscore sparse: %f vs %f",
			QualityScore(dense), QualityScore(sparse))
	}

	best := BestTable([]table.RawTable{sparse, dense})
	if len(best.Headers) != 4 {
		t.Errorf("BestTable picked the wrong candidate")
	}
}
