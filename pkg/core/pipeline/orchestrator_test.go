package pipeline

import (
	"context"
	"math"
	"testing"

	"multifamily_underwriting/pkg/core/config"
	"multifamily_underwriting/pkg/core/store"
	"multifamily_underwriting/pkg/core/t12"
	"multifamily_underwriting/pkg/models"
)

// --- Mocks ---

type MockRepository struct {
	SaveFunc func(ctx context.Context, record *store.UnderwritingRecord) error
	saved    []*store.UnderwritingRecord
}

func (m *MockRepository) Save(ctx context.Context, record *store.UnderwritingRecord) error {
	m.saved = append(m.saved, record)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, record)
	}
	return nil
}

func (m *MockRepository) Load(ctx context.Context, runID string) (*store.UnderwritingRecord, error) {
	for _, r := range m.saved {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, context.Canceled
}

func (m *MockRepository) ListByProperty(ctx context.Context, propertyName string, limit int) ([]store.UnderwritingRecord, error) {
	return nil, nil
}

// --- Fixtures ---

const rentRollJSON = `{
	"tables": [{
		"title": "Rent Roll",
		"headers": ["Unit", "Unit Type", "Monthly Rent", "Status", "Sqft"],
		"rows": [
			["101", "1BR", "1000", "Occupied", "650"],
			["102", "1BR", "1100", "Occupied", "650"],
			["103", "1BR", "0", "Vacant", "650"],
			["104", "2BR", "1500", "Occupied", "900"]
		]
	}]
}`

const t12CSV = `Line Item,Annual Amount
Property Taxes,5000
Insurance,2000
Total Other Income,1200
`

func testDocs() []Document {
	return []Document{
		{Name: "rentroll.json", Content: []byte(rentRollJSON)},
		{Name: "t12.csv", Content: []byte(t12CSV)},
	}
}

func testProperty() models.PropertyInfo {
	return models.PropertyInfo{
		PropertyName:    "Maple Court",
		UnitCount:       4,
		PropertyAge:     25,
		TransactionType: models.TransactionRefinance,
	}
}

// --- Tests ---

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		content string
		want    Format
	}{
		{`{"tables": []}`, FormatJSON},
		{`  [1, 2]`, FormatJSON},
		{`<html><table></table></html>`, FormatHTML},
		{"Unit,Rent\n101,1200\n", FormatCSV},
	}
	for _, c := range cases {
		if got := DetectFormat([]byte(c.content)); got != c.want {
			t.Errorf("DetectFormat(%q) = %s, want %s", c.content, got, c.want)
		}
	}
}

func TestRunFullPipeline(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	repo := &MockRepository{}
	o.SetRepository(repo)

	res, err := o.Run(context.Background(), testProperty(), testDocs(), Options{CapRate: 0.06})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if res.RunID == "" {
		t.Error("missing run id")
	}
	if res.RentRoll == nil {
		t.Fatal("rent roll not analyzed")
	}
	if res.RentRoll.TotalUnits != 4 || res.RentRoll.OccupiedUnits != 3 {
		t.Errorf("unit counts = %d/%d, want 4/3", res.RentRoll.TotalUnits, res.RentRoll.OccupiedUnits)
	}
	// Occupied income 3600 plus unit 103 imputed at the 1BR average 1050.
	if math.Abs(res.RentRoll.GrossPotentialIncome-4650) > 0.01 {
		t.Errorf("monthly GPI = %f, want 4650", res.RentRoll.GrossPotentialIncome)
	}

	if res.T12 == nil {
		t.Fatal("t12 not analyzed")
	}
	if math.Abs(res.T12.Income.OtherIncome-1200) > 0.01 {
		t.Errorf("other income = %f, want 1200", res.T12.Income.OtherIncome)
	}

	if res.Summary == nil {
		t.Fatal("summary not built")
	}
	// Ledger identity: NOI = EGI - total expenses.
	if math.Abs(res.Summary.NOI-(res.Summary.EGI-res.Summary.TotalExpenses)) > 0.01 {
		t.Errorf("NOI identity broken: NOI=%f EGI=%f TOE=%f",
			res.Summary.NOI, res.Summary.EGI, res.Summary.TotalExpenses)
	}

	// A 4-unit property sizes below every program minimum.
	if len(res.Scenarios) != 0 {
		t.Errorf("expected no qualifying scenarios, got %d", len(res.Scenarios))
	}

	// Persistence was attempted with the same run id.
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(repo.saved))
	}
	if repo.saved[0].RunID != res.RunID {
		t.Errorf("saved run id %s != result run id %s", repo.saved[0].RunID, res.RunID)
	}
	if repo.saved[0].Summary == nil {
		t.Error("saved record missing summary")
	}
}

func TestRunWithoutLoanBasisSkipsSizing(t *testing.T) {
	o := NewOrchestrator(nil, nil)

	res, err := o.Run(context.Background(), testProperty(), testDocs(), Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Scenarios != nil {
		t.Errorf("expected no sizing without cap rate or value, got %d scenarios", len(res.Scenarios))
	}
}

func TestRunRequiresUsableTable(t *testing.T) {
	o := NewOrchestrator(nil, nil)

	docs := []Document{{Name: "notes.csv", Content: []byte("not,a,statement\n1,2,3\n")}}
	if _, err := o.Run(context.Background(), testProperty(), docs, Options{}); err == nil {
		t.Error("expected error when no document classifies")
	}
}

func TestRunUsesDocumentCache(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	cache := store.NewDocumentCache(nil, t.TempDir())
	o.SetDocumentCache(cache)

	ctx := context.Background()
	if _, err := o.Run(ctx, testProperty(), testDocs(), Options{}); err != nil {
		t.Fatalf("first run error: %v", err)
	}

	// Both documents are now cached by content hash.
	for _, doc := range testDocs() {
		if !cache.Exists(ctx, store.HashContent(doc.Content)) {
			t.Errorf("document %s not cached", doc.Name)
		}
	}

	// Second run hits the cache and still produces the same analysis.
	res, err := o.Run(ctx, testProperty(), testDocs(), Options{})
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if res.RentRoll == nil || res.RentRoll.TotalUnits != 4 {
		t.Error("cached run produced a different rent roll analysis")
	}
}

func TestRunUsesConfiguredCategoryRules(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.ExpenseItems = []t12.CategoryRule{
		{Category: t12.CatInsurance, Keywords: []string{"hazard coverage"}},
	}
	o := NewOrchestrator(cfg, nil)

	docs := []Document{{Name: "t12.csv", Content: []byte("Line Item,Annual Amount\nHazard Coverage,20000\n")}}
	res, err := o.Run(context.Background(), testProperty(), docs, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.T12 == nil {
		t.Fatal("t12 not analyzed")
	}
	if got := res.T12.Expenses.Line(t12.CatInsurance).Actual; got != 20_000 {
		t.Errorf("insurance actual = %.0f, want 20000 via configured keyword", got)
	}
}

func TestRunDegradedT12Only(t *testing.T) {
	o := NewOrchestrator(nil, nil)

	docs := []Document{{Name: "t12.csv", Content: []byte(t12CSV)}}
	res, err := o.Run(context.Background(), testProperty(), docs, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.RentRoll != nil {
		t.Error("no rent roll document should mean no rent roll analysis")
	}
	if res.Summary == nil {
		t.Fatal("summary should still build from T12 alone")
	}
	// Without a rent roll, GPI is zero and the ledger goes negative.
	if res.Summary.GPI != 0 {
		t.Errorf("GPI = %f, want 0", res.Summary.GPI)
	}
}
