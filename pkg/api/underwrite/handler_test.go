package underwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"multifamily_underwriting/pkg/core/pipeline"
	"multifamily_underwriting/pkg/core/store"
)

type memoryRepo struct {
	records map[string]*store.UnderwritingRecord
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]*store.UnderwritingRecord)}
}

func (m *memoryRepo) Save(ctx context.Context, record *store.UnderwritingRecord) error {
	m.records[record.RunID] = record
	return nil
}

func (m *memoryRepo) Load(ctx context.Context, runID string) (*store.UnderwritingRecord, error) {
	if r, ok := m.records[runID]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("no run found for id %s", runID)
}

func (m *memoryRepo) ListByProperty(ctx context.Context, propertyName string, limit int) ([]store.UnderwritingRecord, error) {
	return nil, nil
}

func underwriteBody() string {
	req := UnderwriteRequest{
		Documents: []DocumentRequest{
			{
				Name: "rentroll.json",
				Content: `{"tables": [{"title": "Rent Roll",
					"headers": ["Unit", "Unit Type", "Monthly Rent", "Status"],
					"rows": [["101", "1BR", "1000", "Occupied"], ["102", "1BR", "0", "Vacant"]]}]}`,
			},
			{
				Name:    "t12.csv",
				Content: "Line Item,Amount\nProperty Taxes,4000\nInsurance,1500\n",
			},
		},
	}
	req.Property.PropertyName = "Maple Court"
	req.Property.UnitCount = 2
	body, _ := json.Marshal(req)
	return string(body)
}

func newTestHandler(repo store.UnderwritingRepository) *Handler {
	orch := pipeline.NewOrchestrator(nil, nil)
	if repo != nil {
		orch.SetRepository(repo)
	}
	return NewHandler(orch, repo)
}

func TestHandleUnderwrite(t *testing.T) {
	repo := newMemoryRepo()
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/underwrite/analyze", strings.NewReader(underwriteBody()))
	rec := httptest.NewRecorder()
	h.HandleUnderwrite(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
	if res.RentRoll == nil || res.RentRoll.TotalUnits != 2 {
		t.Errorf("rent roll = %+v", res.RentRoll)
	}
	if res.Summary == nil {
		t.Fatal("missing summary")
	}
	if _, ok := repo.records[res.RunID]; !ok {
		t.Error("run not persisted")
	}
}

func TestHandleUnderwriteRejectsEmpty(t *testing.T) {
	h := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/underwrite/analyze", strings.NewReader(`{"documents": []}`))
	rec := httptest.NewRecorder()
	h.HandleUnderwrite(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGetRunAndReport(t *testing.T) {
	repo := newMemoryRepo()
	h := newTestHandler(repo)

	// Seed a run through the underwrite endpoint.
	req := httptest.NewRequest(http.MethodPost, "/api/underwrite/analyze", strings.NewReader(underwriteBody()))
	rec := httptest.NewRecorder()
	h.HandleUnderwrite(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed run failed: %s", rec.Body.String())
	}
	var res pipeline.Result
	json.Unmarshal(rec.Body.Bytes(), &res)

	// Fetch it back.
	getReq := httptest.NewRequest(http.MethodGet, "/api/underwrite/run?id="+res.RunID, nil)
	getRec := httptest.NewRecorder()
	h.HandleGetRun(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get run status = %d", getRec.Code)
	}

	// Render the report.
	repReq := httptest.NewRequest(http.MethodGet, "/api/underwrite/report?id="+res.RunID, nil)
	repRec := httptest.NewRecorder()
	h.HandleReport(repRec, repReq)
	if repRec.Code != http.StatusOK {
		t.Fatalf("report status = %d, body = %s", repRec.Code, repRec.Body.String())
	}
	if !strings.Contains(repRec.Body.String(), "# Underwriting Summary: Maple Court") {
		t.Error("report missing property header")
	}

	// Unknown run id.
	missReq := httptest.NewRequest(http.MethodGet, "/api/underwrite/run?id=nope", nil)
	missRec := httptest.NewRecorder()
	h.HandleGetRun(missRec, missReq)
	if missRec.Code != http.StatusNotFound {
		t.Errorf("missing run status = %d, want 404", missRec.Code)
	}
}

func TestHandleGetRunWithoutRepo(t *testing.T) {
	h := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/underwrite/run?id=x", nil)
	rec := httptest.NewRecorder()
	h.HandleGetRun(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
