// Package underwrite exposes the underwriting pipeline over HTTP.
package underwrite

import (
	"encoding/json"
	"fmt"
	"net/http"

	"multifamily_underwriting/pkg/core/loan"
	"multifamily_underwriting/pkg/core/pipeline"
	"multifamily_underwriting/pkg/core/report"
	"multifamily_underwriting/pkg/core/store"
	"multifamily_underwriting/pkg/models"
)

// Handler holds dependencies for the underwriting endpoints. Repo may be
// nil; GET endpoints then return 503.
type Handler struct {
	Orchestrator *pipeline.Orchestrator
	Repo         store.UnderwritingRepository
}

// NewHandler creates a new underwriting handler.
func NewHandler(orch *pipeline.Orchestrator, repo store.UnderwritingRepository) *Handler {
	return &Handler{Orchestrator: orch, Repo: repo}
}

// DocumentRequest is one uploaded document in the request body.
type DocumentRequest struct {
	Name    string `json:"name"`
	Format  string `json:"format,omitempty"` // json, html, csv; sniffed when empty
	Content string `json:"content"`
}

// UnderwriteRequest is the full request body for a run.
type UnderwriteRequest struct {
	Property       models.PropertyInfo `json:"property"`
	Documents      []DocumentRequest   `json:"documents"`
	CapRate        float64             `json:"cap_rate,omitempty"`
	PropertyValue  float64             `json:"property_value,omitempty"`
	TreasuryTerm   string              `json:"treasury_term,omitempty"`
	StepDownPrepay bool                `json:"step_down_prepay,omitempty"`
}

// HandleUnderwrite runs the full pipeline for an uploaded document set.
func (h *Handler) HandleUnderwrite(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UnderwriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		http.Error(w, "no documents provided", http.StatusBadRequest)
		return
	}

	docs := make([]pipeline.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, pipeline.Document{
			Name:    d.Name,
			Format:  pipeline.Format(d.Format),
			Content: []byte(d.Content),
		})
	}

	fmt.Printf("[UNDERWRITE] Request: %s (%d documents)\n", req.Property.PropertyName, len(docs))

	res, err := h.Orchestrator.Run(r.Context(), req.Property, docs, pipeline.Options{
		CapRate:        req.CapRate,
		PropertyValue:  req.PropertyValue,
		TreasuryTerm:   loan.TreasuryTerm(req.TreasuryTerm),
		StepDownPrepay: req.StepDownPrepay,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("underwriting failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// HandleGetRun returns a persisted run by id: GET /api/underwrite/run?id=...
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if h.Repo == nil {
		http.Error(w, "persistence not configured", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("id")
	if runID == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}

	record, err := h.Repo.Load(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// HandleReport renders a persisted run as markdown:
// GET /api/underwrite/report?id=...
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if h.Repo == nil {
		http.Error(w, "persistence not configured", http.StatusServiceUnavailable)
		return
	}

	runID := r.URL.Query().Get("id")
	if runID == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}

	record, err := h.Repo.Load(r.Context(), runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	md, err := report.RenderMarkdown(&pipeline.Result{
		RunID:     record.RunID,
		Property:  record.Property,
		RentRoll:  record.RentRoll,
		T12:       record.T12,
		Summary:   record.Summary,
		Scenarios: record.Scenarios,
		Flags:     record.Flags,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("report rendering failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, md)
}
