// Package loan exposes the loan sizing engine directly, for quoting debt
// against an already-underwritten NOI without re-running the pipeline.
package loan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	coreloan "multifamily_underwriting/pkg/core/loan"
)

// Handler holds the program set and curve used for standalone sizing.
type Handler struct {
	Programs []coreloan.Constraints
	Curve    coreloan.TreasuryCurve
}

// NewHandler creates a new loan sizing handler.
func NewHandler(programs []coreloan.Constraints, curve coreloan.TreasuryCurve) *Handler {
	return &Handler{Programs: programs, Curve: curve}
}

// SizingRequest asks for scenarios against an NOI. Exactly one of CapRate
// or PropertyValue must be positive.
type SizingRequest struct {
	NOI            float64 `json:"noi"`
	CapRate        float64 `json:"cap_rate,omitempty"`
	PropertyValue  float64 `json:"property_value,omitempty"`
	TreasuryTerm   string  `json:"treasury_term,omitempty"`
	StepDownPrepay bool    `json:"step_down_prepay,omitempty"`
}

// SizingResponse returns the derived property state with the scenarios.
type SizingResponse struct {
	PropertyValue float64             `json:"property_value"`
	CapRate       float64             `json:"cap_rate"`
	Scenarios     []coreloan.Scenario `json:"scenarios"`
}

// HandleSizing sizes loans for a quoted NOI.
func (h *Handler) HandleSizing(w http.ResponseWriter, r *http.Request) {
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

	var req SizingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	engine := coreloan.NewEngine(h.Programs, h.Curve)
	if req.TreasuryTerm != "" {
		if err := engine.SetTreasuryTerm(coreloan.TreasuryTerm(req.TreasuryTerm)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var err error
	switch {
	case req.CapRate > 0:
		err = engine.SetPropertyByCapRate(req.NOI, req.CapRate)
	case req.PropertyValue > 0:
		err = engine.SetPropertyByValue(req.NOI, req.PropertyValue)
	default:
		http.Error(w, "cap_rate or property_value required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scenarios, err := engine.CalculateScenarios(req.StepDownPrepay)
	if err != nil {
		if errors.Is(err, coreloan.ErrInvalidPropertyState) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("sizing failed: %v", err), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[LOAN] Sized NOI $%.0f -> %d scenarios\n", req.NOI, len(scenarios))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SizingResponse{
		PropertyValue: engine.PropertyValue(),
		CapRate:       engine.CapRate(),
		Scenarios:     scenarios,
	})
}
