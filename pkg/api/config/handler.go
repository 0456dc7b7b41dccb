// Package config exposes the engine's active configuration for inspection.
package config

import (
	"encoding/json"
	"net/http"

	coreconfig "multifamily_underwriting/pkg/core/config"
	"multifamily_underwriting/pkg/core/loan"
)

// Response describes the running configuration: which rule sets are active
// and what the pricing inputs look like.
type Response struct {
	Programs      []loan.Constraints            `json:"programs"`
	Treasury      map[loan.TreasuryTerm]float64 `json:"treasury"`
	RentRollRules []string                      `json:"rent_roll_columns"`
	T12Categories []string                      `json:"t12_categories"`
}

// Handler holds dependencies for config endpoints.
type Handler struct {
	Cfg      *coreconfig.Config
	Programs []loan.Constraints
}

// NewHandler creates a new config handler.
func NewHandler(cfg *coreconfig.Config, programs []loan.Constraints) *Handler {
	return &Handler{Cfg: cfg, Programs: programs}
}

// HandleConfig returns the active configuration.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// CORS for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	resp := Response{
		Programs: h.Programs,
		Treasury: h.Cfg.TreasuryCurve().Rates,
	}
	for _, rule := range h.Cfg.RentRollColumnRules() {
		resp.RentRollRules = append(resp.RentRollRules, rule.Name)
	}
	for _, rule := range h.Cfg.ExpenseRules() {
		resp.T12Categories = append(resp.T12Categories, rule.Category)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
