package config

import (
	"os"
	"path/filepath"
	"testing"

	"multifamily_underwriting/pkg/core/loan"
	"multifamily_underwriting/pkg/models"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.RentRollColumnRules()) == 0 {
		t.Error("default rent roll rules missing")
	}
	if len(cfg.ExpenseRules()) == 0 {
		t.Error("default expense rules missing")
	}

	info := cfg.PropertyInfo()
	if info.UnitCount != 1 || info.PropertyAge != 25 {
		t.Errorf("property defaults = %+v", info)
	}
	if info.TransactionType != models.TransactionRefinance {
		t.Errorf("transaction type = %s, want refinance", info.TransactionType)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
server:
  port: 9090
property:
  unit_count: 120
  property_age: 8
  transaction_type: acquisition
rules:
  rent_roll_columns:
    - name: unit
      keywords: ["apt"]
treasury:
  10Y: 4.10
  20Y: 4.50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}

	info := cfg.PropertyInfo()
	if info.UnitCount != 120 || info.PropertyAge != 8 {
		t.Errorf("property = %+v", info)
	}
	if info.TransactionType != models.TransactionAcquisition {
		t.Errorf("transaction type = %s, want acquisition", info.TransactionType)
	}

	rules := cfg.RentRollColumnRules()
	if len(rules) != 1 || rules[0].Name != "unit" {
		t.Errorf("rent roll rules = %+v", rules)
	}
	// Unconfigured sections keep their defaults.
	if len(cfg.T12ColumnRules()) == 0 {
		t.Error("t12 rules should fall back to defaults")
	}

	curve := cfg.TreasuryCurve()
	rate, err := curve.Rate(loan.Term15Y)
	if err != nil {
		t.Fatalf("Rate(15Y) error: %v", err)
	}
	// 15Y = (4.10 + 4.50) / 2 = 4.30 off the configured curve.
	if rate != 4.30 {
		t.Errorf("15Y rate = %f, want 4.30", rate)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeTempFile(t, "bad.yaml", "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadProgramsHjson(t *testing.T) {
	// Hjson: comments and unquoted keys are allowed.
	path := writeTempFile(t, "programs.hjson", `
{
  # regional bank bridge program
  programs: [
    {
      program: debt_fund
      max_ltv: 0.8
      min_dscr: 0.95
      amortization_years: 25
      base_spread_bps: 175
      min_loan_amount: 10000000
    }
  ]
}
`)

	programs, err := LoadPrograms(path)
	if err != nil {
		t.Fatalf("LoadPrograms error: %v", err)
	}
	if len(programs) != 1 {
		t.Fatalf("expected 1 program, got %d", len(programs))
	}
	p := programs[0]
	if p.Program != loan.ProgramDebtFund || p.BaseSpreadBps != 175 {
		t.Errorf("program = %+v", p)
	}
}

func TestLoadProgramsValidation(t *testing.T) {
	empty := writeTempFile(t, "empty.hjson", `{programs: []}`)
	if _, err := LoadPrograms(empty); err == nil {
		t.Error("expected error for empty programs file")
	}

	badLTV := writeTempFile(t, "bad.hjson", `{programs: [{program: cmbs, max_ltv: 1.5, min_dscr: 1.25}]}`)
	if _, err := LoadPrograms(badLTV); err == nil {
		t.Error("expected error for out-of-range LTV")
	}
}

func TestProgramsOrDefault(t *testing.T) {
	programs, err := ProgramsOrDefault("/nonexistent/programs.hjson")
	if err != nil {
		t.Fatalf("ProgramsOrDefault error: %v", err)
	}
	if len(programs) != 3 {
		t.Errorf("expected 3 default programs, got %d", len(programs))
	}
}
