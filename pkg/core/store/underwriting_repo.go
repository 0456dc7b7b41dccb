package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"multifamily_underwriting/pkg/core/loan"
	"multifamily_underwriting/pkg/core/rentroll"
	"multifamily_underwriting/pkg/core/summary"
	"multifamily_underwriting/pkg/core/t12"
	"multifamily_underwriting/pkg/models"
)

// UnderwritingRecord is one persisted underwriting run: the property, the
// analyzer outputs, the summary ledger, and the sized loan scenarios.
type UnderwritingRecord struct {
	RunID     string              `json:"run_id"`
	Property  models.PropertyInfo `json:"property"`
	RentRoll  *rentroll.Analysis  `json:"rent_roll,omitempty"`
	T12       *t12.Result         `json:"t12,omitempty"`
	Summary   *summary.Result     `json:"summary,omitempty"`
	Scenarios []loan.Scenario     `json:"scenarios,omitempty"`
	Flags     []models.Flag       `json:"flags,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// UnderwritingRepository abstracts run persistence so tests and the CLI can
// inject a memory-backed implementation.
type UnderwritingRepository interface {
	Save(ctx context.Context, record *UnderwritingRecord) error
	Load(ctx context.Context, runID string) (*UnderwritingRecord, error)
	ListByProperty(ctx context.Context, propertyName string, limit int) ([]UnderwritingRecord, error)
}

// UnderwritingRepo is the Postgres implementation.
//
// Schema assumption (migrations managed elsewhere):
//
//	CREATE TABLE IF NOT EXISTS underwriting_runs (
//	  run_id UUID PRIMARY KEY,
//	  property_name TEXT,
//	  transaction_type TEXT,
//	  noi DOUBLE PRECISION,
//	  result_json JSONB,
//	  created_at TIMESTAMPTZ,
//	  updated_at TIMESTAMPTZ
//	);
//
//	CREATE TABLE IF NOT EXISTS underwriting_lines (
//	  run_id UUID REFERENCES underwriting_runs(run_id) ON DELETE CASCADE,
//	  position INT,
//	  line_item TEXT,
//	  category TEXT,
//	  amount DOUBLE PRECISION,
//	  percent_egi DOUBLE PRECISION,
//	  notes TEXT,
//	  is_total BOOLEAN,
//	  is_override BOOLEAN,
//	  PRIMARY KEY (run_id, position)
//	);
type UnderwritingRepo struct{}

// NewUnderwritingRepo creates a new repository instance.
func NewUnderwritingRepo() *UnderwritingRepo {
	return &UnderwritingRepo{}
}

// Save upserts the full run as a JSONB blob, plus the summary ledger as
// normalized rows so SQL reporting can query individual line items.
func (r *UnderwritingRepo) Save(ctx context.Context, record *UnderwritingRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	noi := 0.0
	if record.Summary != nil {
		noi = record.Summary.NOI
	}

	query := `
		INSERT INTO underwriting_runs (run_id, property_name, transaction_type, noi, result_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (run_id)
		DO UPDATE SET
			property_name = EXCLUDED.property_name,
			transaction_type = EXCLUDED.transaction_type,
			noi = EXCLUDED.noi,
			result_json = EXCLUDED.result_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query,
		record.RunID, record.Property.PropertyName, string(record.Property.TransactionType),
		noi, jsonData, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if record.Summary != nil {
		if err := r.saveLines(ctx, record.RunID, record.Summary); err != nil {
			fmt.Printf("Warning: failed to save summary lines for %s: %v\n", record.RunID, err)
		}
	}
	return nil
}

// saveLines replaces the normalized ledger rows for a run.
func (r *UnderwritingRepo) saveLines(ctx context.Context, runID string, s *summary.Result) error {
	pool := GetPool()

	_, err := pool.Exec(ctx, "DELETE FROM underwriting_lines WHERE run_id = $1", runID)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO underwriting_lines (
			run_id, position, line_item, category, amount,
			percent_egi, notes, is_total, is_override
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for i, line := range s.Lines {
		_, err := pool.Exec(ctx, query,
			runID, i, line.LineItem, line.Category, line.Amount,
			line.PercentEGI, line.Notes, line.IsTotal, line.IsOverride,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Load retrieves one run by ID.
func (r *UnderwritingRepo) Load(ctx context.Context, runID string) (*UnderwritingRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT result_json FROM underwriting_runs WHERE run_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no run found for id %s", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var record UnderwritingRecord
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &record, nil
}

// ListByProperty returns the most recent runs for a property.
func (r *UnderwritingRepo) ListByProperty(ctx context.Context, propertyName string, limit int) ([]UnderwritingRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT result_json FROM underwriting_runs
		WHERE property_name = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	rows, err := pool.Query(ctx, query, propertyName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []UnderwritingRecord
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, err
		}
		var record UnderwritingRecord
		if err := json.Unmarshal(jsonData, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
