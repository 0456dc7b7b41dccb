// Package pipeline orchestrates a full underwriting run: ingest the
// uploaded documents, classify and normalize their tables, run the rent
// roll and T12 analyzers, build the summary ledger, and size the debt.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"multifamily_underwriting/pkg/core/classify"
	"multifamily_underwriting/pkg/core/config"
	"multifamily_underwriting/pkg/core/ingest"
	"multifamily_underwriting/pkg/core/loan"
	"multifamily_underwriting/pkg/core/rentroll"
	"multifamily_underwriting/pkg/core/store"
	"multifamily_underwriting/pkg/core/summary"
	"multifamily_underwriting/pkg/core/t12"
	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/models"
)

// Format identifies a document's wire format.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
)

// Document is one uploaded source document.
type Document struct {
	Name    string
	Format  Format // empty means sniff from content
	Content []byte
}

// DetectFormat sniffs a document body. HTML and JSON have unambiguous lead
// bytes; everything else is treated as CSV.
func DetectFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))
	switch {
	case strings.HasPrefix(trimmed, "<"):
		return FormatHTML
	case strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
		return FormatJSON
	default:
		return FormatCSV
	}
}

// Options tunes a single run.
type Options struct {
	CapRate        float64           // value = NOI / CapRate when set
	PropertyValue  float64           // used directly when CapRate is 0
	TreasuryTerm   loan.TreasuryTerm // empty keeps the engine default
	StepDownPrepay bool
}

// Result is the aggregate output of one run.
type Result struct {
	RunID     string              `json:"run_id"`
	Property  models.PropertyInfo `json:"property"`
	RentRoll  *rentroll.Analysis  `json:"rent_roll,omitempty"`
	T12       *t12.Result         `json:"t12,omitempty"`
	Summary   *summary.Result     `json:"summary,omitempty"`
	Scenarios []loan.Scenario     `json:"scenarios,omitempty"`
	Flags     []models.Flag       `json:"flags"`
	Elapsed   time.Duration       `json:"elapsed"`
}

// Orchestrator wires the stages together. Repo and cache are optional; a
// nil repo skips persistence and a nil cache re-extracts every document.
type Orchestrator struct {
	cfg        *config.Config
	classifier *classify.Classifier
	programs   []loan.Constraints
	repo       store.UnderwritingRepository
	cache      *store.DocumentCache
}

// NewOrchestrator creates an orchestrator from runtime config. Passing nil
// config or programs selects the defaults.
func NewOrchestrator(cfg *config.Config, programs []loan.Constraints) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	if programs == nil {
		programs = loan.DefaultPrograms()
	}
	return &Orchestrator{
		cfg:        cfg,
		classifier: classify.NewClassifier(cfg.ClassifierPatterns()),
		programs:   programs,
	}
}

// SetRepository injects run persistence (e.g. for testing).
func (o *Orchestrator) SetRepository(repo store.UnderwritingRepository) {
	o.repo = repo
}

// SetDocumentCache injects the extraction cache.
func (o *Orchestrator) SetDocumentCache(cache *store.DocumentCache) {
	o.cache = cache
}

// Run executes the full pipeline for one property. Analyzer-level problems
// degrade into flags on the result; Run fails only when no document yields
// a usable table or loan sizing is requested on an unsizable property.
func (o *Orchestrator) Run(ctx context.Context, prop models.PropertyInfo, docs []Document, opts Options) (*Result, error) {
	start := time.Now()
	prop = prop.WithDefaults()

	res := &Result{
		RunID:    uuid.NewString(),
		Property: prop,
	}
	fmt.Printf("Starting underwriting run %s for %s (%d documents)...\n",
		res.RunID, prop.PropertyName, len(docs))

	// 1. Ingest and classify.
	var rentRollTable, t12Table *table.RawTable
	for _, doc := range docs {
		tables, docType, err := o.extract(ctx, doc)
		if err != nil {
			fmt.Printf("Warning: failed to extract %s: %v. Skipping.\n", doc.Name, err)
			continue
		}
		if len(tables) == 0 {
			continue
		}

		candidates := make([]table.RawTable, 0, len(tables))
		for _, t := range tables {
			candidates = append(candidates, t.Table)
		}
		best := classify.BestTable(candidates)

		fmt.Printf("Document %s classified as %s (%d tables)\n", doc.Name, docType, len(tables))
		switch docType {
		case models.DocRentRoll:
			if rentRollTable == nil {
				rentRollTable = &best
			}
		case models.DocT12:
			if t12Table == nil {
				t12Table = &best
			}
		default:
			res.Flags = append(res.Flags, models.Flag{
				Type:     "unclassified_document",
				Severity: models.SeverityLow,
				Message:  fmt.Sprintf("Document %s could not be classified; ignored", doc.Name),
			})
		}
	}

	if rentRollTable == nil && t12Table == nil {
		return nil, fmt.Errorf("no usable rent roll or T12 table found in %d documents", len(docs))
	}

	// 2. Rent roll analysis.
	if rentRollTable != nil {
		normalized := table.Normalize(*rentRollTable, o.cfg.RentRollColumnRules())
		res.RentRoll = rentroll.Analyze(normalized)
		res.Flags = append(res.Flags, res.RentRoll.Flags...)
		fmt.Printf("Rent roll: %d units, GPI $%.0f/yr\n",
			res.RentRoll.TotalUnits, res.RentRoll.AnnualGPI)
	}

	// 3. T12 analysis. GPI feeds the vacancy and management fee rules.
	if t12Table != nil {
		annualGPI := 0.0
		if res.RentRoll != nil {
			annualGPI = res.RentRoll.AnnualGPI
		}
		normalized := table.Normalize(*t12Table, o.cfg.T12ColumnRules())
		res.T12 = t12.Analyze(normalized, prop, annualGPI, o.cfg.IncomeRules(), o.cfg.ExpenseRules())
		res.Flags = append(res.Flags, res.T12.Flags...)
		fmt.Printf("T12: adjusted expenses $%.0f/yr\n", res.T12.Expenses.TotalAdjusted)
	}

	// 4. Summary ledger.
	res.Summary = summary.Build(res.RentRoll, res.T12)
	fmt.Printf("Summary: EGI $%.0f, NOI $%.0f\n", res.Summary.EGI, res.Summary.NOI)

	// 5. Loan sizing, only when the caller supplied a valuation basis.
	if opts.CapRate > 0 || opts.PropertyValue > 0 {
		scenarios, err := o.size(res.Summary.NOI, opts)
		if err != nil {
			return nil, fmt.Errorf("loan sizing failed: %w", err)
		}
		res.Scenarios = scenarios
		fmt.Printf("Loan sizing: %d qualifying scenarios\n", len(scenarios))
	}

	res.Elapsed = time.Since(start)

	// 6. Persist.
	if o.repo != nil {
		record := &store.UnderwritingRecord{
			RunID:     res.RunID,
			Property:  res.Property,
			RentRoll:  res.RentRoll,
			T12:       res.T12,
			Summary:   res.Summary,
			Scenarios: res.Scenarios,
			Flags:     res.Flags,
			CreatedAt: start,
		}
		if err := o.repo.Save(ctx, record); err != nil {
			fmt.Printf("Warning: failed to persist run %s: %v\n", res.RunID, err)
		}
	}

	fmt.Printf("Run %s complete in %s\n", res.RunID, res.Elapsed)
	return res, nil
}

// extract turns one document into tables plus a document type, consulting
// the cache first.
func (o *Orchestrator) extract(ctx context.Context, doc Document) ([]ingest.ExtractedTable, models.DocumentType, error) {
	hash := store.HashContent(doc.Content)
	if o.cache != nil {
		if entry, err := o.cache.Get(ctx, hash); err == nil && entry != nil {
			fmt.Printf("Document %s served from cache\n", doc.Name)
			return entry.Tables, entry.DocumentType, nil
		}
	}

	format := doc.Format
	if format == "" {
		format = DetectFormat(doc.Content)
	}

	var tables []ingest.ExtractedTable
	var err error
	switch format {
	case FormatJSON:
		tables, err = ingest.ParseJSONTables(string(doc.Content))
	case FormatHTML:
		tables, err = ingest.ParseHTMLTables(string(doc.Content))
	case FormatCSV:
		var t ingest.ExtractedTable
		t, err = ingest.ParseCSV(strings.NewReader(string(doc.Content)))
		if err == nil {
			tables = []ingest.ExtractedTable{t}
		}
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, models.DocUnknown, err
	}

	// Classify off the flattened table text plus the file name.
	var text strings.Builder
	text.WriteString(strings.ToLower(doc.Name))
	for _, t := range tables {
		text.WriteString(" ")
		text.WriteString(t.Text())
	}
	docType := o.classifier.Classify(text.String())

	if o.cache != nil {
		entry := &store.DocumentEntry{Hash: hash, DocumentType: docType, Tables: tables}
		if err := o.cache.Save(ctx, entry); err != nil {
			fmt.Printf("Warning: failed to cache %s: %v\n", doc.Name, err)
		}
	}
	return tables, docType, nil
}

// size runs the loan engine against the summary NOI.
func (o *Orchestrator) size(noi float64, opts Options) ([]loan.Scenario, error) {
	engine := loan.NewEngine(o.programs, o.cfg.TreasuryCurve())
	if opts.TreasuryTerm != "" {
		if err := engine.SetTreasuryTerm(opts.TreasuryTerm); err != nil {
			return nil, err
		}
	}

	var err error
	if opts.CapRate > 0 {
		err = engine.SetPropertyByCapRate(noi, opts.CapRate)
	} else {
		err = engine.SetPropertyByValue(noi, opts.PropertyValue)
	}
	if err != nil {
		return nil, err
	}

	return engine.CalculateScenarios(opts.StepDownPrepay)
}
