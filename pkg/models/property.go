// Package models defines data shared across the underwriting pipeline.
package models

// TransactionType distinguishes refinance from acquisition deals.
// The property-tax rule differs between the two.
type TransactionType string

const (
	TransactionRefinance   TransactionType = "refinance"
	TransactionAcquisition TransactionType = "acquisition"
)

// DocumentType tags an extracted document for routing to the right analyzer.
type DocumentType string

const (
	DocRentRoll           DocumentType = "rent_roll"
	DocT12                DocumentType = "t12"
	DocOfferingMemorandum DocumentType = "offering_memorandum"
	DocUnknown            DocumentType = "unknown"
)

// PropertyInfo carries the property metadata the rule set depends on.
// UnitCount and PropertyAge drive the per-unit expense minimums and caps;
// TransactionType selects the property-tax treatment.
type PropertyInfo struct {
	PropertyName    string          `json:"property_name" yaml:"property_name"`
	PropertyAddress string          `json:"property_address" yaml:"property_address"`
	UnitCount       int             `json:"unit_count" yaml:"unit_count"`
	PropertyAge     int             `json:"property_age" yaml:"property_age"`
	TransactionType TransactionType `json:"transaction_type" yaml:"transaction_type"`
}

// Defaults mirrors how an analysis proceeds when the intake form is incomplete:
// a 25-year-old single-unit refinance.
func (p PropertyInfo) WithDefaults() PropertyInfo {
	out := p
	if out.UnitCount <= 0 {
		out.UnitCount = 1
	}
	if out.PropertyAge <= 0 {
		out.PropertyAge = 25
	}
	if out.TransactionType != TransactionAcquisition {
		out.TransactionType = TransactionRefinance
	}
	return out
}

// Flag is a severity-tagged advisory emitted during analysis. Analyzers degrade
// and flag rather than fail; underwriters routinely work from partial documents.
type Flag struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // low, medium, high
	Message  string `json:"message"`
	Action   string `json:"action,omitempty"`
}

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)
