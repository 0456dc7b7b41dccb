package table

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// SEMANTIC COLUMN DETECTION
// =============================================================================

// ColumnRule binds a semantic column name to the header keywords that
// identify it. Rules are evaluated in order and each rule claims the first
// unclaimed header containing one of its keywords, so more specific rules
// (e.g. "unit_type" keyed on "type") must precede generic ones ("unit").
type ColumnRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Numeric  bool     `yaml:"numeric" json:"numeric"`
}

// Semantic column names shared by the analyzers.
const (
	ColUnit      = "unit"
	ColUnitType  = "unit_type"
	ColSqft      = "sqft"
	ColRent      = "rent"
	ColStatus    = "status"
	ColLeaseEnd  = "lease_end"
	ColTenant    = "tenant"
	ColDeposit   = "deposit"
	ColLineItem  = "line_item"
	ColAmount    = "amount"
)

// DefaultRentRollRules mirrors the column vocabulary of typical rent rolls.
func DefaultRentRollRules() []ColumnRule {
	return []ColumnRule{
		{Name: ColUnitType, Keywords: []string{"type", "bedroom", "bed", "br"}},
		{Name: ColSqft, Keywords: []string{"sqft", "sq ft", "square", "sf"}, Numeric: true},
		{Name: ColRent, Keywords: []string{"rent", "current rent", "monthly rent"}, Numeric: true},
		{Name: ColStatus, Keywords: []string{"status", "occupied", "vacant"}},
		{Name: ColLeaseEnd, Keywords: []string{"lease end", "expir", "end"}},
		{Name: ColTenant, Keywords: []string{"tenant", "resident", "name"}},
		{Name: ColDeposit, Keywords: []string{"deposit", "security"}, Numeric: true},
		{Name: ColUnit, Keywords: []string{"unit", "apt", "apartment", "number", "#"}},
	}
}

// DefaultT12Rules treats the first column as the line-item description and
// any amount-like column as numeric. T12 extraction scans value columns
// positionally, so only the description needs a semantic name.
func DefaultT12Rules() []ColumnRule {
	return []ColumnRule{
		{Name: ColLineItem, Keywords: []string{"description", "line item", "account", "category", "item"}},
		{Name: ColAmount, Keywords: []string{"annual", "total", "amount", "t12", "trailing"}, Numeric: true},
	}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
)

// CleanHeader collapses whitespace and strips punctuation from an extracted
// header cell. Empty headers become "unknown".
func CleanHeader(h string) string {
	h = strings.TrimSpace(h)
	h = whitespaceRe.ReplaceAllString(h, " ")
	h = nonWordRe.ReplaceAllString(h, "")
	h = strings.TrimSpace(h)
	if h == "" {
		return "unknown"
	}
	return h
}

// DetectColumns assigns semantic names to raw headers. Headers no rule
// claims keep their cleaned, lowercased form so no data is dropped by
// renaming. The returned slice is parallel to headers.
func DetectColumns(headers []string, rules []ColumnRule) []string {
	names := make([]string, len(headers))
	claimed := make([]bool, len(headers))

	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(CleanHeader(h))
	}

	for _, rule := range rules {
	ruleLoop:
		for i, h := range lowered {
			if claimed[i] {
				continue
			}
			for _, kw := range rule.Keywords {
				if strings.Contains(h, strings.ToLower(kw)) {
					names[i] = rule.Name
					claimed[i] = true
					break ruleLoop
				}
			}
		}
	}

	// Unmatched columns keep a normalized-but-unlabeled name.
	seen := make(map[string]int)
	for i := range names {
		if names[i] == "" {
			names[i] = strings.ReplaceAll(lowered[i], " ", "_")
		}
		// Disambiguate duplicates: "unknown", "unknown_2", ...
		seen[names[i]]++
		if n := seen[names[i]]; n > 1 {
			names[i] = names[i] + "_" + strconv.Itoa(n)
		}
	}
	return names
}
