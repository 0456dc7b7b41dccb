// Package classify tags extracted documents and scores candidate tables so
// the pipeline can route each document to the right analyzer.
package classify

import (
	"regexp"
	"strings"

	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/models"
)

// =============================================================================
// DOCUMENT CLASSIFICATION
// =============================================================================

// Pattern associates a document type with the regex patterns that indicate it.
type Pattern struct {
	Type     models.DocumentType
	Patterns []string
}

// DefaultPatterns covers the three document families underwriters upload.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Type: models.DocRentRoll, Patterns: []string{
			`rent\s*roll`, `unit\s*mix`, `tenant\s*roster`,
			`lease\s*schedule`, `unit\s*type`, `monthly\s*rent`,
		}},
		{Type: models.DocT12, Patterns: []string{
			`t12`, `trailing\s*12`, `income\s*statement`,
			`operating\s*statement`, `monthly\s*income`, `annual\s*statement`,
		}},
		{Type: models.DocOfferingMemorandum, Patterns: []string{
			`offering\s*memorandum`, `investment\s*summary`,
			`property\s*overview`, `market\s*analysis`,
		}},
	}
}

// Classifier scores document text against configured keyword patterns.
type Classifier struct {
	order    []models.DocumentType
	compiled map[models.DocumentType][]*regexp.Regexp
}

// NewClassifier compiles the given patterns; invalid patterns are skipped.
func NewClassifier(patterns []Pattern) *Classifier {
	c := &Classifier{compiled: make(map[models.DocumentType][]*regexp.Regexp)}
	for _, p := range patterns {
		if _, ok := c.compiled[p.Type]; !ok {
			c.order = append(c.order, p.Type)
		}
		for _, expr := range p.Patterns {
			re, err := regexp.Compile(expr)
			if err != nil {
				continue
			}
			c.compiled[p.Type] = append(c.compiled[p.Type], re)
		}
	}
	return c
}

// Classify returns the document type whose patterns match the text most
// often, or DocUnknown when nothing matches. Ties resolve in favor of the
// type configured first.
func (c *Classifier) Classify(text string) models.DocumentType {
	text = strings.ToLower(text)

	best := models.DocUnknown
	bestScore := 0
	for _, docType := range c.order {
		score := 0
		for _, re := range c.compiled[docType] {
			score += len(re.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			bestScore = score
			best = docType
		}
	}
	return best
}

// =============================================================================
// TABLE QUALITY SCORING
// =============================================================================

// QualityScore rates an extracted table so the pipeline can pick the best of
// several candidate extractions. Larger, denser tables with a sane column
// count score higher.
func QualityScore(raw table.RawTable) float64 {
	rows := len(raw.Rows)
	cols := len(raw.Headers)
	if rows == 0 || cols == 0 {
		return 0
	}

	score := 0.0

	// Size, capped so giant noise grids don't dominate.
	size := float64(rows*cols) / 100
	if size > 5 {
		size = 5
	}
	score += size

	// Completeness.
	filled := 0
	for _, row := range raw.Rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				filled++
			}
		}
	}
	score += float64(filled) / float64(rows*cols) * 3

	// Column structure: financial tables run 3-15 columns.
	switch {
	case cols >= 3 && cols <= 15:
		score += 2
	case cols < 3:
		score -= 1
	}

	return score
}

// BestTable returns the highest-scoring candidate, or a zero table when the
// slice is empty.
func BestTable(candidates []table.RawTable) table.RawTable {
	var best table.RawTable
	bestScore := -1.0
	for _, c := range candidates {
		if s := QualityScore(c); s > bestScore {
			bestScore = s
			best = c
		}
	}
	return best
}
