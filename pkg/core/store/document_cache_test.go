package store

import (
	"context"
	"testing"

	"multifamily_underwriting/pkg/core/ingest"
	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/models"
)

func TestDocumentCacheFileFallback(t *testing.T) {
	cache := NewDocumentCache(nil, t.TempDir())
	ctx := context.Background()

	content := []byte(`{"tables": [...]}`)
	hash := HashContent(content)

	if cache.Exists(ctx, hash) {
		t.Error("fresh cache should not contain entry")
	}

	entry := &DocumentEntry{
		Hash:         hash,
		DocumentType: models.DocRentRoll,
		Tables: []ingest.ExtractedTable{{
			Title: "Rent Roll",
			Table: table.RawTable{
				Headers: []string{"Unit", "Rent"},
				Rows:    [][]string{{"101", "1200"}},
			},
		}},
	}
	if err := cache.Save(ctx, entry); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := cache.Get(ctx, hash)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.DocumentType != models.DocRentRoll {
		t.Errorf("document type = %s, want rent_roll", got.DocumentType)
	}
	if len(got.Tables) != 1 || got.Tables[0].Table.Rows[0][1] != "1200" {
		t.Errorf("cached tables = %+v", got.Tables)
	}
	if got.CachedAt.IsZero() {
		t.Error("CachedAt not stamped")
	}
}

func TestHashContentStable(t *testing.T) {
	a := HashContent([]byte("doc"))
	b := HashContent([]byte("doc"))
	c := HashContent([]byte("other"))
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == c {
		t.Error("distinct content should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
