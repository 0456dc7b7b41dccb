package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"multifamily_underwriting/pkg/core/ingest"
	"multifamily_underwriting/pkg/models"
)

// DocumentCache caches extracted document tables keyed by content hash, so
// re-running an analysis on the same upload skips extraction entirely.
// Hybrid storage: DB when a pool is configured, file system otherwise.
type DocumentCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewDocumentCache creates a cache instance. With a nil pool it falls back
// to a file cache in dir; with both unset it defaults to .cache/documents.
func NewDocumentCache(pool *pgxpool.Pool, dir string) *DocumentCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "documents")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check DocumentCache dir: %v\n", err)
		}
	}
	return &DocumentCache{pool: pool, fileDir: dir}
}

// DocumentEntry is one cached extraction.
type DocumentEntry struct {
	Hash         string                  `json:"hash"`
	DocumentType models.DocumentType     `json:"document_type"`
	Tables       []ingest.ExtractedTable `json:"tables"`
	CachedAt     time.Time               `json:"cached_at"`
}

// HashContent returns the cache key for a document body.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get retrieves a cached extraction by content hash, nil on miss.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS document_cache (
//	  content_hash TEXT PRIMARY KEY,
//	  document_type TEXT,
//	  entry_json JSONB,
//	  cached_at TIMESTAMPTZ
//	);
func (c *DocumentCache) Get(ctx context.Context, hash string) (*DocumentEntry, error) {
	if c.pool != nil {
		query := `SELECT entry_json FROM document_cache WHERE content_hash = $1 LIMIT 1`

		var jsonData []byte
		err := c.pool.QueryRow(ctx, query, hash).Scan(&jsonData)
		if err != nil {
			// Miss or DB error; either way the caller re-extracts.
			return nil, nil
		}
		var entry DocumentEntry
		if err := json.Unmarshal(jsonData, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached document: %w", err)
		}
		return &entry, nil
	}

	return c.loadFromFile(c.entryPath(hash))
}

// Save stores an extraction under its content hash.
func (c *DocumentCache) Save(ctx context.Context, entry *DocumentEntry) error {
	entry.CachedAt = time.Now()

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO document_cache (content_hash, document_type, entry_json, cached_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (content_hash)
			DO UPDATE SET
				document_type = EXCLUDED.document_type,
				entry_json = EXCLUDED.entry_json,
				cached_at = EXCLUDED.cached_at;
		`
		_, err := c.pool.Exec(ctx, query, entry.Hash, string(entry.DocumentType), jsonData, entry.CachedAt)
		if err != nil {
			return fmt.Errorf("failed to save cache entry: %w", err)
		}
		return nil
	}

	if c.fileDir == "" {
		return nil // no-op cache
	}
	return os.WriteFile(c.entryPath(entry.Hash), jsonData, 0644)
}

// Exists reports whether a document hash is cached.
func (c *DocumentCache) Exists(ctx context.Context, hash string) bool {
	entry, err := c.Get(ctx, hash)
	return err == nil && entry != nil
}

func (c *DocumentCache) entryPath(hash string) string {
	return filepath.Join(c.fileDir, hash+".json")
}

func (c *DocumentCache) loadFromFile(path string) (*DocumentEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil // miss
	}
	var entry DocumentEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached document: %w", err)
	}
	return &entry, nil
}
