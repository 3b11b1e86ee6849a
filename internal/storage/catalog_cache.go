package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultCatalogTTL is how long a cached catalog lookup stays fresh.
const DefaultCatalogTTL = 24 * time.Hour

// Lookup kinds stored in the catalog cache.
const (
	KindPrintings    = "printings"
	KindNamed        = "named"
	KindAutocomplete = "autocomplete"
)

// CatalogCache stores JSON-encoded catalog responses keyed by kind and lookup key.
type CatalogCache struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewCatalogCache creates a cache over db. A non-positive ttl uses DefaultCatalogTTL.
func NewCatalogCache(db *DB, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{db: db, ttl: ttl, now: time.Now}
}

// TTL returns the freshness window.
func (c *CatalogCache) TTL() time.Duration {
	return c.ttl
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get decodes a fresh entry into out. It reports false when the entry is
// missing or older than the TTL.
func (c *CatalogCache) Get(ctx context.Context, kind, key string, out any) (bool, error) {
	var (
		payload   []byte
		fetchedAt int64
	)
	err := c.db.conn.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM catalog_lookups WHERE kind = ? AND lookup_key = ?`,
		kind, normalizeKey(key),
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read catalog cache: %w", err)
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return false, nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("failed to decode cached %s entry: %w", kind, err)
	}
	return true, nil
}

// Put stores v under kind and key, replacing any previous entry.
func (c *CatalogCache) Put(ctx context.Context, kind, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s entry: %w", kind, err)
	}

	_, err = c.db.conn.ExecContext(ctx,
		`INSERT INTO catalog_lookups (kind, lookup_key, payload, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, lookup_key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		kind, normalizeKey(key), payload, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns how many were deleted.
func (c *CatalogCache) Purge(ctx context.Context) (int64, error) {
	var removed int64
	cutoff := c.now().Add(-c.ttl).Unix()

	err := c.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM catalog_lookups WHERE fetched_at < ?`, cutoff)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge catalog cache: %w", err)
	}
	return removed, nil
}
