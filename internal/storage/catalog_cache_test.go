package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated database in a temporary directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(DefaultConfig(dbPath))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestOpenWithNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

func TestOpenRejectsMemoryPath(t *testing.T) {
	_, err := Open(DefaultConfig(":memory:"))
	assert.Error(t, err)
}

func TestMigrationVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	mgr, err := NewMigrationManager(dbPath)
	require.NoError(t, err)
	defer func() { _ = mgr.Close() }()

	require.NoError(t, mgr.Up())
	version, dirty, err := mgr.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Running again is a no-op.
	require.NoError(t, mgr.Up())
}

func TestCatalogCache_PutGet(t *testing.T) {
	cache := NewCatalogCache(setupTestDB(t), time.Hour)
	ctx := context.Background()

	type entry struct {
		Names []string `json:"names"`
	}

	require.NoError(t, cache.Put(ctx, KindAutocomplete, "Lightning", entry{Names: []string{"Lightning Bolt"}}))

	var got entry
	ok, err := cache.Get(ctx, KindAutocomplete, "  lightning ", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Lightning Bolt"}, got.Names)

	ok, err = cache.Get(ctx, KindNamed, "lightning", &got)
	require.NoError(t, err)
	assert.False(t, ok, "kinds are separate namespaces")
}

func TestCatalogCache_Overwrite(t *testing.T) {
	cache := NewCatalogCache(setupTestDB(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, KindNamed, "bolt", "first"))
	require.NoError(t, cache.Put(ctx, KindNamed, "bolt", "second"))

	var got string
	ok, err := cache.Get(ctx, KindNamed, "bolt", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCatalogCache_Expiry(t *testing.T) {
	cache := NewCatalogCache(setupTestDB(t), time.Hour)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return base }
	require.NoError(t, cache.Put(ctx, KindPrintings, "old", []int{1}))

	cache.now = func() time.Time { return base.Add(90 * time.Minute) }
	require.NoError(t, cache.Put(ctx, KindPrintings, "new", []int{2}))

	var got []int
	ok, err := cache.Get(ctx, KindPrintings, "old", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	ok, err = cache.Get(ctx, KindPrintings, "new", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{2}, got)
}

func TestNewCatalogCache_DefaultTTL(t *testing.T) {
	cache := NewCatalogCache(nil, 0)
	assert.Equal(t, DefaultCatalogTTL, cache.TTL())
}
