package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(&common.SnapshotConfig{Dir: t.TempDir()}, common.GetLogger())
}

func TestReadMissingDocumentReturnsEmpty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Read(context.Background(), models.CategoryPlant)

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	written := map[string]models.CacheEntry{
		"rosa damascena::cfa": {
			Summary:     "A damask rose.",
			Name:        "Rosa Damascena",
			Context:     "Cfa",
			ModelUsed:   "gemini-2.0-flash",
			GeneratedAt: now,
		},
	}

	require.NoError(t, store.Write(ctx, models.CategoryPlant, written))

	read, err := store.Read(ctx, models.CategoryPlant)
	require.NoError(t, err)
	require.Len(t, read, 1)

	entry := read["rosa damascena::cfa"]
	assert.Equal(t, "A damask rose.", entry.Summary)
	assert.Equal(t, "gemini-2.0-flash", entry.ModelUsed)
	assert.True(t, entry.GeneratedAt.Equal(now))
}

func TestWriteReplacesWholeDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryPest, map[string]models.CacheEntry{
		"aphid::nsw":        {Summary: "A sap-sucking insect."},
		"codling moth::vic": {Summary: "An orchard pest."},
	}))

	require.NoError(t, store.Write(ctx, models.CategoryPest, map[string]models.CacheEntry{
		"aphid::nsw": {Summary: "Updated."},
	}))

	read, err := store.Read(ctx, models.CategoryPest)
	require.NoError(t, err)
	assert.Len(t, read, 1)
	assert.Equal(t, "Updated.", read["aphid::nsw"].Summary)
}

func TestCategoriesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryPlant, map[string]models.CacheEntry{
		"rosa damascena::cfa": {Summary: "A damask rose."},
	}))

	pests, err := store.Read(ctx, models.CategoryPest)
	require.NoError(t, err)
	assert.Empty(t, pests)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryBiome, map[string]models.CacheEntry{
		"tundra::et": {Summary: "A cold biome."},
	}))

	require.NoError(t, store.Clear(ctx, models.CategoryBiome))

	read, err := store.Read(ctx, models.CategoryBiome)
	require.NoError(t, err)
	assert.Empty(t, read)

	// Clearing an already-absent document is not an error.
	require.NoError(t, store.Clear(ctx, models.CategoryBiome))
}

func TestReadCorruptDocumentIsFatal(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(&common.SnapshotConfig{Dir: dir}, common.GetLogger())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "plant.json"), []byte("{not json"), 0644))

	_, err := store.Read(context.Background(), models.CategoryPlant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(&common.SnapshotConfig{Dir: dir}, common.GetLogger())

	require.NoError(t, store.Write(context.Background(), models.CategoryPlant, map[string]models.CacheEntry{
		"rosa damascena::cfa": {Summary: "A damask rose."},
	}))

	_, err := os.Stat(filepath.Join(dir, "plant.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}
