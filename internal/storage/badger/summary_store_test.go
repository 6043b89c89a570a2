package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/models"
)

func newTestStore(t *testing.T) *SummaryStore {
	t.Helper()

	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "badger")}
	db, err := NewBadgerDB(common.GetLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSummaryStore(db, common.GetLogger())
}

func TestReadEmptyCategory(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Read(context.Background(), models.CategoryPlant)

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryPlant, map[string]models.CacheEntry{
		"rosa damascena::cfa": {Summary: "A damask rose.", ModelUsed: "gemini-2.0-flash"},
		"quercus robur::dfb":  {Summary: "An oak.", ModelUsed: "gemini-1.5-flash"},
	}))

	read, err := store.Read(ctx, models.CategoryPlant)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, "A damask rose.", read["rosa damascena::cfa"].Summary)
	assert.Equal(t, "gemini-1.5-flash", read["quercus robur::dfb"].ModelUsed)
}

func TestWriteMergesPerKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryPest, map[string]models.CacheEntry{
		"aphid::nsw": {Summary: "A sap-sucking insect."},
	}))

	// A later write of a different key must not remove the first one.
	require.NoError(t, store.Write(ctx, models.CategoryPest, map[string]models.CacheEntry{
		"codling moth::vic": {Summary: "An orchard pest."},
	}))

	read, err := store.Read(ctx, models.CategoryPest)
	require.NoError(t, err)
	assert.Len(t, read, 2)
}

func TestWriteUpsertsExistingKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryPest, map[string]models.CacheEntry{
		"aphid::nsw": {Summary: "First."},
	}))
	require.NoError(t, store.Write(ctx, models.CategoryPest, map[string]models.CacheEntry{
		"aphid::nsw": {Summary: "Second."},
	}))

	read, err := store.Read(ctx, models.CategoryPest)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, "Second.", read["aphid::nsw"].Summary)
}

func TestCategoriesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryPlant, map[string]models.CacheEntry{
		"tundra::et": {Summary: "Keyed under plant."},
	}))
	require.NoError(t, store.Write(ctx, models.CategoryBiome, map[string]models.CacheEntry{
		"tundra::et": {Summary: "Keyed under biome."},
	}))

	plants, err := store.Read(ctx, models.CategoryPlant)
	require.NoError(t, err)
	biomes, err := store.Read(ctx, models.CategoryBiome)
	require.NoError(t, err)

	assert.Equal(t, "Keyed under plant.", plants["tundra::et"].Summary)
	assert.Equal(t, "Keyed under biome.", biomes["tundra::et"].Summary)
}

func TestClearRemovesOnlyOneCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, models.CategoryPest, map[string]models.CacheEntry{
		"aphid::nsw": {Summary: "A sap-sucking insect."},
	}))
	require.NoError(t, store.Write(ctx, models.CategoryPlant, map[string]models.CacheEntry{
		"rosa damascena::cfa": {Summary: "A damask rose."},
	}))

	require.NoError(t, store.Clear(ctx, models.CategoryPest))

	pests, err := store.Read(ctx, models.CategoryPest)
	require.NoError(t, err)
	assert.Empty(t, pests)

	plants, err := store.Read(ctx, models.CategoryPlant)
	require.NoError(t, err)
	assert.Len(t, plants, 1)
}
