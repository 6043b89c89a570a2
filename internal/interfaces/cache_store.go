package interfaces

import (
	"context"
	"errors"

	"github.com/ecoatlas/ecoatlas/internal/models"
)

// ErrEntryNotFound is returned when a single cache entry lookup misses.
var ErrEntryNotFound = errors.New("cache entry not found")

// CacheStore persists generated summaries per category. Read returns an
// empty mapping when no store exists yet; any other fault is surfaced as a
// fatal error. Write replaces the category's full content.
//
// The snapshot implementation performs whole-document read-modify-write and
// carries a documented lost-update race between concurrent writers; the
// badger implementation stores one record per key and does not.
type CacheStore interface {
	Read(ctx context.Context, category models.Category) (map[string]models.CacheEntry, error)
	Write(ctx context.Context, category models.Category, entries map[string]models.CacheEntry) error
	Clear(ctx context.Context, category models.Category) error
	Close() error
}
