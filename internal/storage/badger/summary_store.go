// Package badger implements the hardened cache store: one Badger record per
// cache key instead of a whole-document snapshot, so concurrent batch
// operations writing different keys cannot lose each other's updates.
package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ecoatlas/ecoatlas/internal/interfaces"
	"github.com/ecoatlas/ecoatlas/internal/models"
)

// summaryRecord is the persisted form of one cache entry. ID is
// "<category>/<cache key>" so keys are unique across categories.
type summaryRecord struct {
	ID       string `badgerhold:"key"`
	Category string `badgerholdIndex:"Category"`
	Key      string
	Entry    models.CacheEntry
}

// SummaryStore implements interfaces.CacheStore on per-key Badger records.
type SummaryStore struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSummaryStore creates a SummaryStore instance
func NewSummaryStore(db *BadgerDB, logger arbor.ILogger) *SummaryStore {
	return &SummaryStore{
		db:     db,
		logger: logger,
	}
}

func recordID(category models.Category, key string) string {
	return string(category) + "/" + key
}

// Read returns every entry of a category as a mapping. An empty category is
// not an error.
func (s *SummaryStore) Read(ctx context.Context, category models.Category) (map[string]models.CacheEntry, error) {
	var records []summaryRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("Category").Eq(string(category))); err != nil {
		return nil, fmt.Errorf("failed to read %s cache entries: %w", category, err)
	}

	entries := make(map[string]models.CacheEntry, len(records))
	for _, record := range records {
		entries[record.Key] = record.Entry
	}

	return entries, nil
}

// Write upserts every entry in the mapping as its own record. Unlike the
// snapshot store this is a per-key merge, which is exactly what removes the
// whole-document lost-update race.
func (s *SummaryStore) Write(ctx context.Context, category models.Category, entries map[string]models.CacheEntry) error {
	for key, entry := range entries {
		record := summaryRecord{
			ID:       recordID(category, key),
			Category: string(category),
			Key:      key,
			Entry:    entry,
		}
		if err := s.db.Store().Upsert(record.ID, &record); err != nil {
			return fmt.Errorf("failed to upsert cache entry '%s': %w", record.ID, err)
		}
	}

	s.logger.Debug().
		Str("category", string(category)).
		Int("entries", len(entries)).
		Msg("Upserted cache entries")

	return nil
}

// Clear removes every record of a category.
func (s *SummaryStore) Clear(ctx context.Context, category models.Category) error {
	if err := s.db.Store().DeleteMatching(&summaryRecord{}, badgerhold.Where("Category").Eq(string(category))); err != nil {
		return fmt.Errorf("failed to clear %s cache entries: %w", category, err)
	}
	s.db.RunGC()
	return nil
}

// Close closes the underlying database.
func (s *SummaryStore) Close() error {
	s.db.RunGC()
	return s.db.Close()
}

var _ interfaces.CacheStore = (*SummaryStore)(nil)
