// Package snapshot implements the baseline cache store: one JSON document
// per category, read fully at the start of a batch operation and written
// back fully at the end. Concurrent batch operations racing on the same
// document can lose updates (last writer wins); the badger store is the
// per-key alternative without that race.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/interfaces"
	"github.com/ecoatlas/ecoatlas/internal/models"
)

// Store persists each category as a flat JSON object at
// <dir>/<category>.json.
type Store struct {
	dir    string
	logger arbor.ILogger
}

// NewStore creates a snapshot store rooted at the configured directory. The
// directory is created lazily on first write.
func NewStore(config *common.SnapshotConfig, logger arbor.ILogger) *Store {
	return &Store{
		dir:    config.Dir,
		logger: logger,
	}
}

func (s *Store) path(category models.Category) string {
	return filepath.Join(s.dir, string(category)+".json")
}

// Read loads the full cache document for a category. A missing document is
// not an error and yields an empty mapping; any other read or decode fault
// is surfaced as fatal.
func (s *Store) Read(ctx context.Context, category models.Category) (map[string]models.CacheEntry, error) {
	data, err := os.ReadFile(s.path(category))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]models.CacheEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache document '%s': %w", s.path(category), err)
	}

	entries := map[string]models.CacheEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache document '%s': %w", s.path(category), err)
	}

	return entries, nil
}

// Write persists the entire mapping for a category, fully replacing prior
// content. The document is written to a temp file and renamed so a crashed
// write never leaves a truncated document behind.
func (s *Store) Write(ctx context.Context, category models.Category, entries map[string]models.CacheEntry) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory '%s': %w", s.dir, err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache document for '%s': %w", category, err)
	}

	target := s.path(category)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache document '%s': %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace cache document '%s': %w", target, err)
	}

	s.logger.Debug().
		Str("category", string(category)).
		Int("entries", len(entries)).
		Msg("Wrote cache snapshot")

	return nil
}

// Clear empties the category's cache document.
func (s *Store) Clear(ctx context.Context, category models.Category) error {
	err := os.Remove(s.path(category))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache document '%s': %w", s.path(category), err)
	}
	return nil
}

// Close is a no-op; snapshot documents hold no open handles between
// operations.
func (s *Store) Close() error {
	return nil
}

var _ interfaces.CacheStore = (*Store)(nil)
