package summaries

import (
	"strings"

	"github.com/ecoatlas/ecoatlas/internal/models"
)

// PendingEntity is one uncached entity awaiting generation, paired with the
// cache key it will be reassembled under.
type PendingEntity struct {
	Key    string
	Entity models.EntityRecord
}

// Partition is the result of splitting a batch against a freshly-read cache:
// Resolved holds cache hits copied straight into the final mapping, Pending
// holds the needs-fetch group in input order with duplicates collapsed to
// their first occurrence, and Index is the key-to-entity side-table used to
// reassociate generated summaries.
type Partition struct {
	Resolved map[string]string
	Pending  []PendingEntity
	Index    map[string]models.EntityRecord
}

// PartitionBatch computes the cache key for every entity in the batch and
// splits the batch into cache hits and the needs-fetch group. An entry with
// a blank summary in the cache does not count as a hit. When Pending comes
// back empty the caller short-circuits with provenance "cache" and makes no
// network call.
func PartitionBatch(batch []models.EntityRecord, cache map[string]models.CacheEntry) *Partition {
	p := &Partition{
		Resolved: make(map[string]string, len(batch)),
		Index:    make(map[string]models.EntityRecord),
	}

	for _, entity := range batch {
		key := NormalizeKey(entity.Name, entity.Context)

		if entry, ok := cache[key]; ok && strings.TrimSpace(entry.Summary) != "" {
			p.Resolved[key] = entry.Summary
			continue
		}

		// Repeated keys in one batch are generated at most once.
		if _, seen := p.Index[key]; seen {
			continue
		}

		p.Index[key] = entity
		p.Pending = append(p.Pending, PendingEntity{Key: key, Entity: entity})
	}

	return p
}
