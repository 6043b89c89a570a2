package summaries

import (
	"strings"
	"time"

	"github.com/ecoatlas/ecoatlas/internal/interfaces"
	"github.com/ecoatlas/ecoatlas/internal/models"
)

// mergeGenerated folds a parsed generation result into the cache mapping and
// the final result mapping. Only keys present in both the result and the
// side-table are merged; keys the model invented are ignored, and a blank
// generated summary counts as missing. Returns the side-table entries left
// unresolved, in their original pending order, for the fallback synthesizer.
func mergeGenerated(gen *interfaces.GenerationResult, part *Partition, cache map[string]models.CacheEntry, results map[string]string, now time.Time) []PendingEntity {
	var unresolved []PendingEntity

	for _, p := range part.Pending {
		summary, ok := gen.Summaries[p.Key]
		if !ok || strings.TrimSpace(summary) == "" {
			unresolved = append(unresolved, p)
			continue
		}

		cache[p.Key] = models.CacheEntry{
			Summary:     summary,
			Name:        p.Entity.Name,
			Context:     p.Entity.Context,
			ModelUsed:   gen.Model,
			GeneratedAt: now,
		}
		results[p.Key] = summary
	}

	return unresolved
}

// mergeFallback writes deterministic template summaries for every pending
// entity, tagging entries with the given fallback provenance.
func mergeFallback(category models.Category, pending []PendingEntity, provenance string, cache map[string]models.CacheEntry, results map[string]string, now time.Time) {
	for _, p := range pending {
		summary := SynthesizeFallback(category, p.Entity)

		cache[p.Key] = models.CacheEntry{
			Summary:     summary,
			Name:        p.Entity.Name,
			Context:     p.Entity.Context,
			ModelUsed:   provenance,
			GeneratedAt: now,
		}
		results[p.Key] = summary
	}
}
