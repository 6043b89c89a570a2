// Package summaries implements the batched fetch-cache-fallback pipeline:
// partition a batch against the cache, generate summaries for the uncached
// subset through the ordered-candidate generation client, merge results back
// through the cache store, and synthesize deterministic fallbacks for
// anything left unresolved. Every batch returns exactly one summary per
// requested entity.
package summaries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/interfaces"
	"github.com/ecoatlas/ecoatlas/internal/models"
)

// ErrInvalidRequest is returned when a request is missing required identity
// fields. It is rejected before any cache read or generation attempt.
var ErrInvalidRequest = errors.New("invalid summary request")

// Service orchestrates the summary pipeline. Each operation runs strictly
// sequentially: cache read, partition, generation, merge, cache write. The
// cache store is the only shared mutable resource; see the store
// implementations for their concurrent-writer contracts.
type Service struct {
	store     interfaces.CacheStore
	generator interfaces.Generator
	style     common.StyleConfig
	logger    arbor.ILogger
}

// NewService creates a summary pipeline service.
func NewService(store interfaces.CacheStore, generator interfaces.Generator, style common.StyleConfig, logger arbor.ILogger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		style:     style,
		logger:    logger,
	}
}

// SummarizeBatch resolves a summary for every entity in the batch. Cache
// hits are served as-is; the uncached subset goes through one batched
// generation call with ordered model fallback; entities the generator could
// not resolve receive deterministic template summaries. The returned mapping
// always contains exactly one entry per distinct input key. Only cache I/O
// faults are surfaced as errors.
func (s *Service) SummarizeBatch(ctx context.Context, category models.Category, batch []models.EntityRecord) (*models.BatchResult, error) {
	if len(batch) == 0 {
		return &models.BatchResult{Summaries: map[string]string{}, Provenance: models.ProvenanceCache}, nil
	}

	cache, err := s.store.Read(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s cache: %w", category, err)
	}

	part := PartitionBatch(batch, cache)

	if len(part.Pending) == 0 {
		s.logger.Debug().
			Str("category", string(category)).
			Int("entities", len(batch)).
			Msg("Batch fully served from cache")
		return &models.BatchResult{Summaries: part.Resolved, Provenance: models.ProvenanceCache}, nil
	}

	s.logger.Debug().
		Str("category", string(category)).
		Int("cached", len(part.Resolved)).
		Int("pending", len(part.Pending)).
		Msg("Partitioned summary batch")

	results := part.Resolved
	now := time.Now().UTC()

	if !s.generator.HasCredentials() {
		mergeFallback(category, part.Pending, models.ProvenanceFallbackNoKey, cache, results, now)
		if err := s.store.Write(ctx, category, cache); err != nil {
			return nil, fmt.Errorf("failed to write %s cache: %w", category, err)
		}
		s.logger.Info().
			Str("category", string(category)).
			Int("synthesized", len(part.Pending)).
			Msg("No generation credentials configured, served template fallbacks")
		return &models.BatchResult{Summaries: results, Provenance: models.ProvenanceFallbackNoKey}, nil
	}

	prompt := BuildBatchPrompt(category, part.Pending, s.style)

	gen, genErr := s.generator.Generate(ctx, prompt)
	if genErr != nil {
		provenance := models.ProvenanceFallbackFailure
		if errors.Is(genErr, interfaces.ErrNoCredentials) {
			provenance = models.ProvenanceFallbackNoKey
		}
		mergeFallback(category, part.Pending, provenance, cache, results, now)
		if err := s.store.Write(ctx, category, cache); err != nil {
			return nil, fmt.Errorf("failed to write %s cache: %w", category, err)
		}
		s.logger.Warn().
			Err(genErr).
			Str("category", string(category)).
			Int("synthesized", len(part.Pending)).
			Msg("Generation failed for all candidates, served template fallbacks")
		result := &models.BatchResult{Summaries: results, Provenance: provenance}
		if provenance == models.ProvenanceFallbackFailure {
			result.Diagnostic = genErr.Error()
		}
		return result, nil
	}

	unresolved := mergeGenerated(gen, part, cache, results, now)
	if len(unresolved) > 0 {
		// Model omitted some requested keys; fill the gaps so the result
		// stays total.
		mergeFallback(category, unresolved, models.ProvenanceFallbackFailure, cache, results, now)
		s.logger.Warn().
			Str("category", string(category)).
			Str("model", gen.Model).
			Int("missing", len(unresolved)).
			Msg("Generation response missing keys, filled with template fallbacks")
	}

	if err := s.store.Write(ctx, category, cache); err != nil {
		return nil, fmt.Errorf("failed to write %s cache: %w", category, err)
	}

	s.logger.Info().
		Str("category", string(category)).
		Str("model", gen.Model).
		Int("generated", len(part.Pending)-len(unresolved)).
		Int("cached", len(part.Resolved)).
		Msg("Summary batch completed")

	return &models.BatchResult{Summaries: results, Provenance: gen.Model}, nil
}

// SummarizeOne resolves a summary for a single entity. A cache hit is
// returned with Cached set; otherwise the entity goes through a single
// generation call using the fixed response field, with the same fallback
// guarantees as the batch form.
func (s *Service) SummarizeOne(ctx context.Context, category models.Category, entity models.EntityRecord) (*models.SingleResult, error) {
	if strings.TrimSpace(entity.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	key := NormalizeKey(entity.Name, entity.Context)

	cache, err := s.store.Read(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s cache: %w", category, err)
	}

	if entry, ok := cache[key]; ok && strings.TrimSpace(entry.Summary) != "" {
		return &models.SingleResult{
			Key:        key,
			Summary:    entry.Summary,
			Provenance: models.ProvenanceCache,
			Cached:     true,
		}, nil
	}

	now := time.Now().UTC()

	summary, provenance := s.generateOne(ctx, category, key, entity)

	cache[key] = models.CacheEntry{
		Summary:     summary,
		Name:        entity.Name,
		Context:     entity.Context,
		ModelUsed:   provenance,
		GeneratedAt: now,
	}
	if err := s.store.Write(ctx, category, cache); err != nil {
		return nil, fmt.Errorf("failed to write %s cache: %w", category, err)
	}

	return &models.SingleResult{
		Key:        key,
		Summary:    summary,
		Provenance: provenance,
	}, nil
}

// generateOne runs the single-entity generation path and returns the summary
// text with its provenance. Failures never propagate; they degrade to the
// deterministic template.
func (s *Service) generateOne(ctx context.Context, category models.Category, key string, entity models.EntityRecord) (string, string) {
	if !s.generator.HasCredentials() {
		return SynthesizeFallback(category, entity), models.ProvenanceFallbackNoKey
	}

	prompt := BuildSinglePrompt(category, entity, s.style)

	gen, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, interfaces.ErrNoCredentials) {
			return SynthesizeFallback(category, entity), models.ProvenanceFallbackNoKey
		}
		s.logger.Warn().
			Err(err).
			Str("category", string(category)).
			Str("key", key).
			Msg("Single-entity generation failed, serving template fallback")
		return SynthesizeFallback(category, entity), models.ProvenanceFallbackFailure
	}

	// The single form requests a fixed field name, but models occasionally
	// echo the cache key instead; accept both.
	summary := gen.Summaries[SingleResponseField]
	if strings.TrimSpace(summary) == "" {
		summary = gen.Summaries[key]
	}
	if strings.TrimSpace(summary) == "" {
		s.logger.Warn().
			Str("category", string(category)).
			Str("key", key).
			Str("model", gen.Model).
			Msg("Generation response missing summary field, serving template fallback")
		return SynthesizeFallback(category, entity), models.ProvenanceFallbackFailure
	}

	return summary, gen.Model
}

// ClearCategory empties one category's cache document. This is the only
// supported way to regenerate summaries for already-cached entities.
func (s *Service) ClearCategory(ctx context.Context, category models.Category) error {
	if err := s.store.Clear(ctx, category); err != nil {
		return fmt.Errorf("failed to clear %s cache: %w", category, err)
	}
	s.logger.Info().Str("category", string(category)).Msg("Cleared summary cache")
	return nil
}
