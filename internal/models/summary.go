package models

import (
	"fmt"
	"time"
)

// Category identifies a class of ecological entities. Each category is
// persisted in its own cache document.
type Category string

const (
	CategoryBiome Category = "biome"
	CategoryPlant Category = "plant"
	CategoryPest  Category = "pest"
)

// ParseCategory validates a category string from an API path or config value.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryBiome, CategoryPlant, CategoryPest:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown summary category '%s' (expected biome, plant, or pest)", s)
	}
}

// Provenance values describe how a batch or single result was served.
const (
	ProvenanceCache           = "cache"
	ProvenanceFallbackNoKey   = "fallback/no-key"
	ProvenanceFallbackFailure = "fallback/generator-failed"
)

// EntityRecord is one entity needing a textual summary. Identity is
// (Name, Context); Descriptors and Companions feed prompt construction only.
type EntityRecord struct {
	Name        string   `json:"name" validate:"required"`
	Context     string   `json:"context"`
	Descriptors []string `json:"descriptors,omitempty"`
	Companions  []string `json:"companions,omitempty"`
}

// CacheEntry is a persisted summary keyed by the entity's cache key.
// ModelUsed is either a concrete model identifier or one of the fallback
// provenance values.
type CacheEntry struct {
	Summary     string    `json:"summary"`
	Name        string    `json:"name"`
	Context     string    `json:"context"`
	ModelUsed   string    `json:"model_used"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BatchResult is the outcome of one batch operation. Summaries contains
// exactly one entry per distinct input key. Provenance is ProvenanceCache,
// a model identifier, or a fallback value; Diagnostic carries the last
// generation failure when Provenance is ProvenanceFallbackFailure.
type BatchResult struct {
	Summaries  map[string]string `json:"summaries"`
	Provenance string            `json:"provenance"`
	Diagnostic string            `json:"diagnostic,omitempty"`
}

// SingleResult is the outcome of a single-entity lookup.
type SingleResult struct {
	Key        string `json:"key"`
	Summary    string `json:"summary"`
	Provenance string `json:"provenance"`
	Cached     bool   `json:"cached"`
}
