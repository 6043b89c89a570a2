package summaries

import (
	"fmt"
	"strings"

	"github.com/ecoatlas/ecoatlas/internal/common"
	"github.com/ecoatlas/ecoatlas/internal/models"
)

// SingleResponseField is the fixed key requested of the model for
// single-entity generation calls.
const SingleResponseField = "summary"

// categorySubject maps a category to the noun used in prompt instructions.
func categorySubject(category models.Category) string {
	switch category {
	case models.CategoryBiome:
		return "biome"
	case models.CategoryPest:
		return "garden pest"
	default:
		return "plant species"
	}
}

// BuildBatchPrompt serializes the needs-fetch group into one instruction
// block. The function is pure: the same pending set, category, and style
// always produce byte-identical output. Entities appear in input order; the
// model is instructed to key its JSON object by the exact cache keys listed.
func BuildBatchPrompt(category models.Category, pending []PendingEntity, style common.StyleConfig) string {
	var b strings.Builder

	subject := categorySubject(category)

	fmt.Fprintf(&b, "You are writing reference entries for an ecological atlas.\n\n")
	fmt.Fprintf(&b, "Write a summary for each %s listed below.\n\n", subject)

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Respond with a single well-formed JSON object and nothing else: no prose, no markdown, no code fences.\n")
	fmt.Fprintf(&b, "- The object must have exactly one string value per entry, keyed by the entry's \"key\" field verbatim.\n")
	fmt.Fprintf(&b, "- Each summary is %d to %d sentences in an %s tone.\n", style.MinSentences, style.MaxSentences, style.Tone)
	b.WriteString("- State only established facts; no speculation or hedging.\n")
	b.WriteString("- Do not reuse phrasing between entries.\n\n")

	b.WriteString("Entries:\n")
	for _, p := range pending {
		writeEntityBlock(&b, p.Key, p.Entity)
	}

	return b.String()
}

// BuildSinglePrompt serializes one entity for the single-entity operation.
// The response object uses the fixed field name "summary" rather than the
// entity's cache key.
func BuildSinglePrompt(category models.Category, entity models.EntityRecord, style common.StyleConfig) string {
	var b strings.Builder

	subject := categorySubject(category)

	fmt.Fprintf(&b, "You are writing a reference entry for an ecological atlas.\n\n")
	fmt.Fprintf(&b, "Write a summary for the %s described below.\n\n", subject)

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Respond with a single well-formed JSON object of the form {\"%s\": \"...\"} and nothing else: no prose, no markdown, no code fences.\n", SingleResponseField)
	fmt.Fprintf(&b, "- The summary is %d to %d sentences in an %s tone.\n", style.MinSentences, style.MaxSentences, style.Tone)
	b.WriteString("- State only established facts; no speculation or hedging.\n\n")

	b.WriteString("Entry:\n")
	writeEntityBlock(&b, NormalizeKey(entity.Name, entity.Context), entity)

	return b.String()
}

func writeEntityBlock(b *strings.Builder, key string, entity models.EntityRecord) {
	fmt.Fprintf(b, "- key: %s\n", key)
	fmt.Fprintf(b, "  name: %s\n", fieldOrUnknown(entity.Name))
	fmt.Fprintf(b, "  context: %s\n", fieldOrUnknown(entity.Context))
	if len(entity.Descriptors) > 0 {
		fmt.Fprintf(b, "  conditions: %s\n", strings.Join(entity.Descriptors, ", "))
	}
	if len(entity.Companions) > 0 {
		fmt.Fprintf(b, "  associated: %s\n", strings.Join(entity.Companions, ", "))
	}
}

func fieldOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownToken
	}
	return s
}
