package summaries

import (
	"fmt"
	"strings"

	"github.com/ecoatlas/ecoatlas/internal/models"
)

// SynthesizeFallback constructs a template summary from the entity's own
// fields. It performs no network access and uses no randomness: identical
// input always yields byte-identical output, so fallback entries are safe to
// cache and safe to regenerate.
func SynthesizeFallback(category models.Category, entity models.EntityRecord) string {
	name := fieldOrUnknown(entity.Name)
	context := fieldOrUnknown(entity.Context)

	var b strings.Builder

	switch category {
	case models.CategoryBiome:
		fmt.Fprintf(&b, "The %s biome falls within the %s climate zone.", name, context)
		if len(entity.Descriptors) > 0 {
			fmt.Fprintf(&b, " Typical conditions include %s.", joinFields(entity.Descriptors))
		}
		if len(entity.Companions) > 0 {
			fmt.Fprintf(&b, " Characteristic species include %s.", joinFields(entity.Companions))
		}
	case models.CategoryPest:
		fmt.Fprintf(&b, "%s is a garden pest recorded in the %s region.", name, context)
		if len(entity.Descriptors) > 0 {
			fmt.Fprintf(&b, " It is favoured by %s.", joinFields(entity.Descriptors))
		}
		if len(entity.Companions) > 0 {
			fmt.Fprintf(&b, " It is known to affect %s.", joinFields(entity.Companions))
		}
	default:
		fmt.Fprintf(&b, "%s is a plant species recorded for the %s region.", name, context)
		if len(entity.Descriptors) > 0 {
			fmt.Fprintf(&b, " It grows under %s conditions.", joinFields(entity.Descriptors))
		}
		if len(entity.Companions) > 0 {
			fmt.Fprintf(&b, " It is commonly found alongside %s.", joinFields(entity.Companions))
		}
	}

	return b.String()
}

// joinFields joins list fields in their given order with a readable
// conjunction before the final element.
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
	}
}
