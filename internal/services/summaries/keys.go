package summaries

import "strings"

// unknownToken substitutes absent identity fields so every entity always
// normalizes to a usable key.
const unknownToken = "unknown"

// keySeparator joins the name and context halves of a cache key.
const keySeparator = "::"

// NormalizeKey derives the cache key for an entity from its primary name and
// its region/context field. Both inputs are optional; blank values become
// "unknown". The function is pure and total: any two field-equal inputs
// (ignoring casing and surrounding whitespace) produce identical output,
// which is what guarantees at-most-once generation per logical entity.
func NormalizeKey(name, context string) string {
	return normalizeField(name) + keySeparator + normalizeField(context)
}

func normalizeField(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return unknownToken
	}
	return s
}
