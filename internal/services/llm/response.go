package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a full markdown code fence wrapper with an optional
// json language hint.
var fencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?\s*` + "```" + `\s*$`)

// CleanMarkdownFences removes an optional markdown code-fence wrapper from a
// model response. Models wrap JSON in fences despite instructions not to; a
// fenced body must parse identically to its bare equivalent.
func CleanMarkdownFences(s string) string {
	s = strings.TrimSpace(s)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = matches[1]
	}

	// Fallback for unterminated or partial fences.
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// parseSummaryObject decodes a model response into a flat key-to-summary
// mapping. The response must be a single JSON object; non-string values are
// tolerated and dropped rather than failing the whole candidate.
func parseSummaryObject(raw string) (map[string]string, error) {
	cleaned := CleanMarkdownFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("response contained no content")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse as JSON object: %w", err)
	}

	summaries := make(map[string]string, len(decoded))
	for key, value := range decoded {
		if text, ok := value.(string); ok {
			summaries[key] = text
		}
	}

	if len(summaries) == 0 {
		return nil, fmt.Errorf("parsed object contained no string entries")
	}

	return summaries, nil
}
