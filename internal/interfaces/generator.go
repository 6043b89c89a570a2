package interfaces

import (
	"context"
	"errors"
)

// ErrNoCredentials is returned by Generate when no configured candidate has
// an API key. Callers recover by synthesizing fallback summaries; this error
// never escapes a batch operation.
var ErrNoCredentials = errors.New("no API key configured for any candidate model")

// GenerationResult carries the parsed structured output of a successful
// generation call and the candidate model that produced it.
type GenerationResult struct {
	Summaries map[string]string
	Model     string
}

// Generator invokes a generative-text endpoint with ordered fallback across
// candidate model identifiers. Implementations never touch the cache; a
// failed candidate list is reported as a classified error.
type Generator interface {
	// Generate sends one prompt and returns the first candidate's parsed
	// structured result. Candidates are tried strictly in sequence; the
	// first success wins. When every candidate fails, the last classified
	// error is returned.
	Generate(ctx context.Context, prompt string) (*GenerationResult, error)

	// HasCredentials reports whether any configured candidate has an API
	// key available. When false, callers skip generation entirely and
	// synthesize fallback summaries.
	HasCredentials() bool

	Close() error
}
