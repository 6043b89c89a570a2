package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// ErrEmptyResponse is returned when a candidate answered successfully but
// produced no text payload.
var ErrEmptyResponse = errors.New("empty response from generation endpoint")

// HTTPError classifies a non-success response from a generation endpoint.
// Timeouts are folded into this class with status 0.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation endpoint returned status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("generation request failed: %s", e.Body)
}

// MalformedResponseError classifies a response whose text payload could not
// be parsed as the requested structured object.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed generation response: %v (response: %s)", e.Err, truncate(e.Raw, 200))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// statusCodeRegex matches the status code both SDKs embed in error strings,
// e.g. "Error 429, Message: ..." or "anthropic: status 529".
var statusCodeRegex = regexp.MustCompile(`(?i)(?:error|status|code)[:\s]+(\d{3})`)

// classifyAPIError wraps a provider SDK error as an HTTPError, extracting
// the HTTP status code from the error text when present.
func classifyAPIError(err error) *HTTPError {
	status := 0
	if matches := statusCodeRegex.FindStringSubmatch(err.Error()); len(matches) > 1 {
		if code, parseErr := strconv.Atoi(matches[1]); parseErr == nil {
			status = code
		}
	}
	return &HTTPError{Status: status, Body: err.Error()}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multibyte
	// character.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
