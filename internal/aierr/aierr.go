// Package aierr holds the typed failure modes of the AI decision pipeline.
// Each type maps to a distinct HTTP status at the handler layer so callers
// can tell "the AI is unavailable" from "the AI's answer was ill-formed".
package aierr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigurationError means no active prompt template exists for a governed
// endpoint. Operator mistake, never retried.
type ConfigurationError struct {
	PromptName string
	Err        error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prompt configuration: %s: %v", e.PromptName, e.Err)
	}
	return fmt.Sprintf("prompt configuration: no active template for %q", e.PromptName)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError means the model provider could not be reached or kept
// failing until the retry budget ran out.
type ProviderError struct {
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai provider failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedOutputError means the provider answered but the answer was not
// decodable JSON. Preview is truncated raw text for diagnostics.
type MalformedOutputError struct {
	Preview string
	Err     error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed ai output: %v; preview=%q", e.Err, e.Preview)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// SchemaValidationError means the output decoded fine but violates the
// endpoint's structural contract. Violations carries everything found in
// one pass, not just the first.
type SchemaValidationError struct {
	SchemaName string
	Violations []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("ai output failed %s validation: %s", e.SchemaName, strings.Join(e.Violations, "; "))
}

// RateLimitError tells the caller to wait before retrying.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// TruncatePreview bounds raw provider text before it is attached to an error
// or written to a log line.
func TruncatePreview(raw string, max int) string {
	raw = strings.TrimSpace(raw)
	if max <= 0 || len(raw) <= max {
		return raw
	}
	return raw[:max] + "..."
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsProvider(err error) bool {
	var target *ProviderError
	return errors.As(err, &target)
}

func IsMalformedOutput(err error) bool {
	var target *MalformedOutputError
	return errors.As(err, &target)
}

func IsSchemaValidation(err error) bool {
	var target *SchemaValidationError
	return errors.As(err, &target)
}
