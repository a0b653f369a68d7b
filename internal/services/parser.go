package services

import (
	"encoding/json"
	"strings"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
)

const previewLimit = 200

// ParseModelOutput extracts the structured payload from raw model text.
// Models often wrap JSON in fenced code blocks or conversational filler, so
// a fenced block is preferred when present; otherwise the raw text must
// decode as-is. Failure is a typed MalformedOutputError, never a panic.
func ParseModelOutput(raw string) (map[string]any, error) {
	candidate := extractFencedBlock(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, &aierr.MalformedOutputError{
			Preview: aierr.TruncatePreview(raw, previewLimit),
			Err:     err,
		}
	}
	return payload, nil
}

// extractFencedBlock returns the contents of the first ```json or plain ```
// fence, or the trimmed raw text when no complete fence exists.
func extractFencedBlock(raw string) string {
	trimmed := strings.TrimSpace(raw)

	start := strings.Index(trimmed, "```")
	if start < 0 {
		return trimmed
	}
	rest := trimmed[start+3:]
	if strings.HasPrefix(strings.ToLower(rest), "json") {
		rest = rest[4:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return trimmed
	}
	return strings.TrimSpace(rest[:end])
}
