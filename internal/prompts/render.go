package prompts

import (
	"fmt"
	"strings"
)

// Render substitutes {{key}} placeholders in body with stringified values.
// The body is scanned left to right exactly once and substituted text is
// never re-scanned, so a value that itself contains {{...}} tokens is
// emitted verbatim and the same body and variables always produce the same
// string. Unknown placeholders are left intact so a partially specified
// variable set degrades gracefully instead of failing the request.
func Render(body string, variables map[string]any) string {
	if len(variables) == 0 {
		return body
	}
	var out strings.Builder
	out.Grow(len(body))
	for {
		start := strings.Index(body, "{{")
		if start < 0 {
			out.WriteString(body)
			return out.String()
		}
		end := strings.Index(body[start+2:], "}}")
		if end < 0 {
			out.WriteString(body)
			return out.String()
		}
		key := body[start+2 : start+2+end]
		out.WriteString(body[:start])
		if val, ok := variables[key]; ok {
			out.WriteString(stringify(val))
		} else {
			out.WriteString(body[start : start+2+end+2])
		}
		body = body[start+2+end+2:]
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}
