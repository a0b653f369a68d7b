package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
)

// Result carries every violation found in one pass so callers see the full
// list, not just the first.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks data against the named schema. It returns an error only
// for an unknown schema name; contract violations land in the Result.
func Validate(name string, data any) (Result, error) {
	node, ok := registry[name]
	if !ok {
		return Result{}, fmt.Errorf("unknown schema: %s", name)
	}
	errs := walk(node, data, "$")
	return Result{Valid: len(errs) == 0, Errors: errs}, nil
}

// MustValidate is the fatal variant for call sites that treat invalidity as
// a pipeline-aborting failure.
func MustValidate(name string, data any) error {
	res, err := Validate(name, data)
	if err != nil {
		return err
	}
	if !res.Valid {
		return &aierr.SchemaValidationError{SchemaName: name, Violations: res.Errors}
	}
	return nil
}

// walk validates one subtree. A kind mismatch invalidates the whole subtree
// and stops recursion there; everything else accumulates.
func walk(node *Node, data any, path string) []string {
	var errs []string

	switch node.Kind {
	case KindObject:
		obj, ok := data.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected object, got %s", path, kindOf(data))}
		}
		for _, req := range node.Required {
			if _, present := obj[req]; !present {
				errs = append(errs, fmt.Sprintf("%s: missing required field %q", path, req))
			}
		}
		for key, propNode := range node.Properties {
			val, present := obj[key]
			if !present {
				continue
			}
			errs = append(errs, walk(propNode, val, path+"."+key)...)
		}

	case KindArray:
		arr, ok := data.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected array, got %s", path, kindOf(data))}
		}
		if node.MinItems != nil && len(arr) < *node.MinItems {
			errs = append(errs, fmt.Sprintf("%s: expected at least %d item(s), got %d", path, *node.MinItems, len(arr)))
		}
		if node.MaxItems != nil && len(arr) > *node.MaxItems {
			errs = append(errs, fmt.Sprintf("%s: expected at most %d item(s), got %d", path, *node.MaxItems, len(arr)))
		}
		if node.Items != nil {
			for i, item := range arr {
				errs = append(errs, walk(node.Items, item, fmt.Sprintf("%s[%d]", path, i))...)
			}
		}

	case KindString:
		s, ok := data.(string)
		if !ok {
			return []string{fmt.Sprintf("%s: expected string, got %s", path, kindOf(data))}
		}
		if len(node.Enum) > 0 && !contains(node.Enum, s) {
			errs = append(errs, fmt.Sprintf("%s: value %q not in [%s]", path, s, strings.Join(node.Enum, ", ")))
		}
		if node.MinLen != nil && len(s) < *node.MinLen {
			errs = append(errs, fmt.Sprintf("%s: string shorter than %d", path, *node.MinLen))
		}
		if node.MaxLen != nil && len(s) > *node.MaxLen {
			errs = append(errs, fmt.Sprintf("%s: string longer than %d", path, *node.MaxLen))
		}

	case KindNumber, KindInteger:
		f, ok := asFloat(data)
		if !ok {
			return []string{fmt.Sprintf("%s: expected number, got %s", path, kindOf(data))}
		}
		if node.Kind == KindInteger && f != math.Trunc(f) {
			return []string{fmt.Sprintf("%s: expected integer, got %v", path, f)}
		}
		if node.Minimum != nil && f < *node.Minimum {
			errs = append(errs, fmt.Sprintf("%s: %v below minimum %v", path, f, *node.Minimum))
		}
		if node.Maximum != nil && f > *node.Maximum {
			errs = append(errs, fmt.Sprintf("%s: %v above maximum %v", path, f, *node.Maximum))
		}

	case KindBoolean:
		if _, ok := data.(bool); !ok {
			return []string{fmt.Sprintf("%s: expected boolean, got %s", path, kindOf(data))}
		}
	}

	return errs
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
