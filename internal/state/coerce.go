package state

import (
	"math"
	"strconv"
	"strings"
)

// Raw snapshots decode to untyped JSON (map[string]any, []any, float64,
// string, bool, nil). The helpers below apply the pipeline's coercion
// rules to those values. Presence semantics mirror the legacy reader's ??
// fallback: a missing key and an explicit null both defer to the next
// alias in the chain.

// fieldRef names one candidate location for a canonical field.
type fieldRef struct {
	m   map[string]any
	key string
}

func ref(m map[string]any, key string) fieldRef { return fieldRef{m: m, key: key} }

// firstValue returns the first present, non-nil candidate.
func firstValue(cands ...fieldRef) (any, bool) {
	for _, c := range cands {
		if c.m == nil {
			continue
		}
		if v, ok := c.m[c.key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// stringField resolves an ordered alias chain to a text value.
func stringField(cands ...fieldRef) string {
	v, ok := firstValue(cands...)
	if !ok {
		return ""
	}
	return coerceString(v)
}

// boolField resolves an ordered alias chain to a flag value.
func boolField(cands ...fieldRef) bool {
	v, ok := firstValue(cands...)
	if !ok {
		return false
	}
	return toBool(v)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// childMap returns the named sub-object of root, or nil when absent or of
// another shape.
func childMap(root map[string]any, key string) map[string]any {
	if root == nil {
		return nil
	}
	return asMap(root[key])
}

// coerceString renders strings, numbers and booleans as text. Anything
// else (objects, arrays, null) becomes the empty string.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		if s, ok := numberText(v); ok {
			return s
		}
		return ""
	}
}

// noteText renders strings and numbers only; booleans and structured
// values become empty. Used where the legacy UI stored free-form notes.
func noteText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := numberText(v); ok {
		return s
	}
	return ""
}

// idText stringifies identifier-ish values: strings pass through, numbers
// are formatted, everything else is rejected.
func idText(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if s, ok := numberText(v); ok {
		return s, true
	}
	return "", false
}

func numberText(v any) (string, bool) {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

// toBool coerces a raw value to a flag. Booleans pass through; the usual
// textual spellings are honored case-insensitively; every other value
// follows JS truthiness, which is what the legacy snapshots assumed.
func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y":
			return true
		case "false", "0", "no", "n", "":
			return false
		default:
			return true
		}
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	case nil:
		return false
	default:
		return true
	}
}
