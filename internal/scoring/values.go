package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// object returns v as a JSON object if it is one.
func object(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Record:
		return map[string]any(t), true
	}
	return nil, false
}

// nested returns rec[key] as an object, or nil.
func nested(rec map[string]any, key string) map[string]any {
	if rec == nil {
		return nil
	}
	m, _ := object(rec[key])
	return m
}

// list returns v as a JSON array if it is one.
func list(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	return nil, false
}

// number reads a finite number from a JSON number or a numeric Go type.
// Strings are not numbers here.
func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numeric reads a finite number from a number or a well-formed numeric string.
// Malformed strings count as absent.
func numeric(v any) (float64, bool) {
	if f, ok := number(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// count reads a non-negative whole count. Fractional values count as absent.
func count(v any) (int, bool) {
	f, ok := numeric(v)
	if !ok || f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// fraction parses the legacy "correct/total" score format.
func fraction(v any) (correct, total int, ok bool) {
	s, isStr := v.(string)
	if !isStr {
		return 0, 0, false
	}
	left, right, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	c, errC := strconv.Atoi(strings.TrimSpace(left))
	t, errT := strconv.Atoi(strings.TrimSpace(right))
	if errC != nil || errT != nil || c < 0 || t < 0 {
		return 0, 0, false
	}
	return c, t, true
}

// key renders an id-like value as a map key.
func key(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case json.Number:
		return t.String(), true
	}
	f, ok := number(v)
	if !ok {
		return "", false
	}
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
