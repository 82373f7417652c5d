// Package schema defines the three structured invoice record shapes and
// builds them from loosely typed extraction output.
package schema

import (
	"strconv"
	"time"

	"feldbeleg/internal/normalize"
)

// The helpers below pull typed values out of a raw extraction map. They are
// forgiving on purpose: a missing or mistyped field yields the zero value,
// never an error.

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		// Merge votes and JSON decoding coerce digit strings to numbers.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func boolean(m map[string]any, key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true", "True", "yes", "ja", "1":
			return true
		case "false", "False", "no", "nein", "0":
			return false
		}
	}
	return def
}

func floatPtr(m map[string]any, key string) *float64 {
	if v, ok := m[key]; ok {
		if f, ok := v.(*float64); ok {
			return f
		}
		return normalize.Float(v)
	}
	return nil
}

func floatVal(m map[string]any, key string) float64 {
	if f := floatPtr(m, key); f != nil {
		return *f
	}
	return 0
}

func datePtr(m map[string]any, key string) *time.Time {
	if v, ok := m[key]; ok {
		if t, ok := v.(*time.Time); ok {
			return t
		}
		return normalize.Date(v)
	}
	return nil
}

func clock(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			if c := normalize.Clock(s); c != "" {
				return c
			}
			return ""
		}
		return normalize.Clock(v)
	}
	return ""
}

func mapSlice(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if mm, ok := item.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}
