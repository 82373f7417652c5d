package normalize

import "strings"

// Map returns a normalized deep copy of data. String values are trimmed
// before any rule fires, the rule chosen for a leaf depends on its key, and
// nested maps and slices are walked recursively. The input is never mutated.
//
// Key rules, in order:
//   - key contains "payment_card_number" or "phone": strip to digits
//   - key contains "currency": resolved through resolveCurrency
//   - key contains "date": parse as dd/mm/yyyy, nil on failure
//   - key contains "time" but not "date": clock normalization
//   - key contains "amount", "break_time" or "percentage": float coercion
func Map(data map[string]any, resolveCurrency func(string) string) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = normalizeValue(key, value, resolveCurrency)
	}
	return out
}

func normalizeValue(key string, value any, resolveCurrency func(string) string) any {
	switch v := value.(type) {
	case map[string]any:
		return Map(v, resolveCurrency)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = normalizeValue(key, item, resolveCurrency)
		}
		return items
	case string:
		return normalizeLeaf(key, strings.TrimSpace(v), resolveCurrency)
	default:
		return normalizeLeaf(key, value, resolveCurrency)
	}
}

func normalizeLeaf(key string, value any, resolveCurrency func(string) string) any {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "payment_card_number") || strings.Contains(lower, "phone"):
		if s, ok := value.(string); ok {
			return Digits(s)
		}
		return value
	case strings.Contains(lower, "currency"):
		if s, ok := value.(string); ok && resolveCurrency != nil {
			return resolveCurrency(s)
		}
		return value
	case strings.Contains(lower, "date"):
		return Date(value)
	case strings.Contains(lower, "time"):
		if strings.Contains(lower, "break") {
			return Float(value)
		}
		return Clock(value)
	case strings.Contains(lower, "amount") || strings.Contains(lower, "percentage"):
		return Float(value)
	default:
		return value
	}
}
