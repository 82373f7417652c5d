package extract

import (
	"strconv"
	"strings"
)

// MergeRecords combines several extraction samples of the same document into
// one record. Maps merge per key and lists per index; scalar map values take
// the most frequent answer with numeric-string coercion so "10" and 10 count
// as the same vote, while scalar list elements keep the first sample's value
// at that index. Ties keep the first-seen value, which also covers the
// all-distinct case. Key order follows first encounter across the samples so
// the result is deterministic.
func MergeRecords(samples []map[string]any) map[string]any {
	switch len(samples) {
	case 0:
		return map[string]any{}
	case 1:
		return samples[0]
	}

	var keys []string
	seen := make(map[string]bool)
	for _, s := range samples {
		for k := range s {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		var values []any
		for _, s := range samples {
			if v, ok := s[k]; ok {
				values = append(values, v)
			}
		}
		out[k] = mergeValues(values)
	}
	return out
}

func mergeValues(values []any) any {
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 {
		return values[0]
	}

	if maps := collectMaps(values); maps != nil {
		return MergeRecords(maps)
	}
	if lists := collectLists(values); lists != nil {
		return mergeLists(lists)
	}
	return majority(values)
}

func collectMaps(values []any) []map[string]any {
	var maps []map[string]any
	for _, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		maps = append(maps, m)
	}
	return maps
}

func collectLists(values []any) [][]any {
	var lists [][]any
	for _, v := range values {
		l, ok := v.([]any)
		if !ok {
			return nil
		}
		lists = append(lists, l)
	}
	return lists
}

// mergeLists merges element-wise. Samples disagree on list length when one
// model misses a row, so each index merges over the lists long enough to
// have it.
func mergeLists(lists [][]any) []any {
	maxLen := 0
	for _, l := range lists {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	out := make([]any, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		var at []any
		for _, l := range lists {
			if i < len(l) {
				at = append(at, l[i])
			}
		}
		out = append(out, mergeElement(at))
	}
	return out
}

// mergeElement merges the values found at one list index. Map and nested
// list elements merge recursively; scalar elements keep the first sample's
// value, so voting applies to map leaf keys only.
func mergeElement(values []any) any {
	if len(values) == 0 {
		return nil
	}
	if maps := collectMaps(values); maps != nil {
		return MergeRecords(maps)
	}
	if lists := collectLists(values); lists != nil {
		return mergeLists(lists)
	}
	return values[0]
}

func majority(values []any) any {
	counts := make(map[string]int)
	first := make(map[string]any)
	var order []string
	for _, v := range values {
		key := canon(v)
		if _, ok := first[key]; !ok {
			first[key] = v
			order = append(order, key)
		}
		counts[key]++
	}
	bestKey, bestCount := "", 0
	for _, key := range order {
		if counts[key] > bestCount {
			bestKey, bestCount = key, counts[key]
		}
	}
	winner := first[bestKey]
	// A numeric bucket reports the coerced number, not whichever spelling
	// happened to arrive first.
	if _, isStr := winner.(string); isStr {
		if f, err := strconv.ParseFloat(bestKey, 64); err == nil {
			return f
		}
	}
	return winner
}

// canon folds equivalent scalar spellings onto one vote bucket.
func canon(v any) string {
	switch n := v.(type) {
	case nil:
		return "\x00nil"
	case bool:
		return strconv.FormatBool(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case string:
		s := strings.TrimSpace(n)
		if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil && s != "" {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return s
	default:
		return ""
	}
}
