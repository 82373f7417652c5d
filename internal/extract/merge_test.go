package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRecordsSingleSampleIsIdentity(t *testing.T) {
	s := map[string]any{"name": "Schmidt", "amount": 12.5}
	assert.Equal(t, s, MergeRecords([]map[string]any{s}))
}

func TestMergeRecordsMajorityWins(t *testing.T) {
	samples := []map[string]any{
		{"hours": "10"},
		{"hours": 10.0},
		{"hours": 12.0},
	}
	merged := MergeRecords(samples)
	// "10" and 10 count as the same answer and report as the number.
	assert.Equal(t, 10.0, merged["hours"])
}

func TestMergeRecordsMajorityCoercesNumericStrings(t *testing.T) {
	samples := []map[string]any{
		{"amount": "10"},
		{"amount": "10"},
		{"amount": "20"},
	}
	assert.Equal(t, 10.0, MergeRecords(samples)["amount"])
}

func TestMergeRecordsAllDistinctKeepsFirst(t *testing.T) {
	samples := []map[string]any{
		{"city": "Berlin"},
		{"city": "Bremen"},
		{"city": "Bonn"},
	}
	assert.Equal(t, "Berlin", MergeRecords(samples)["city"])
}

func TestMergeRecordsTieKeepsFirst(t *testing.T) {
	samples := []map[string]any{
		{"name": "A"},
		{"name": "B"},
	}
	assert.Equal(t, "A", MergeRecords(samples)["name"])
}

func TestMergeRecordsNestedMaps(t *testing.T) {
	samples := []map[string]any{
		{"line": map[string]any{"amount": 10.0, "title": "Fuel"}},
		{"line": map[string]any{"amount": 10.0, "title": "Gas"}},
		{"line": map[string]any{"amount": 99.0, "title": "Fuel"}},
	}
	merged := MergeRecords(samples)
	line := merged["line"].(map[string]any)
	assert.Equal(t, 10.0, line["amount"])
	assert.Equal(t, "Fuel", line["title"])
}

func TestMergeRecordsListsByIndex(t *testing.T) {
	samples := []map[string]any{
		{"lines": []any{"a", "x"}},
		{"lines": []any{"a", "y"}},
		{"lines": []any{"b", "y", "z"}},
	}
	merged := MergeRecords(samples)
	lines := merged["lines"].([]any)
	require.Len(t, lines, 3)
	// Scalar list elements keep the first sample's value at each index.
	assert.Equal(t, "a", lines[0])
	assert.Equal(t, "x", lines[1])
	// Only one sample has a third element.
	assert.Equal(t, "z", lines[2])
}

func TestMergeRecordsScalarListElementsIgnoreMajority(t *testing.T) {
	samples := []map[string]any{
		{"lines": []any{"x"}},
		{"lines": []any{"y"}},
		{"lines": []any{"y"}},
	}
	lines := MergeRecords(samples)["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "x", lines[0])
}

func TestMergeRecordsMissingKeys(t *testing.T) {
	samples := []map[string]any{
		{"a": 1.0},
		{"a": 1.0, "b": "only here"},
	}
	merged := MergeRecords(samples)
	assert.Equal(t, 1.0, merged["a"])
	assert.Equal(t, "only here", merged["b"])
}

func TestMergeRecordsEmpty(t *testing.T) {
	assert.Empty(t, MergeRecords(nil))
}
