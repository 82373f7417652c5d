// Package match scores noisy OCR strings against reference lists and applies
// the per-field acceptance policies built on top of that single primitive.
package match

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Similarity returns the normalized edit similarity of a and b in [0, 1],
// computed after case folding.
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(strings.ToLower(a), strings.ToLower(b), nil)
}

// Score returns the 0-100 similarity score between a and b.
func Score(a, b string) int {
	return int(Similarity(a, b)*100 + 0.5)
}

// Best scans refs linearly and returns the index, value, and 0-100 score of
// the closest entry. The scan keeps only a strictly greater running best, so
// ties resolve to the earliest entry. An empty reference list yields (-1, "", 0).
func Best(candidate string, refs []string) (int, string, int) {
	bestIdx, bestScore := -1, 0
	best := ""
	for i, ref := range refs {
		score := Score(candidate, ref)
		if score > bestScore {
			bestIdx, best, bestScore = i, ref, score
		}
	}
	if bestIdx == -1 && len(refs) > 0 {
		// All entries scored zero; still report the first so callers that
		// accept any best match get a deterministic answer.
		return 0, refs[0], 0
	}
	return bestIdx, best, bestScore
}
