package classify

import (
	"math"
	"strings"
	"unicode"
)

// tfidf holds term frequency vectors over a small fixed corpus. The corpus
// is a handful of template texts plus one query document, so a plain map
// implementation is enough.
type tfidf struct {
	docs []map[string]float64
	idf  map[string]float64
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func newTFIDF(texts []string) *tfidf {
	m := &tfidf{idf: make(map[string]float64)}
	df := make(map[string]int)
	for _, text := range texts {
		tf := make(map[string]float64)
		for _, tok := range tokenize(text) {
			tf[tok]++
		}
		for tok := range tf {
			df[tok]++
		}
		m.docs = append(m.docs, tf)
	}
	n := float64(len(texts))
	for tok, d := range df {
		m.idf[tok] = math.Log((n+1)/(float64(d)+1)) + 1
	}
	return m
}

// vector returns the tf-idf weighted term vector of document i.
func (m *tfidf) vector(i int) map[string]float64 {
	tf := m.docs[i]
	out := make(map[string]float64, len(tf))
	var total float64
	for _, c := range tf {
		total += c
	}
	for tok, c := range tf {
		out[tok] = c / total * m.idf[tok]
	}
	return out
}

func cosine(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for tok, va := range a {
		na += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
