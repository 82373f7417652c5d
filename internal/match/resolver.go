package match

import "strings"

// CityFallback is reported when a city cannot be matched confidently.
const CityFallback = "Other"

// cityMinScore is the score at or below which a city match is rejected.
const cityMinScore = 50

// NameRegistry resolves free-form employee names against a reference list.
// Each entry is stored as a (last, first) pair and matched in both spoken
// orders so "Maria Schmidt" and "Schmidt Maria" land on the same person.
type NameRegistry struct {
	names    [][2]string
	corpus   []string
	minScore int
}

// NewNameRegistry builds a registry from (last, first) pairs. Matches scoring
// below minScore are rejected; a score equal to minScore is accepted.
func NewNameRegistry(names [][2]string, minScore int) *NameRegistry {
	r := &NameRegistry{names: names, minScore: minScore}
	r.corpus = make([]string, 0, len(names)*2)
	for _, n := range names {
		r.corpus = append(r.corpus, n[0]+" "+n[1], n[1]+" "+n[0])
	}
	return r
}

// Resolve returns the canonical "Last First" form of the closest registered
// name, or the empty string when the candidate is empty or no entry clears
// the threshold.
func (r *NameRegistry) Resolve(candidate string) string {
	_, canonical, _ := r.ResolveFull(candidate)
	return canonical
}

// ResolveFull resolves candidate and additionally reports the matched
// (last, first) pair and the score. The pair is zero-valued on rejection.
func (r *NameRegistry) ResolveFull(candidate string) ([2]string, string, int) {
	if strings.TrimSpace(candidate) == "" || len(r.corpus) == 0 {
		return [2]string{}, "", 0
	}
	idx, _, score := Best(candidate, r.corpus)
	if idx < 0 || score < r.minScore {
		return [2]string{}, "", score
	}
	pair := r.names[idx/2]
	return pair, pair[0] + " " + pair[1], score
}

// ResolveCurrency maps a raw currency string onto the closest ISO code from
// codes, uppercased. An empty input short-circuits to the empty string so a
// missing field is never guessed.
func ResolveCurrency(raw string, codes []string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	_, best, _ := Best(raw, codes)
	return strings.ToUpper(best)
}

// ResolveCountry always returns the closest entry of countries, however weak
// the match. Country fields are mandatory downstream, so a low-confidence
// guess beats an empty value.
func ResolveCountry(raw string, countries []string) string {
	if len(countries) == 0 {
		return ""
	}
	_, best, _ := Best(raw, countries)
	return best
}

// ResolveCity returns the closest entry of cities, falling back to
// CityFallback when the input is empty or the best score is 50 or below.
func ResolveCity(raw string, cities []string) string {
	if strings.TrimSpace(raw) == "" || len(cities) == 0 {
		return CityFallback
	}
	_, best, score := Best(raw, cities)
	if score <= cityMinScore {
		return CityFallback
	}
	return best
}
