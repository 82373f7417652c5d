package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testNames = [][2]string{
	{"Schmidt", "Maria"},
	{"Mueller", "Hans"},
	{"Becker", "Anna"},
}

func TestNameRegistryResolvesBothOrders(t *testing.T) {
	r := NewNameRegistry(testNames, 60)
	assert.Equal(t, "Schmidt Maria", r.Resolve("Maria Schmidt"))
	assert.Equal(t, "Schmidt Maria", r.Resolve("Schmidt Maria"))
	assert.Equal(t, "Mueller Hans", r.Resolve("Hans Mueler"))
}

func TestNameRegistryRejectsBelowThreshold(t *testing.T) {
	r := NewNameRegistry(testNames, 60)
	assert.Equal(t, "", r.Resolve("Completely Unrelated Person XYZ"))
	assert.Equal(t, "", r.Resolve(""))
}

func TestNameRegistryAcceptsAtThreshold(t *testing.T) {
	r := NewNameRegistry([][2]string{{"ab", "cd"}}, 60)
	// "ab xx" vs "ab cd": 2 edits over 5 runes scores exactly 60.
	assert.Equal(t, 60, Score("ab xx", "ab cd"))
	assert.Equal(t, "ab cd", r.Resolve("ab xx"))
}

func TestResolveFullReportsPair(t *testing.T) {
	r := NewNameRegistry(testNames, 60)
	pair, canonical, score := r.ResolveFull("Anna Becker")
	assert.Equal(t, [2]string{"Becker", "Anna"}, pair)
	assert.Equal(t, "Becker Anna", canonical)
	assert.Greater(t, score, 60)
}

func TestResolveCurrency(t *testing.T) {
	codes := []string{"EUR", "USD", "CHF"}
	assert.Equal(t, "EUR", ResolveCurrency("eur", codes))
	assert.Equal(t, "EUR", ResolveCurrency("Euro", codes))
	assert.Equal(t, "", ResolveCurrency("  ", codes))
}

func TestResolveCountryAlwaysAnswers(t *testing.T) {
	countries := []string{"Germany", "Switzerland"}
	assert.Equal(t, "Germany", ResolveCountry("Deutschlandxx Germany", countries))
	assert.NotEqual(t, "", ResolveCountry("zzzz", countries))
}

func TestResolveCity(t *testing.T) {
	cities := []string{"Berlin", "Hamburg", "Munich"}
	assert.Equal(t, "Berlin", ResolveCity("Berln", cities))
	assert.Equal(t, CityFallback, ResolveCity("", cities))
	assert.Equal(t, CityFallback, ResolveCity("qqqqqqqq", cities))
}
