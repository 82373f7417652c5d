package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	d := Date("24/12/2025")
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), *d)

	assert.Nil(t, Date("2025-12-24"))
	assert.Nil(t, Date("31/02/2025"))
	assert.Nil(t, Date(42))
	assert.Nil(t, Date(nil))
}

func TestClock(t *testing.T) {
	assert.Equal(t, "08:30:00", Clock("08:30"))
	assert.Equal(t, "08:30:15", Clock("08:30:15"))
	assert.Equal(t, "24:00:00", Clock("24:00"))
	assert.Equal(t, "24:00:00", Clock("24:00:00"))
	assert.Equal(t, "", Clock("25:00"))
	assert.Equal(t, "", Clock("not a time"))
	assert.Equal(t, "", Clock(830))
}

func TestFloat(t *testing.T) {
	f := Float("12,50")
	require.NotNil(t, f)
	assert.Equal(t, 12.5, *f)

	f = Float(7)
	require.NotNil(t, f)
	assert.Equal(t, 7.0, *f)

	assert.Nil(t, Float("abc"))
	assert.Nil(t, Float(nil))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "4111111111111111", Digits("4111 1111 1111 1111"))
	assert.Equal(t, "4915112345678", Digits("+49 151 1234-5678"))
	assert.Equal(t, "", Digits("no digits"))
}

func TestProjectNumber(t *testing.T) {
	assert.Equal(t, "240045", ProjectNumber("240045.0"))
	assert.Equal(t, "240045", ProjectNumber(240045.0))
	assert.Equal(t, "V123023", ProjectNumber("V1 230 23"))
	assert.Equal(t, "", ProjectNumber(nil))
}

func TestDurationMinutes(t *testing.T) {
	m, err := DurationMinutes("08:00:00", "16:30:00", nil)
	require.NoError(t, err)
	assert.Equal(t, 510.0, m)

	br := 0.5
	m, err = DurationMinutes("08:00:00", "16:30:00", &br)
	require.NoError(t, err)
	assert.Equal(t, 480.0, m)

	m, err = DurationMinutes("22:00:00", "24:00:00", nil)
	require.NoError(t, err)
	assert.Equal(t, 120.0, m)

	_, err = DurationMinutes("nope", "16:00:00", nil)
	assert.Error(t, err)
}

func TestMapNormalizesByKey(t *testing.T) {
	resolve := func(s string) string { return "EUR" }
	in := map[string]any{
		"invoice_date":        " 24/12/2025 ",
		"check_in_time":       "08:30",
		"break_time":          "0,5",
		"total_amount":        "112,40",
		"currency":            "euro",
		"payment_card_number": "4111 1111 1111 1111",
		"vendor":              "  Hotel Adler  ",
		"lines": []any{
			map[string]any{"amount": "12,00", "title": " Parking "},
		},
	}
	out := Map(in, resolve)

	d, ok := out["invoice_date"].(*time.Time)
	require.True(t, ok)
	require.NotNil(t, d)
	assert.Equal(t, "08:30:00", out["check_in_time"])
	require.NotNil(t, out["break_time"])
	assert.Equal(t, 0.5, *out["break_time"].(*float64))
	assert.Equal(t, 112.4, *out["total_amount"].(*float64))
	assert.Equal(t, "EUR", out["currency"])
	assert.Equal(t, "4111111111111111", out["payment_card_number"])
	assert.Equal(t, "Hotel Adler", out["vendor"])

	lines := out["lines"].([]any)
	line := lines[0].(map[string]any)
	assert.Equal(t, 12.0, *line["amount"].(*float64))
	assert.Equal(t, "Parking", line["title"])

	// Source map is untouched.
	assert.Equal(t, " 24/12/2025 ", in["invoice_date"])
}
