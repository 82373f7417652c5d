package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLineTitles(e *Expense) []string {
	titles := make([]string, len(e.FixedLines))
	for i, l := range e.FixedLines {
		titles[i] = l.Title
	}
	return titles
}

func TestBuildExpenseAlwaysHasFiveFixedLines(t *testing.T) {
	e := BuildExpense(map[string]any{})
	require.Len(t, e.FixedLines, 5)
	assert.Equal(t, CanonicalTitles, fixedLineTitles(e))
	for _, l := range e.FixedLines {
		assert.Equal(t, 0.0, l.Amount)
		assert.Equal(t, "", l.PaymentMethod)
	}
	assert.True(t, e.IsInEGW)
	assert.True(t, e.HasEmployeeSignature)
}

func TestBuildExpenseFillsCanonicalSlots(t *testing.T) {
	raw := map[string]any{
		"name":           "Schmidt, Timo",
		"project_number": "V1 230 23",
		"currency":       "EUR",
		"fixed_lines": []any{
			map[string]any{"title": "Hotel", "amount": 504.0, "payment_method": "visa", "with_breakfast": true},
			map[string]any{"title": "Fuel", "amount": "40,0", "payment_method": "invoice"},
		},
	}
	e := BuildExpense(raw)

	assert.Equal(t, "V123023", e.ProjectNumber)
	require.Len(t, e.FixedLines, 5)
	assert.Equal(t, CanonicalTitles, fixedLineTitles(e))

	hotel := e.FixedLines[0]
	assert.Equal(t, 504.0, hotel.Amount)
	assert.Equal(t, PaymentVisa, hotel.PaymentMethod)
	assert.True(t, hotel.WithBreakfast)

	fuel := e.FixedLines[1]
	assert.Equal(t, 40.0, fuel.Amount)
	assert.Equal(t, PaymentInvoice, fuel.PaymentMethod)
}

func TestBuildExpenseMovesUnknownTitlesToLines(t *testing.T) {
	raw := map[string]any{
		"fixed_lines": []any{
			map[string]any{"title": "Train ticket", "amount": 24.5, "payment_method": "selbst gezahlt"},
		},
	}
	e := BuildExpense(raw)
	require.Len(t, e.Lines, 1)
	assert.Equal(t, "Train ticket", e.Lines[0].Title)
	assert.Equal(t, PaymentSelfPaid, e.Lines[0].PaymentMethod)
	require.Len(t, e.FixedLines, 5)
}

func TestBuildExpenseRentalCarSynonym(t *testing.T) {
	raw := map[string]any{
		"fixed_lines": []any{
			map[string]any{"title": "Mietwagen", "amount": 156.2, "payment_method": "mit Kreditkarte gezahlt"},
		},
	}
	e := BuildExpense(raw)
	rental := e.FixedLines[3]
	assert.Equal(t, TitleRentalCar, rental.Title)
	assert.Equal(t, 156.2, rental.Amount)
	assert.Equal(t, PaymentVisa, rental.PaymentMethod)
}

func TestBuildExpenseDuplicateCanonicalSpillsOver(t *testing.T) {
	raw := map[string]any{
		"fixed_lines": []any{
			map[string]any{"title": "Hotel", "amount": 100.0},
			map[string]any{"title": "Hotel Adler", "amount": 80.0},
		},
	}
	e := BuildExpense(raw)
	assert.Equal(t, 100.0, e.FixedLines[0].Amount)
	require.Len(t, e.Lines, 1)
	assert.Equal(t, 80.0, e.Lines[0].Amount)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, TitleFuel, NormalizeTitle("Tankstelle Aral"))
	assert.Equal(t, TitleFuel, NormalizeTitle("fuel"))
	assert.Equal(t, TitleRentalCar, NormalizeTitle("Mietwagen Sixt"))
	assert.Equal(t, TitleParking, NormalizeTitle("Parkgebühren"))
	assert.Equal(t, TitleToll, NormalizeTitle("Maut Österreich"))
	assert.Equal(t, TitleHotel, NormalizeTitle("Übernachtung"))
	assert.Equal(t, "Train ticket", NormalizeTitle(" Train ticket "))
}

func TestNormalizePaymentMethod(t *testing.T) {
	assert.Equal(t, PaymentVisa, NormalizePaymentMethod("mit Visa gezahlt"))
	assert.Equal(t, PaymentVisa, NormalizePaymentMethod("Kreditkarte"))
	assert.Equal(t, PaymentSelfPaid, NormalizePaymentMethod("selbst gezahlt"))
	assert.Equal(t, PaymentInvoice, NormalizePaymentMethod("Rechnung an Firma"))
	assert.Equal(t, "", NormalizePaymentMethod("unbekannt"))
	assert.Equal(t, "", NormalizePaymentMethod(""))
}
