package validate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feldbeleg/internal/domain"
	"feldbeleg/internal/match"
)

type fakeRefs struct{}

func (fakeRefs) EmployeeNames() [][2]string {
	return [][2]string{{"Tümmler", "Dirk"}, {"Schmidt", "Timo"}}
}
func (fakeRefs) Projects() map[string]string {
	return map[string]string{"V240045": "Magua", "V123023": "Helios"}
}
func (fakeRefs) Cities() []string     { return []string{"Salzgitter", "Braunschweig"} }
func (fakeRefs) Countries() []string  { return []string{"DE", "AT", "CH"} }
func (fakeRefs) Currencies() []string { return []string{"EUR", "USD", "CHF"} }

func TestValidateUnknownTypeIsFatal(t *testing.T) {
	v := New(fakeRefs{})
	_, err := v.Validate(domain.InvoiceType("payslip"), map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownInvoiceType))
}

func TestValidateTimesheet(t *testing.T) {
	v := New(fakeRefs{})
	raw := map[string]any{
		"name":           "Dirk Tümler",
		"project_number": "V240045",
		"customer":       "Maguaa GmbH",
		"city":           "Salzgiter",
		"land":           "D",
	}
	res, err := v.Validate(domain.InvoiceTypeTimesheet, raw)
	require.NoError(t, err)
	require.NotNil(t, res.Timesheet)

	assert.Equal(t, "Tümmler Dirk", res.Timesheet.Name)
	assert.Equal(t, "Magua", res.Timesheet.Customer)
	assert.Equal(t, "Salzgitter", res.Timesheet.City)
	assert.Equal(t, "DE", res.Timesheet.Land)
}

func TestValidateTimesheetUnknownCity(t *testing.T) {
	v := New(fakeRefs{})
	res, err := v.Validate(domain.InvoiceTypeTimesheet, map[string]any{"city": "xyzxyzxyz"})
	require.NoError(t, err)
	assert.Equal(t, match.CityFallback, res.Timesheet.City)
}

func TestValidateExpense(t *testing.T) {
	v := New(fakeRefs{})
	raw := map[string]any{
		"name":     "Timo Schmidt",
		"currency": "euro",
		"fixed_lines": []any{
			map[string]any{"title": "Mietwagen", "amount": 156.2, "payment_method": "Kreditkarte"},
		},
	}
	res, err := v.Validate(domain.InvoiceTypeExpense, raw)
	require.NoError(t, err)
	require.NotNil(t, res.Expense)

	assert.Equal(t, "Schmidt Timo", res.Expense.Name)
	assert.Equal(t, "EUR", res.Expense.Currency)
	require.Len(t, res.Expense.FixedLines, 5)
	assert.Equal(t, 156.2, res.Expense.FixedLines[3].Amount)
	assert.Equal(t, "visa", res.Expense.FixedLines[3].PaymentMethod)
}

func TestValidateExpenseEmptyCurrencyStaysEmpty(t *testing.T) {
	v := New(fakeRefs{})
	res, err := v.Validate(domain.InvoiceTypeExpense, map[string]any{"currency": " "})
	require.NoError(t, err)
	assert.Equal(t, "", res.Expense.Currency)
}

func TestValidateReceipt(t *testing.T) {
	v := New(fakeRefs{})
	raw := map[string]any{
		"amount":              "32,27",
		"currency":            "Eur",
		"purchasedate":        "28/06/2008",
		"purchasetime":        "17:46",
		"payment_card_number": "4111 1111 1111 1111",
		"merchant_phone":      "+49 151 1234",
	}
	res, err := v.Validate(domain.InvoiceTypeReceipt, raw)
	require.NoError(t, err)
	require.NotNil(t, res.Receipt)

	require.NotNil(t, res.Receipt.Amount)
	assert.Equal(t, 32.27, *res.Receipt.Amount)
	assert.Equal(t, "EUR", res.Receipt.Currency)
	assert.Equal(t, "17:46:00", res.Receipt.PurchaseTime)
	assert.Equal(t, "4111111111111111", res.Receipt.PaymentCardNumber)
	assert.Equal(t, "491511234", res.Receipt.MerchantPhone)
}

func TestMarshalInfo(t *testing.T) {
	v := New(fakeRefs{})
	res, err := v.Validate(domain.InvoiceTypeExpense, map[string]any{"currency": "EUR"})
	require.NoError(t, err)

	data, err := res.MarshalInfo()
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, ok := decoded["invoice_info"]
	assert.True(t, ok)
}
