package schema

import (
	"strings"
	"time"

	"feldbeleg/internal/normalize"
)

// Canonical fixed-line titles on the expense form, in form order.
const (
	TitleHotel     = "Hotel"
	TitleFuel      = "Fuel"
	TitleParking   = "Parking fees"
	TitleRentalCar = "Rental car"
	TitleToll      = "Toll"
)

// CanonicalTitles lists the fixed expense categories every expense record
// carries exactly once.
var CanonicalTitles = []string{TitleHotel, TitleFuel, TitleParking, TitleRentalCar, TitleToll}

// Canonical payment methods.
const (
	PaymentVisa     = "visa"
	PaymentInvoice  = "invoice"
	PaymentSelfPaid = "self paid"
)

// ExpenseLine is one expense row. WithBreakfast and CanBookAgain only carry
// meaning on the Hotel line.
type ExpenseLine struct {
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	WithBreakfast bool    `json:"with_breakfast,omitempty"`
	CanBookAgain  bool    `json:"can_book_again,omitempty"`
}

// Expense is the structured form of a second-page expense sheet.
type Expense struct {
	Name                 string        `json:"name"`
	ProjectNumber        string        `json:"project_number"`
	IsInEGW              bool          `json:"is_in_egw"`
	Currency             string        `json:"currency"`
	HasEmployeeSignature bool          `json:"has_employee_signature"`
	SignDate             *time.Time    `json:"sign_date"`
	FixedLines           []ExpenseLine `json:"fixed_lines"`
	Lines                []ExpenseLine `json:"lines"`
}

// NormalizeTitle maps a noisy line title onto one of the canonical fixed
// categories by keyword, or returns it trimmed when no rule fires.
func NormalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	switch {
	case strings.Contains(t, "hotel") || strings.Contains(t, "übernacht") || strings.Contains(t, "overnight"):
		return TitleHotel
	case strings.Contains(t, "tank") || strings.Contains(t, "fuel") || strings.Contains(t, "benzin") || strings.Contains(t, "diesel"):
		return TitleFuel
	case strings.Contains(t, "park"):
		return TitleParking
	case strings.Contains(t, "miet") || strings.Contains(t, "rental"):
		return TitleRentalCar
	case strings.Contains(t, "maut") || strings.Contains(t, "toll"):
		return TitleToll
	default:
		return strings.TrimSpace(title)
	}
}

// NormalizePaymentMethod maps a noisy payment description onto one of the
// three canonical methods or the empty string. Card wording wins over
// invoice wording because "Kreditkarte" style phrases often also mention the
// company invoice option.
func NormalizePaymentMethod(method string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" {
		return ""
	}
	switch {
	case strings.Contains(m, "visa") || strings.Contains(m, "kredit") || strings.Contains(m, "credit") || strings.Contains(m, "karte") || strings.Contains(m, "card"):
		return PaymentVisa
	case strings.Contains(m, "self") || strings.Contains(m, "selbst") || strings.Contains(m, "bar") || strings.Contains(m, "cash"):
		return PaymentSelfPaid
	case strings.Contains(m, "rechnung") || strings.Contains(m, "invoice") || strings.Contains(m, "firma") || strings.Contains(m, "company"):
		return PaymentInvoice
	default:
		return ""
	}
}

// BuildExpense constructs an Expense from a raw extraction record. The
// result always carries exactly one fixed line per canonical title. Input
// rows whose normalized title is canonical fill that slot, everything else
// moves to the free lines list.
func BuildExpense(raw map[string]any) *Expense {
	e := &Expense{
		Name:                 strings.TrimSpace(str(raw, "name")),
		ProjectNumber:        normalize.ProjectNumber(raw["project_number"]),
		IsInEGW:              boolean(raw, "is_in_egw", true),
		Currency:             strings.TrimSpace(str(raw, "currency")),
		HasEmployeeSignature: boolean(raw, "has_employee_signature", true),
		SignDate:             datePtr(raw, "sign_date"),
	}

	fixed := make(map[string]ExpenseLine, len(CanonicalTitles))
	assign := func(lm map[string]any) {
		line := ExpenseLine{
			Title:         NormalizeTitle(str(lm, "title")),
			Amount:        floatVal(lm, "amount"),
			PaymentMethod: NormalizePaymentMethod(str(lm, "payment_method")),
		}
		if line.Title == TitleHotel {
			line.WithBreakfast = boolean(lm, "with_breakfast", false)
			line.CanBookAgain = boolean(lm, "can_book_again", false)
		}
		if isCanonical(line.Title) {
			// First occurrence wins a canonical slot, duplicates spill over.
			if _, taken := fixed[line.Title]; !taken {
				fixed[line.Title] = line
				return
			}
		}
		e.Lines = append(e.Lines, line)
	}
	for _, lm := range mapSlice(raw, "fixed_lines") {
		assign(lm)
	}
	for _, lm := range mapSlice(raw, "lines") {
		assign(lm)
	}

	e.FixedLines = make([]ExpenseLine, 0, len(CanonicalTitles))
	for _, title := range CanonicalTitles {
		if line, ok := fixed[title]; ok {
			e.FixedLines = append(e.FixedLines, line)
		} else {
			e.FixedLines = append(e.FixedLines, ExpenseLine{Title: title})
		}
	}
	if len(e.Lines) == 0 {
		e.Lines = []ExpenseLine{{}}
	}
	return e
}

func isCanonical(title string) bool {
	for _, t := range CanonicalTitles {
		if t == title {
			return true
		}
	}
	return false
}
