// Package classify decides whether an OCR'd document is a timesheet, an
// expense form, or a free-form receipt. Classification never fails: when no
// stronger signal fires the document is treated as a receipt.
package classify

import (
	"strings"

	"feldbeleg/internal/domain"
)

// Classifier applies two strategies in order. Company form pages carry a
// fixed heading, so a marker phrase plus a page indicator pins the type
// exactly. Documents without markers fall through to TF-IDF similarity
// against per-type template text, gated on the language the forms are
// printed in.
type Classifier struct {
	MarkerPhrases  []string
	PageOneMarkers []string
	PageTwoMarkers []string

	// FormLanguage is the ISO 639-1 language the company forms use. The
	// similarity strategy only runs for documents detected in this
	// language; anything else is a receipt.
	FormLanguage  string
	Templates     map[domain.InvoiceType]string
	MinSimilarity float64
}

// New returns a classifier with the standard company form markers.
func New(formLanguage string, templates map[domain.InvoiceType]string, minSimilarity float64) *Classifier {
	return &Classifier{
		MarkerPhrases: []string{
			"recording of external assignments",
			"erfassung der auswärtseinsätze",
		},
		PageOneMarkers: []string{"page 1 of 2", "seite 1 von 2"},
		PageTwoMarkers: []string{"page 2 of 2", "seite 2 von 2"},
		FormLanguage:   formLanguage,
		Templates:      templates,
		MinSimilarity:  minSimilarity,
	}
}

// Classify returns the invoice type for ocrText. language is the detected
// document language from OCR.
func (c *Classifier) Classify(ocrText, language string) domain.InvoiceType {
	text := strings.ToLower(ocrText)

	if containsAny(text, c.MarkerPhrases) {
		if containsAny(text, c.PageTwoMarkers) {
			return domain.InvoiceTypeExpense
		}
		// Page one, or a form whose page indicator the OCR lost.
		return domain.InvoiceTypeTimesheet
	}

	if c.FormLanguage != "" && !strings.EqualFold(language, c.FormLanguage) {
		return domain.InvoiceTypeReceipt
	}
	if t, ok := c.bySimilarity(text); ok {
		return t
	}
	return domain.InvoiceTypeReceipt
}

func (c *Classifier) bySimilarity(text string) (domain.InvoiceType, bool) {
	docs := make([]string, 0, len(c.Templates)+1)
	types := make([]domain.InvoiceType, 0, len(c.Templates))
	for _, t := range []domain.InvoiceType{domain.InvoiceTypeTimesheet, domain.InvoiceTypeExpense} {
		tpl, ok := c.Templates[t]
		if !ok {
			continue
		}
		docs = append(docs, tpl)
		types = append(types, t)
	}
	if len(docs) == 0 {
		return "", false
	}

	m := newTFIDF(append(docs, text))
	query := m.vector(len(docs))
	best, bestScore := domain.InvoiceType(""), 0.0
	for i := range types {
		if s := cosine(query, m.vector(i)); s > bestScore {
			best, bestScore = types[i], s
		}
	}
	if bestScore < c.MinSimilarity {
		return "", false
	}
	return best, true
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
