package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feldbeleg/internal/domain"
)

func newTestClassifier() *Classifier {
	templates := map[domain.InvoiceType]string{
		domain.InvoiceTypeTimesheet: "erfassung einsatz projekt nummer arbeitszeit beginn ende pause unterschrift mitarbeiter datum stunden",
		domain.InvoiceTypeExpense:   "spesen hotel tankstelle parkgebühren mietwagen maut zahlungsart betrag beleg frühstück übernachtung",
	}
	return New("de", templates, 0.15)
}

func TestClassifyMarkerPageOne(t *testing.T) {
	c := newTestClassifier()
	text := "Erfassung der Auswärtseinsätze\nProjekt 240045\nSeite 1 von 2"
	assert.Equal(t, domain.InvoiceTypeTimesheet, c.Classify(text, "de"))
}

func TestClassifyMarkerPageTwo(t *testing.T) {
	c := newTestClassifier()
	text := "Recording of external assignments\nPage 2 of 2\nHotel Fuel"
	assert.Equal(t, domain.InvoiceTypeExpense, c.Classify(text, "en"))
}

func TestClassifyMarkerWithoutPageDefaultsToTimesheet(t *testing.T) {
	c := newTestClassifier()
	text := "erfassung der auswärtseinsätze projektnummer"
	assert.Equal(t, domain.InvoiceTypeTimesheet, c.Classify(text, "de"))
}

func TestClassifyBySimilarity(t *testing.T) {
	c := newTestClassifier()
	text := "Projekt Nummer 240045 Arbeitszeit Beginn 08:00 Ende 17:00 Pause 0,5 Unterschrift Mitarbeiter Datum Stunden"
	assert.Equal(t, domain.InvoiceTypeTimesheet, c.Classify(text, "de"))
}

func TestClassifyWrongLanguageIsReceipt(t *testing.T) {
	c := newTestClassifier()
	text := "Projekt Nummer Arbeitszeit Beginn Ende Pause Unterschrift"
	assert.Equal(t, domain.InvoiceTypeReceipt, c.Classify(text, "fr"))
}

func TestClassifyBelowThresholdIsReceipt(t *testing.T) {
	c := newTestClassifier()
	text := "Restaurant zur Post Rechnung Schnitzel Getränke Summe 42,80 EUR Vielen Dank"
	assert.Equal(t, domain.InvoiceTypeReceipt, c.Classify(text, "de"))
}

func TestClassifyEmptyTextIsReceipt(t *testing.T) {
	c := newTestClassifier()
	assert.Equal(t, domain.InvoiceTypeReceipt, c.Classify("", "de"))
}
