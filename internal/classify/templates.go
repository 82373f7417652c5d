package classify

import "feldbeleg/internal/domain"

// DefaultTemplates holds representative text of the two company form pages.
// The similarity strategy compares OCR output against these when the marker
// phrases are missing or garbled.
var DefaultTemplates = map[domain.InvoiceType]string{
	domain.InvoiceTypeTimesheet: `erfassung der auswärtseinsätze seite 1 von 2
name vorname projektnummer kunde ort land kalenderwoche
datum beginn ende pause stunden beschreibung der tätigkeit
reisezeit auftrag anreise abreise unterschrift mitarbeiter unterschrift kunde`,
	domain.InvoiceTypeExpense: `erfassung der auswärtseinsätze seite 2 von 2
spesen auslagen hotel übernachtung tankquittung benzin diesel
parkgebühren mietwagen maut datum betrag währung zahlungsart
kreditkarte selbst bezahlt rechnung an firma beleg nummer
frühstück enthalten unterschrift mitarbeiter`,
}
