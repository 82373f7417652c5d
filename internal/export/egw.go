// Package export renders validated timesheet and expense records into the
// EGW CSV import format and the expense report workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"feldbeleg/internal/match"
	"feldbeleg/internal/normalize"
	"feldbeleg/internal/schema"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the EGW CSV header row (14 columns).
var columns = []string{
	"Stundenzettel ID",
	"Projekt",
	"Titel",
	"Kategorie",
	"Beschreibung",
	"Start",
	"Dauer",
	"Menge",
	"Preis pro Einheit",
	"Besitzer",
	"Geändert von",
	"Status",
	"Projectid",
	"Geändert",
}

// Kategorie values.
const (
	categoryTravel  = "Reisezeit Auftrag"
	categoryNoTech  = "Auftragsarbeit ohne Messtechnik"
	categoryTech    = "Auftragsarbeit mit Messtechnik"
	travelThreshold = 0.7
)

// EGWWriter writes timesheet lines as EGW CSV rows, deduplicating repeats
// from overlapping scans.
type EGWWriter struct {
	csv  *csv.Writer
	seen map[string]bool
}

// NewEGWWriter creates an EGWWriter that writes CSV to w. Callers that need
// Excel compatibility write BOM to w first.
func NewEGWWriter(w io.Writer) *EGWWriter {
	return &EGWWriter{csv: csv.NewWriter(w), seen: make(map[string]bool)}
}

// WriteHeader writes the 14-column header row.
func (w *EGWWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteTimesheet converts every line of ts into an EGW row and writes the
// ones not seen before. Lines without a date or clock values are skipped.
func (w *EGWWriter) WriteTimesheet(ts *schema.Timesheet) error {
	project := projectLabel(ts)
	for _, line := range ts.Lines {
		if line.Date == nil || line.StartTime == "" || line.EndTime == "" {
			continue
		}
		minutes, err := normalize.DurationMinutes(line.StartTime, line.EndTime, line.BreakTime)
		if err != nil {
			continue
		}
		dauer := int(minutes)

		row := make([]string, len(columns))
		row[1] = project
		row[2] = title(ts, line)
		row[3] = category(ts, line)
		row[5] = line.Date.Format("02.01.2006") + " " + line.StartTime
		row[6] = strconv.Itoa(dauer)
		row[7] = strconv.FormatFloat(menge(dauer), 'f', 1, 64)
		row[9] = ts.Name

		key := strings.Join(row, "\x1f")
		if w.seen[key] {
			continue
		}
		w.seen[key] = true
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *EGWWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *EGWWriter) Error() error {
	return w.csv.Error()
}

// projectLabel renders "<project_number>: <customer>".
func projectLabel(ts *schema.Timesheet) string {
	return fmt.Sprintf("%s: %s", ts.ProjectNumber, ts.Customer)
}

// title uses the line description when present, otherwise the project label.
func title(ts *schema.Timesheet, line schema.TimeLine) string {
	if line.Description != "" {
		return line.Description
	}
	return projectLabel(ts)
}

// category classifies a line as travel time when its description is close to
// the travel wording, otherwise by the measuring technology flag.
func category(ts *schema.Timesheet, line schema.TimeLine) string {
	desc := strings.ToLower(line.Description)
	for _, word := range []string{"reisezeit", "auftrag"} {
		if match.Similarity(word, desc) >= travelThreshold {
			return categoryTravel
		}
	}
	if ts.IsWithoutMeasuringTech {
		return categoryNoTech
	}
	return categoryTech
}

// menge is the duration in hours, one decimal.
func menge(dauer int) float64 {
	h := float64(dauer) / 60
	return float64(int(h*10+0.5)) / 10
}

// EGWFilename returns the export file name for the given day, like
// egw_export_timesheet-2026-08-31.csv.
func EGWFilename(now time.Time) string {
	return fmt.Sprintf("egw_export_timesheet-%s.csv", now.Format("2006-01-02"))
}
