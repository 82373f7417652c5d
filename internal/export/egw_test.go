package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feldbeleg/internal/schema"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testTimesheet() *schema.Timesheet {
	br := 0.5
	return &schema.Timesheet{
		Name:          "Tümmler Dirk",
		ProjectNumber: "V240045",
		Customer:      "Magua",
		Lines: []schema.TimeLine{
			{
				Date:        date(2024, 8, 7),
				StartTime:   "06:45:00",
				EndTime:     "16:00:00",
				BreakTime:   &br,
				Description: "BS-SZ-Support",
			},
		},
	}
}

func writeRows(t *testing.T, sheets ...*schema.Timesheet) [][]string {
	t.Helper()
	var buf bytes.Buffer
	w := NewEGWWriter(&buf)
	require.NoError(t, w.WriteHeader())
	for _, ts := range sheets {
		require.NoError(t, w.WriteTimesheet(ts))
	}
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestEGWWriterRow(t *testing.T) {
	rows := writeRows(t, testTimesheet())
	require.Len(t, rows, 2)
	assert.Equal(t, columns, rows[0])

	row := rows[1]
	assert.Equal(t, "", row[0])
	assert.Equal(t, "V240045: Magua", row[1])
	assert.Equal(t, "BS-SZ-Support", row[2])
	assert.Equal(t, "Auftragsarbeit mit Messtechnik", row[3])
	assert.Equal(t, "07.08.2024 06:45:00", row[5])
	// 06:45 to 16:00 is 555 minutes, less the half hour break.
	assert.Equal(t, "525", row[6])
	assert.Equal(t, "8.8", row[7])
	assert.Equal(t, "Tümmler Dirk", row[9])
}

func TestEGWWriterTitleFallsBackToProject(t *testing.T) {
	ts := testTimesheet()
	ts.Lines[0].Description = ""
	rows := writeRows(t, ts)
	assert.Equal(t, "V240045: Magua", rows[1][2])
}

func TestEGWWriterTravelCategory(t *testing.T) {
	ts := testTimesheet()
	ts.Lines[0].Description = "Reisezeit"
	rows := writeRows(t, ts)
	assert.Equal(t, "Reisezeit Auftrag", rows[1][3])
}

func TestEGWWriterMidnightRollover(t *testing.T) {
	ts := testTimesheet()
	ts.Lines[0].StartTime = "22:00:00"
	ts.Lines[0].EndTime = "24:00:00"
	ts.Lines[0].BreakTime = nil
	rows := writeRows(t, ts)
	assert.Equal(t, "120", rows[1][6])
	assert.Equal(t, "2.0", rows[1][7])
}

func TestEGWWriterDeduplicates(t *testing.T) {
	ts := testTimesheet()
	rows := writeRows(t, ts, testTimesheet())
	require.Len(t, rows, 2)
	_ = rows
}

func TestEGWWriterSkipsIncompleteLines(t *testing.T) {
	ts := testTimesheet()
	ts.Lines = append(ts.Lines, schema.TimeLine{Description: "no date"})
	rows := writeRows(t, ts)
	require.Len(t, rows, 2)
}

func TestEGWFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "egw_export_timesheet-2026-08-31.csv", EGWFilename(now))
}
