package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"feldbeleg/internal/schema"
)

// MonthlyRecord pairs an employee's timesheet with the matching expense
// sheet of the same assignment, as collected for one calendar month.
type MonthlyRecord struct {
	Timesheet *schema.Timesheet
	Expense   *schema.Expense
}

// BuildWorkbook renders monthly records into an expense report workbook, one
// sheet per record named after the employee and project.
func BuildWorkbook(records []MonthlyRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, rec := range records {
		name := sheetName(rec, i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("export.BuildWorkbook: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("export.BuildWorkbook: %w", err)
			}
		}
		if err := fillSheet(f, name, rec); err != nil {
			return nil, fmt.Errorf("export.BuildWorkbook: sheet %s: %w", name, err)
		}
	}
	return f, nil
}

func sheetName(rec MonthlyRecord, i int) string {
	name := ""
	if rec.Timesheet != nil {
		name = rec.Timesheet.Name
	} else if rec.Expense != nil {
		name = rec.Expense.Name
	}
	if name == "" {
		name = fmt.Sprintf("Record %d", i+1)
	}
	// Sheet names cap at 31 characters.
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func fillSheet(f *excelize.File, sheet string, rec MonthlyRecord) error {
	set := func(cell string, value any) error {
		return f.SetCellValue(sheet, cell, value)
	}

	if ts := rec.Timesheet; ts != nil {
		cells := map[string]any{
			"A1": "Name", "B1": ts.Name,
			"A2": "Projekt", "B2": projectLabel(ts),
			"A3": "Stadt", "B3": ts.City,
			"A4": "Land", "B4": ts.Land,
		}
		for cell, v := range cells {
			if err := set(cell, v); err != nil {
				return err
			}
		}
		header := []string{"Datum", "Beginn", "Ende", "Pause (h)", "Beschreibung"}
		for col, h := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 6)
			if err := set(cell, h); err != nil {
				return err
			}
		}
		for row, line := range ts.Lines {
			values := []any{
				formatDate(line.Date), line.StartTime, line.EndTime,
				breakHours(line.BreakTime), line.Description,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+7)
				if err := set(cell, v); err != nil {
					return err
				}
			}
		}
	}

	if e := rec.Expense; e != nil {
		base := 8
		if rec.Timesheet != nil {
			base = 9 + len(rec.Timesheet.Lines)
		}
		if err := set(fmt.Sprintf("A%d", base), "Spesen ("+e.Currency+")"); err != nil {
			return err
		}
		row := base + 1
		for _, line := range append(e.FixedLines, e.Lines...) {
			if line.Title == "" && line.Amount == 0 {
				continue
			}
			if err := set(fmt.Sprintf("A%d", row), line.Title); err != nil {
				return err
			}
			if err := set(fmt.Sprintf("B%d", row), line.Amount); err != nil {
				return err
			}
			if err := set(fmt.Sprintf("C%d", row), line.PaymentMethod); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006")
}

func breakHours(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
