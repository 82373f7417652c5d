package schema

import (
	"strings"
	"time"

	"feldbeleg/internal/normalize"
)

// TimeLine is one worked interval on a timesheet.
type TimeLine struct {
	Date                 *time.Time `json:"date"`
	StartTime            string     `json:"start_time"`
	EndTime              string     `json:"end_time"`
	BreakTime            *float64   `json:"break_time"`
	Description          string     `json:"description"`
	HasCustomerSignature bool       `json:"has_customer_signature"`
}

// Timesheet is the structured form of a first-page assignment sheet.
type Timesheet struct {
	Name                   string     `json:"name"`
	ProjectNumber          string     `json:"project_number"`
	Customer               string     `json:"customer"`
	City                   string     `json:"city"`
	KW                     string     `json:"kw"`
	Land                   string     `json:"land"`
	Lines                  []TimeLine `json:"lines"`
	IsProcessDone          bool       `json:"is_process_done"`
	IsCommissionedWork     bool       `json:"is_commissioned_work"`
	IsWithoutMeasuringTech bool       `json:"is_without_measuring_technology"`
	SignDate               *time.Time `json:"sign_date"`
	HasEmployeeSignature   bool       `json:"has_employee_signature"`
}

// BuildTimesheet constructs a Timesheet from a raw extraction record.
// String fields are trimmed, dates and clock values normalized, and a sheet
// without any line rows still gets a single empty line.
func BuildTimesheet(raw map[string]any) *Timesheet {
	ts := &Timesheet{
		Name:                   strings.TrimSpace(str(raw, "name")),
		ProjectNumber:          normalize.ProjectNumber(raw["project_number"]),
		Customer:               strings.TrimSpace(str(raw, "customer")),
		City:                   strings.TrimSpace(str(raw, "city")),
		KW:                     strings.TrimSpace(str(raw, "kw")),
		Land:                   strings.TrimSpace(str(raw, "land")),
		IsProcessDone:          boolean(raw, "is_process_done", false),
		IsCommissionedWork:     boolean(raw, "is_commissioned_work", false),
		IsWithoutMeasuringTech: boolean(raw, "is_without_measuring_technology", false),
		SignDate:               datePtr(raw, "sign_date"),
		HasEmployeeSignature:   boolean(raw, "has_employee_signature", false),
	}
	for _, lm := range mapSlice(raw, "lines") {
		ts.Lines = append(ts.Lines, TimeLine{
			Date:                 datePtr(lm, "date"),
			StartTime:            clock(lm, "start_time"),
			EndTime:              clock(lm, "end_time"),
			BreakTime:            floatPtr(lm, "break_time"),
			Description:          strings.TrimSpace(str(lm, "description")),
			HasCustomerSignature: boolean(lm, "has_customer_signature", false),
		})
	}
	if len(ts.Lines) == 0 {
		ts.Lines = []TimeLine{{}}
	}
	return ts
}
