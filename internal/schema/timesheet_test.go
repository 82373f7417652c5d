package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimesheet(t *testing.T) {
	raw := map[string]any{
		"name":           "Tümmler Dirk",
		"project_number": "V240045",
		"customer":       "Magua",
		"city":           "Salzgitter",
		"land":           "DE",
		"lines": []any{
			map[string]any{
				"date":                   "07/08/2024",
				"start_time":             "06:45:00",
				"end_time":               "07:30",
				"break_time":             "0.0",
				"description":            " BS-SZ-Support ",
				"has_customer_signature": true,
			},
		},
		"is_process_done":        true,
		"sign_date":              "13/08/2024",
		"has_employee_signature": true,
	}
	ts := BuildTimesheet(raw)

	assert.Equal(t, "Tümmler Dirk", ts.Name)
	assert.Equal(t, "V240045", ts.ProjectNumber)
	assert.Equal(t, "Salzgitter", ts.City)
	assert.True(t, ts.IsProcessDone)
	require.NotNil(t, ts.SignDate)
	assert.Equal(t, time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC), *ts.SignDate)

	require.Len(t, ts.Lines, 1)
	line := ts.Lines[0]
	require.NotNil(t, line.Date)
	assert.Equal(t, "06:45:00", line.StartTime)
	assert.Equal(t, "07:30:00", line.EndTime)
	require.NotNil(t, line.BreakTime)
	assert.Equal(t, 0.0, *line.BreakTime)
	assert.Equal(t, "BS-SZ-Support", line.Description)
	assert.True(t, line.HasCustomerSignature)
}

func TestBuildTimesheetDefaults(t *testing.T) {
	ts := BuildTimesheet(map[string]any{})
	require.Len(t, ts.Lines, 1)
	assert.Equal(t, TimeLine{}, ts.Lines[0])
	assert.Nil(t, ts.SignDate)
	assert.False(t, ts.HasEmployeeSignature)
}

func TestBuildTimesheetBadValues(t *testing.T) {
	raw := map[string]any{
		"lines": []any{
			map[string]any{
				"date":       "2024-08-07",
				"start_time": "25:00",
				"break_time": "abc",
			},
		},
	}
	ts := BuildTimesheet(raw)
	require.Len(t, ts.Lines, 1)
	assert.Nil(t, ts.Lines[0].Date)
	assert.Equal(t, "", ts.Lines[0].StartTime)
	assert.Nil(t, ts.Lines[0].BreakTime)
}
