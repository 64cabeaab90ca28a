package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/analytics"
	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteShiftsCSV(t *testing.T) {
	in := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 30*time.Minute)
	groups := []roster.WorkerShifts{
		{
			Worker: models.WorkerIdentity{ID: "w1", Name: "Asha", Email: "asha@example.com"},
			Shifts: []models.Shift{
				{ID: "s1", WorkerID: "w1", ClockInTime: in, ClockOutTime: &out, Status: models.StatusClockedOut,
					ClockInLocation: geo.Coordinate{Lat: 12.5, Lng: 77.25}, ClockInNotes: "Clock In", ClockOutNotes: "Clock Out"},
				{ID: "s2", WorkerID: "w1", ClockInTime: in.Add(24 * time.Hour), Status: models.StatusClockedIn, ClockInNotes: "late, sorry"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteShiftsCSV(&buf, groups))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, shiftHeader, records[0])
	assert.Equal(t, []string{
		"w1", "Asha", "asha@example.com", "s1", "clock_out",
		"2026-03-02T08:00:00Z", "2026-03-02T15:30:00Z", "7.50",
		"12.500000", "77.250000", "Clock In", "Clock Out",
	}, records[1])
	assert.Equal(t, "", records[2][6], "open shift has no clock-out")
	assert.Equal(t, "late, sorry", records[2][10])
}

func TestWriteShiftsCSV_FormulaText(t *testing.T) {
	in := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	groups := []roster.WorkerShifts{
		{
			Worker: models.WorkerIdentity{ID: "w1", Name: "@SUM(A1)", Email: "w1@example.com"},
			Shifts: []models.Shift{
				{ID: "s1", WorkerID: "w1", ClockInTime: in, Status: models.StatusClockedIn,
					ClockInLocation: geo.Coordinate{Lat: -33.8688, Lng: -151.2093},
					ClockInNotes:    `=HYPERLINK("http://evil.example","x")`, ClockOutNotes: "-2+3"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteShiftsCSV(&buf, groups))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	row := records[1]
	assert.Equal(t, "'@SUM(A1)", row[1])
	assert.Equal(t, `'=HYPERLINK("http://evil.example","x")`, row[10])
	assert.Equal(t, "'-2+3", row[11])
	assert.Equal(t, "-33.868800", row[8], "numeric columns stay numeric")
	assert.Equal(t, "-151.209300", row[9])
}

func TestTextCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Clock In", "Clock In"},
		{"+1 555 0100", "'+1 555 0100"},
		{"\t=1", "'\t=1"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, textCell(tt.in), "input %q", tt.in)
	}
}

func TestWriteSummaryXLSX(t *testing.T) {
	ref := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	summary := &analytics.WeeklySummary{
		WindowStart: ref.Add(-analytics.Window),
		WindowEnd:   ref,
		Days: []analytics.DailyAggregate{
			{Date: "2026-03-05", Shifts: 2, Workers: 2, TotalHours: 12, AvgHours: 6},
		},
		TotalHoursPerStaff: []analytics.StaffWeeklyTotal{
			{Worker: models.WorkerIdentity{ID: "a", Name: "Asha"}, TotalHours: 8, Shifts: 1},
			{Worker: models.WorkerIdentity{ID: "b", Name: "Ben"}, TotalHours: 4, Shifts: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryXLSX(&buf, summary))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DaysSheet, StaffSheet}, f.GetSheetList())

	days, err := f.GetRows(DaysSheet)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, []string{"2026-03-05", "2", "2", "12", "6"}, days[1])

	staff, err := f.GetRows(StaffSheet)
	require.NoError(t, err)
	require.Len(t, staff, 3)
	assert.Equal(t, "a", staff[1][0])
	assert.Equal(t, "8", staff[1][4])
}
