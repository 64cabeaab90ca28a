// Package reports renders roster and analytics data as downloadable files.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/analytics"
	"github.com/arnavshah/clockin-api-go/pkg/roster"
	"github.com/xuri/excelize/v2"
)

const (
	DaysSheet  = "Days"
	StaffSheet = "Staff"
)

var shiftHeader = []string{
	"worker_id", "worker_name", "worker_email", "shift_id", "status",
	"clock_in_time", "clock_out_time", "duration_hours",
	"clock_in_lat", "clock_in_lng", "clock_in_notes", "clock_out_notes",
}

// WriteShiftsCSV writes one row per shift, grouped by worker
func WriteShiftsCSV(w io.Writer, groups []roster.WorkerShifts) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(shiftHeader); err != nil {
		return err
	}

	for _, g := range groups {
		for _, sh := range g.Shifts {
			clockOut, duration := "", ""
			if hours, ok := sh.DurationHours(); ok {
				clockOut = sh.ClockOutTime.UTC().Format(time.RFC3339)
				duration = fmt.Sprintf("%.2f", hours)
			}
			record := []string{
				g.Worker.ID,
				textCell(g.Worker.Name),
				textCell(g.Worker.Email),
				sh.ID,
				string(sh.Status),
				sh.ClockInTime.UTC().Format(time.RFC3339),
				clockOut,
				duration,
				fmt.Sprintf("%.6f", sh.ClockInLocation.Lat),
				fmt.Sprintf("%.6f", sh.ClockInLocation.Lng),
				textCell(sh.ClockInNotes),
				textCell(sh.ClockOutNotes),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// textCell quotes user-entered text that a spreadsheet would otherwise
// evaluate as a formula
func textCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// WriteSummaryXLSX writes the weekly summary as a workbook with a per-day
// sheet and a per-staff sheet
func WriteSummaryXLSX(w io.Writer, summary *analytics.WeeklySummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DaysSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(StaffSheet); err != nil {
		return err
	}

	days := [][]any{{"date", "shifts", "workers", "total_hours", "avg_hours"}}
	for _, d := range summary.Days {
		days = append(days, []any{d.Date, d.Shifts, d.Workers, d.TotalHours, d.AvgHours})
	}
	if err := writeRows(f, DaysSheet, days); err != nil {
		return err
	}

	staff := [][]any{{"worker_id", "name", "email", "shifts", "total_hours"}}
	for _, s := range summary.TotalHoursPerStaff {
		staff = append(staff, []any{s.Worker.ID, s.Worker.Name, s.Worker.Email, s.Shifts, s.TotalHours})
	}
	if err := writeRows(f, StaffSheet, staff); err != nil {
		return err
	}

	window := fmt.Sprintf("%s to %s",
		summary.WindowStart.UTC().Format(time.RFC3339),
		summary.WindowEnd.UTC().Format(time.RFC3339))
	if err := f.SetCellValue(DaysSheet, "G1", "window"); err != nil {
		return err
	}
	if err := f.SetCellValue(DaysSheet, "H1", window); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
