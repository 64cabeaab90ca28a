package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/reports"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CurrentClockIns lists every worker currently on shift
func (h *Handler) CurrentClockIns(c *gin.Context) {
	entries, err := h.Roster.ListCurrentlyClockedIn(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clock_ins": entries})
}

// StaffShifts returns the shift history grouped by worker
func (h *Handler) StaffShifts(c *gin.Context) {
	groups, err := h.Roster.ListAllShiftsGroupedByWorker(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": groups})
}

// WeeklyAnalytics returns the seven day summary
func (h *Handler) WeeklyAnalytics(c *gin.Context) {
	summary, err := h.Analytics.WeeklySummary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportAnalyticsXLSX downloads the weekly summary as a workbook
func (h *Handler) ExportAnalyticsXLSX(c *gin.Context) {
	summary, err := h.Analytics.WeeklySummary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteSummaryXLSX(&buf, summary); err != nil {
		h.fail(c, apperr.Internal(err))
		return
	}
	attach(c, "weekly-summary-"+summary.WindowEnd.Format("2006-01-02")+".xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportStaffShiftsCSV downloads the grouped shift history as CSV
func (h *Handler) ExportStaffShiftsCSV(c *gin.Context) {
	groups, err := h.Roster.ListAllShiftsGroupedByWorker(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteShiftsCSV(&buf, groups); err != nil {
		h.fail(c, apperr.Internal(err))
		return
	}
	attach(c, "staff-shifts-"+time.Now().UTC().Format("2006-01-02")+".csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func attach(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
