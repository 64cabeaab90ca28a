package handlers

import (
	"github.com/arnavshah/clockin-api-go/pkg/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint on r
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)

	api := r.Group("")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/me", h.RequireCapability(auth.CapViewProfile), h.Me)

		// Manager endpoints
		api.POST("/setPerimeter", h.RequireCapability(auth.CapManagePerimeter), h.SetPerimeter)
		api.GET("/getPerimeter", h.RequireCapability(auth.CapManagePerimeter), h.GetPerimeter)
		api.GET("/current-clock-ins", h.RequireCapability(auth.CapViewRoster), h.CurrentClockIns)
		api.GET("/staff-shifts", h.RequireCapability(auth.CapViewRoster), h.StaffShifts)
		api.GET("/staff-shifts/export.csv", h.RequireCapability(auth.CapExportReports), h.ExportStaffShiftsCSV)
		api.GET("/analytics", h.RequireCapability(auth.CapViewAnalytics), h.WeeklyAnalytics)
		api.GET("/analytics/export.xlsx", h.RequireCapability(auth.CapExportReports), h.ExportAnalyticsXLSX)

		// Worker endpoints
		api.GET("/getPerimeterByWorker", h.RequireCapability(auth.CapViewWorkerPerimeter), h.GetPerimeterByWorker)
		api.POST("/clockIn", h.RequireCapability(auth.CapClock), h.ClockIn)
		api.POST("/clockOut/:shiftId", h.RequireCapability(auth.CapClock), h.ClockOut)
		api.GET("/active-shift", h.RequireCapability(auth.CapViewOwnShifts), h.ActiveShift)
		api.GET("/myShifts", h.RequireCapability(auth.CapViewOwnShifts), h.MyShifts)
	}
}
