package handlers

import (
	"net/http"

	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/perimeter"
	"github.com/arnavshah/clockin-api-go/pkg/shifts"
	"github.com/gin-gonic/gin"
)

// SetPerimeter creates or replaces the manager's perimeter
func (h *Handler) SetPerimeter(c *gin.Context) {
	var req perimeter.SetInput
	if !h.bindJSON(c, &req) {
		return
	}

	p, created, err := h.Perimeters.SetPerimeter(c.Request.Context(), principal(c).UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"perimeter": p})
}

// GetPerimeter returns the manager's own perimeter
func (h *Handler) GetPerimeter(c *gin.Context) {
	p, err := h.Perimeters.GetPerimeter(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"perimeter": p})
}

// GetPerimeterByWorker returns the perimeter the calling worker must clock in from
func (h *Handler) GetPerimeterByWorker(c *gin.Context) {
	p, err := h.Perimeters.GetActivePerimeterForWorker(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"perimeter": p})
}

// ClockIn opens a shift for the calling worker
func (h *Handler) ClockIn(c *gin.Context) {
	var req shifts.ClockInInput
	if !h.bindJSON(c, &req) {
		return
	}

	shift, err := h.Shifts.ClockIn(c.Request.Context(), principal(c).UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shift": shift})
}

// ClockOut closes the shift named in the path
func (h *Handler) ClockOut(c *gin.Context) {
	var req shifts.ClockOutInput
	if !h.bindJSON(c, &req) {
		return
	}

	shift, err := h.Shifts.ClockOut(c.Request.Context(), principal(c).UserID, c.Param("shiftId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shift": shift})
}

// ActiveShift returns the caller's open shift, or null
func (h *Handler) ActiveShift(c *gin.Context) {
	shift, err := h.Shifts.GetActiveShift(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shift": shift})
}

// MyShifts lists the caller's shifts, newest first
func (h *Handler) MyShifts(c *gin.Context) {
	list, err := h.Shifts.ListShiftsForWorker(c.Request.Context(), principal(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []models.Shift{}
	}
	c.JSON(http.StatusOK, gin.H{"shifts": list})
}
