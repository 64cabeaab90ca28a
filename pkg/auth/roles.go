package auth

import (
	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/models"
)

// Principal is the verified caller attached to a request
type Principal struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email,omitempty"`
	Role   models.Role `json:"role"`
}

// Capability names one thing a role may do
type Capability string

const (
	CapClock               Capability = "clock"
	CapViewOwnShifts       Capability = "view_own_shifts"
	CapViewWorkerPerimeter Capability = "view_worker_perimeter"
	CapViewProfile         Capability = "view_profile"
	CapManagePerimeter     Capability = "manage_perimeter"
	CapViewRoster          Capability = "view_roster"
	CapViewAnalytics       Capability = "view_analytics"
	CapExportReports       Capability = "export_reports"
)

var capabilities = map[models.Role]map[Capability]bool{
	models.RoleWorker: {
		CapClock:               true,
		CapViewOwnShifts:       true,
		CapViewWorkerPerimeter: true,
		CapViewProfile:         true,
	},
	models.RoleManager: {
		CapManagePerimeter: true,
		CapViewRoster:      true,
		CapViewAnalytics:   true,
		CapExportReports:   true,
		CapViewProfile:     true,
	},
}

// Can reports whether the role grants the capability
func (p Principal) Can(c Capability) bool {
	return capabilities[p.Role][c]
}

// Authorize checks the principal at an operation boundary
func Authorize(p *Principal, c Capability) error {
	if p == nil || p.UserID == "" {
		return apperr.Authentication("authentication required")
	}
	if !p.Can(c) {
		return apperr.Authorization("access denied: " + string(p.Role) + " cannot " + string(c))
	}
	return nil
}
