package models

import (
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/geo"
)

// Role is the closed set of principal roles
type Role string

const (
	RoleWorker  Role = "worker"
	RoleManager Role = "manager"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleManager
}

// ShiftStatus is the persisted state of a single shift
type ShiftStatus string

const (
	StatusClockedIn  ShiftStatus = "clock_in"
	StatusClockedOut ShiftStatus = "clock_out"
)

const (
	DefaultClockInNotes  = "Clock In"
	DefaultClockOutNotes = "Clock Out"
)

// User is an identity provider record
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	ManagerID    string    `json:"manager_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the public projection of the user
func (u User) Identity() WorkerIdentity {
	return WorkerIdentity{ID: u.ID, Name: u.Name, Email: u.Email}
}

// WorkerIdentity is the worker data joined onto roster and analytics rows
type WorkerIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Perimeter is a manager-defined circular geofence
type Perimeter struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	Center       geo.Coordinate `json:"center"`
	RadiusMeters float64        `json:"radius_meters"`
	Address      string         `json:"address"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Contains reports whether point is inside the perimeter
func (p Perimeter) Contains(point geo.Coordinate) bool {
	return geo.Within(point, p.Center, p.RadiusMeters)
}

// Shift is one worker's clock-in to clock-out interval
type Shift struct {
	ID               string          `json:"id"`
	WorkerID         string          `json:"worker_id"`
	ClockInTime      time.Time       `json:"clock_in_time"`
	ClockInLocation  geo.Coordinate  `json:"clock_in_location"`
	ClockInNotes     string          `json:"clock_in_notes"`
	ClockOutTime     *time.Time      `json:"clock_out_time,omitempty"`
	ClockOutLocation *geo.Coordinate `json:"clock_out_location,omitempty"`
	ClockOutNotes    string          `json:"clock_out_notes,omitempty"`
	Status           ShiftStatus     `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Active reports whether the shift is still clocked in
func (s Shift) Active() bool {
	return s.Status == StatusClockedIn
}

// DurationHours returns the clocked duration of a completed shift
func (s Shift) DurationHours() (float64, bool) {
	if s.ClockOutTime == nil {
		return 0, false
	}
	return s.ClockOutTime.Sub(s.ClockInTime).Hours(), true
}

// ClockOut holds the fields written by a clock-out
type ClockOut struct {
	Time     time.Time
	Location geo.Coordinate
	Notes    string
}
