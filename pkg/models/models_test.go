package models

import (
	"testing"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/geo"
)

func TestShiftDurationHours(t *testing.T) {
	in := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 30*time.Minute)

	open := Shift{ClockInTime: in, Status: StatusClockedIn}
	if _, ok := open.DurationHours(); ok {
		t.Errorf("Expected open shift to have no duration")
	}
	if !open.Active() {
		t.Errorf("Expected open shift to be active")
	}

	closed := Shift{ClockInTime: in, ClockOutTime: &out, Status: StatusClockedOut}
	hours, ok := closed.DurationHours()
	if !ok || hours != 7.5 {
		t.Errorf("Expected 7.5 hours, got %f (ok=%v)", hours, ok)
	}
}

func TestPerimeterContains(t *testing.T) {
	p := Perimeter{Center: geo.Coordinate{Lat: 0, Lng: 0}, RadiusMeters: 2000}

	if !p.Contains(geo.Coordinate{Lat: 0, Lng: 0.01}) {
		t.Errorf("Expected point ~1.1km away to be inside")
	}
	if p.Contains(geo.Coordinate{Lat: 0, Lng: 0.0225}) {
		t.Errorf("Expected point ~2.5km away to be outside")
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleWorker.Valid() || !RoleManager.Valid() {
		t.Errorf("Expected worker and manager to be valid roles")
	}
	if Role("admin").Valid() {
		t.Errorf("Expected admin to be rejected")
	}
}
