package shifts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PerimeterResolver finds the geofence governing a worker
type PerimeterResolver interface {
	GetActivePerimeterForWorker(ctx context.Context, workerID string) (*models.Perimeter, error)
}

// ClockInInput is a worker's clock-in request
type ClockInInput struct {
	Time     *time.Time      `json:"clockInTime"`
	Location *geo.Coordinate `json:"clockInLocation"`
	Notes    string          `json:"clockInNotes"`
}

// ClockOutInput is a worker's clock-out request
type ClockOutInput struct {
	Time     *time.Time      `json:"clockOutTime"`
	Location *geo.Coordinate `json:"clockOutLocation"`
	Notes    string          `json:"clockOutNotes"`
}

// Manager enforces the shift lifecycle: NoActiveShift -> ClockedIn -> ClockedOut
type Manager struct {
	store      store.Store
	perimeters PerimeterResolver
	log        *zap.Logger
}

func NewManager(s store.Store, perimeters PerimeterResolver, log *zap.Logger) *Manager {
	return &Manager{store: s, perimeters: perimeters, log: log}
}

func validateStamp(t *time.Time, loc *geo.Coordinate) error {
	if t == nil || t.IsZero() || loc == nil {
		return apperr.Validation("all input fields are required")
	}
	if err := loc.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

// ClockIn opens a shift if the worker is inside their perimeter and not already clocked in
func (m *Manager) ClockIn(ctx context.Context, workerID string, in ClockInInput) (*models.Shift, error) {
	if err := validateStamp(in.Time, in.Location); err != nil {
		return nil, err
	}

	p, err := m.perimeters.GetActivePerimeterForWorker(ctx, workerID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.Precondition("no perimeter set")
	}
	if err != nil {
		return nil, err
	}

	distance := geo.DistanceMeters(*in.Location, p.Center)
	if distance > p.RadiusMeters {
		m.log.Info("clock in rejected outside perimeter",
			zap.String("worker_id", workerID),
			zap.Float64("distance_meters", distance),
			zap.Float64("radius_meters", p.RadiusMeters))
		return nil, apperr.Forbidden("you are outside the allowed perimeter")
	}

	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = models.DefaultClockInNotes
	}

	shift := &models.Shift{
		ID:              uuid.NewString(),
		WorkerID:        workerID,
		ClockInTime:     in.Time.UTC(),
		ClockInLocation: *in.Location,
		ClockInNotes:    notes,
		Status:          models.StatusClockedIn,
	}
	if err := m.store.CreateShift(ctx, shift); err != nil {
		if errors.Is(err, store.ErrActiveShiftExists) {
			return nil, apperr.Precondition("you are already clocked in")
		}
		return nil, apperr.Internal(err)
	}

	m.log.Info("clocked in", zap.String("worker_id", workerID), zap.String("shift_id", shift.ID))
	return shift, nil
}

// ClockOut closes the worker's clocked-in shift. No geofence check is made.
func (m *Manager) ClockOut(ctx context.Context, workerID, shiftID string, in ClockOutInput) (*models.Shift, error) {
	if err := validateStamp(in.Time, in.Location); err != nil {
		return nil, err
	}

	current, err := m.store.FindShift(ctx, shiftID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if current == nil || current.WorkerID != workerID || !current.Active() {
		return nil, apperr.Precondition("you are not clocked in")
	}
	if !in.Time.After(current.ClockInTime) {
		return nil, apperr.Validation("clock out time must be after clock in time")
	}

	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = models.DefaultClockOutNotes
	}

	done, err := m.store.CompleteShift(ctx, shiftID, workerID, models.ClockOut{
		Time:     in.Time.UTC(),
		Location: *in.Location,
		Notes:    notes,
	})
	if errors.Is(err, store.ErrNotClockedIn) {
		return nil, apperr.Precondition("you are not clocked in")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	m.log.Info("clocked out", zap.String("worker_id", workerID), zap.String("shift_id", shiftID))
	return done, nil
}

// GetActiveShift returns the worker's open shift, or nil when not clocked in
func (m *Manager) GetActiveShift(ctx context.Context, workerID string) (*models.Shift, error) {
	shift, err := m.store.FindActiveShift(ctx, workerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return shift, nil
}

// ListShiftsForWorker returns the worker's shifts, newest clock-in first
func (m *Manager) ListShiftsForWorker(ctx context.Context, workerID string) ([]models.Shift, error) {
	shifts, err := m.store.ListShiftsByWorker(ctx, workerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return shifts, nil
}
