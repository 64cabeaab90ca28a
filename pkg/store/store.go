package store

import (
	"context"
	"errors"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/models"
)

var (
	// ErrNotFound is returned when a lookup matches nothing
	ErrNotFound = errors.New("record not found")
	// ErrActiveShiftExists is returned when a worker already has a clocked-in shift
	ErrActiveShiftExists = errors.New("worker already has an active shift")
	// ErrNotClockedIn is returned when a conditional clock-out matched no active shift
	ErrNotClockedIn = errors.New("shift is not clocked in")
	// ErrDuplicateEmail is returned when a user email is already registered
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the persistence boundary for users, perimeters and shifts.
// Implementations must enforce the single-active-shift invariant atomically.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsersByRole(ctx context.Context, role models.Role) (int64, error)

	// UpsertPerimeter inserts or replaces the perimeter owned by p.OwnerID
	UpsertPerimeter(ctx context.Context, p *models.Perimeter) error
	FindPerimeterByOwner(ctx context.Context, ownerID string) (*models.Perimeter, error)
	// FirstPerimeter returns the earliest created perimeter in the system
	FirstPerimeter(ctx context.Context) (*models.Perimeter, error)

	// CreateShift inserts a clocked-in shift or fails with ErrActiveShiftExists
	CreateShift(ctx context.Context, s *models.Shift) error
	FindShift(ctx context.Context, id string) (*models.Shift, error)
	// CompleteShift clocks out the shift only if it is owned by workerID and still clocked in
	CompleteShift(ctx context.Context, shiftID, workerID string, out models.ClockOut) (*models.Shift, error)
	FindActiveShift(ctx context.Context, workerID string) (*models.Shift, error)
	// ListShiftsByWorker orders by clock-in time, newest first
	ListShiftsByWorker(ctx context.Context, workerID string) ([]models.Shift, error)
	ListActiveShifts(ctx context.Context) ([]models.Shift, error)
	// ListShifts orders by worker id, then clock-in time ascending
	ListShifts(ctx context.Context) ([]models.Shift, error)
	// ListCompletedShiftsSince returns clocked-out shifts with clock-in at or after since
	ListCompletedShiftsSince(ctx context.Context, since time.Time) ([]models.Shift, error)

	Close(ctx context.Context) error
}
