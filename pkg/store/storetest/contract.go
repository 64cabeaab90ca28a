package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

// RunContract checks the behavior every Store implementation shares.
// open must return an empty store for each call.
func RunContract(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("upsert perimeter", func(t *testing.T) { testUpsertPerimeter(t, open(t)) })
	t.Run("first perimeter", func(t *testing.T) { testFirstPerimeter(t, open(t)) })
	t.Run("single active shift", func(t *testing.T) { testSingleActiveShift(t, open(t)) })
	t.Run("complete shift", func(t *testing.T) { testCompleteShift(t, open(t)) })
	t.Run("list queries", func(t *testing.T) { testListQueries(t, open(t)) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	manager := AddUser(t, s, "Meera Manager", models.RoleManager, "")
	worker := AddUser(t, s, "Wes Worker", models.RoleWorker, manager.ID)

	got, err := s.FindUserByEmail(ctx, worker.Email)
	require.NoError(t, err)
	assert.Equal(t, worker.ID, got.ID)
	assert.Equal(t, manager.ID, got.ManagerID)
	assert.Equal(t, models.RoleWorker, got.Role)

	byID, err := s.FindUser(ctx, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera Manager", byID.Name)

	dup := models.User{ID: uuid.NewString(), Name: "Other", Email: worker.Email, Role: models.RoleWorker, PasswordHash: "x"}
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), store.ErrDuplicateEmail)

	_, err = s.FindUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	count, err := s.CountUsersByRole(ctx, models.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func testUpsertPerimeter(t *testing.T, s store.Store) {
	ctx := context.Background()

	created := AddPerimeter(t, s, "manager-1", geo.Coordinate{Lat: 1, Lng: 2}, 1500)
	require.NotEmpty(t, created.ID)

	replacement := models.Perimeter{
		ID:           uuid.NewString(),
		OwnerID:      "manager-1",
		Center:       geo.Coordinate{Lat: 3, Lng: 4},
		RadiusMeters: 800,
		Address:      "New Site",
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.UpsertPerimeter(ctx, &replacement))

	assert.Equal(t, created.ID, replacement.ID, "upsert keeps the first row id")
	assert.Equal(t, "manager-1", replacement.OwnerID)
	assert.Equal(t, geo.Coordinate{Lat: 3, Lng: 4}, replacement.Center)
	assert.Equal(t, 800.0, replacement.RadiusMeters)
	assert.Equal(t, "New Site", replacement.Address)

	stored, err := s.FindPerimeterByOwner(ctx, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
	assert.Equal(t, 800.0, stored.RadiusMeters)

	_, err = s.FindPerimeterByOwner(ctx, "manager-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testFirstPerimeter(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.FirstPerimeter(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	for i, owner := range []string{"manager-late", "manager-early"} {
		p := models.Perimeter{
			ID:           uuid.NewString(),
			OwnerID:      owner,
			RadiusMeters: 100,
			CreatedAt:    base.Add(time.Duration(1-i) * time.Hour),
		}
		require.NoError(t, s.UpsertPerimeter(ctx, &p))
	}

	first, err := s.FirstPerimeter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "manager-early", first.OwnerID)
}

func testSingleActiveShift(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := AddShift(t, s, "worker-1", base, time.Time{})
	assert.Equal(t, models.StatusClockedIn, first.Status)

	second := models.Shift{ID: uuid.NewString(), WorkerID: "worker-1", ClockInTime: base.Add(time.Minute), Status: models.StatusClockedIn}
	assert.ErrorIs(t, s.CreateShift(ctx, &second), store.ErrActiveShiftExists)

	// another worker is unaffected
	AddShift(t, s, "worker-2", base, time.Time{})

	// a closed shift frees the slot
	_, err := s.CompleteShift(ctx, first.ID, "worker-1", models.ClockOut{Time: base.Add(time.Hour)})
	require.NoError(t, err)
	AddShift(t, s, "worker-1", base.Add(2*time.Hour), time.Time{})
}

func testCompleteShift(t *testing.T, s store.Store) {
	ctx := context.Background()

	sh := AddShift(t, s, "worker-1", base, time.Time{})
	out := models.ClockOut{Time: base.Add(8 * time.Hour), Location: geo.Coordinate{Lat: 5, Lng: 6}, Notes: "done"}

	_, err := s.CompleteShift(ctx, sh.ID, "worker-2", out)
	assert.ErrorIs(t, err, store.ErrNotClockedIn, "other workers cannot close the shift")

	done, err := s.CompleteShift(ctx, sh.ID, "worker-1", out)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClockedOut, done.Status)
	require.NotNil(t, done.ClockOutTime)
	assert.True(t, done.ClockOutTime.Equal(out.Time))
	assert.Equal(t, &geo.Coordinate{Lat: 5, Lng: 6}, done.ClockOutLocation)
	assert.Equal(t, "done", done.ClockOutNotes)

	found, err := s.FindShift(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClockedOut, found.Status)

	_, err = s.CompleteShift(ctx, sh.ID, "worker-1", out)
	assert.ErrorIs(t, err, store.ErrNotClockedIn)

	_, err = s.CompleteShift(ctx, "missing", "worker-1", out)
	assert.ErrorIs(t, err, store.ErrNotClockedIn)

	_, err = s.FindActiveShift(ctx, "worker-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.FindShift(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testListQueries(t *testing.T, s store.Store) {
	ctx := context.Background()

	old := AddShift(t, s, "worker-a", base.Add(-10*24*time.Hour), base.Add(-10*24*time.Hour+time.Hour))
	recent := AddShift(t, s, "worker-a", base, base.Add(8*time.Hour))
	open := AddShift(t, s, "worker-a", base.Add(24*time.Hour), time.Time{})
	other := AddShift(t, s, "worker-b", base.Add(time.Hour), base.Add(5*time.Hour))

	mine, err := s.ListShiftsByWorker(ctx, "worker-a")
	require.NoError(t, err)
	assert.Equal(t, []string{open.ID, recent.ID, old.ID}, ShiftIDs(mine))

	active, err := s.ListActiveShifts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{open.ID}, ShiftIDs(active))

	all, err := s.ListShifts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{old.ID, recent.ID, open.ID, other.ID}, ShiftIDs(all))

	completed, err := s.ListCompletedShiftsSince(ctx, base.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{recent.ID, other.ID}, ShiftIDs(completed))

	current, err := s.FindActiveShift(ctx, "worker-a")
	require.NoError(t, err)
	assert.Equal(t, open.ID, current.ID)
	assert.True(t, current.ClockInTime.Equal(base.Add(24*time.Hour)))
}

// ShiftIDs returns the ids in order
func ShiftIDs(shifts []models.Shift) []string {
	out := make([]string, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, s.ID)
	}
	return out
}
