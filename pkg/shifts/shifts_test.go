package shifts

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/database"
	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/perimeter"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/arnavshah/clockin-api-go/pkg/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

var (
	site    = geo.Coordinate{Lat: 0, Lng: 0}
	inside  = geo.Coordinate{Lat: 0, Lng: 0.01}
	outside = geo.Coordinate{Lat: 0, Lng: 0.0225}
)

type fixture struct {
	store   *store.GormStore
	manager *Manager
	worker  models.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	s := storetest.New(t)
	boss := storetest.AddUser(t, s, "Site Manager", models.RoleManager, "")
	worker := storetest.AddUser(t, s, "Night Worker", models.RoleWorker, boss.ID)
	storetest.AddPerimeter(t, s, boss.ID, site, 2000)

	log := zap.NewNop()
	return fixture{
		store:   s,
		manager: NewManager(s, perimeter.NewService(s, log, 0), log),
		worker:  worker,
	}
}

func at(hour int) *time.Time {
	t := time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
	return &t
}

func loc(c geo.Coordinate) *geo.Coordinate { return &c }

func TestClockIn_InsidePerimeter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	shift, err := f.manager.ClockIn(ctx, f.worker.ID, ClockInInput{Time: at(9), Location: loc(inside)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClockedIn, shift.Status)
	assert.Equal(t, models.DefaultClockInNotes, shift.ClockInNotes)
	assert.Equal(t, *at(9), shift.ClockInTime)

	active, err := f.manager.GetActiveShift(ctx, f.worker.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, shift.ID, active.ID)
}

func TestClockIn_OutsidePerimeter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.ClockIn(ctx, f.worker.ID, ClockInInput{Time: at(9), Location: loc(outside)})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	active, err := f.manager.GetActiveShift(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.Nil(t, active, "nothing persisted on a rejected clock-in")
}

func TestClockIn_NoPerimeter(t *testing.T) {
	s := storetest.New(t)
	worker := storetest.AddUser(t, s, "Lone Worker", models.RoleWorker, "")
	m := NewManager(s, perimeter.NewService(s, zap.NewNop(), 0), zap.NewNop())

	_, err := m.ClockIn(context.Background(), worker.ID, ClockInInput{Time: at(9), Location: loc(inside)})
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestClockIn_Validation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		in   ClockInInput
	}{
		{"missing time", ClockInInput{Location: loc(inside)}},
		{"zero time", ClockInInput{Time: &time.Time{}, Location: loc(inside)}},
		{"missing location", ClockInInput{Time: at(9)}},
		{"latitude out of range", ClockInInput{Time: at(9), Location: loc(geo.Coordinate{Lat: 95})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.ClockIn(context.Background(), f.worker.ID, tt.in)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestClockIn_AlreadyClockedIn(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.ClockIn(ctx, f.worker.ID, ClockInInput{Time: at(9), Location: loc(inside)})
	require.NoError(t, err)

	_, err = f.manager.ClockIn(ctx, f.worker.ID, ClockInInput{Time: at(10), Location: loc(inside)})
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

// raceClockIns fires n simultaneous clock-ins for one worker
func raceClockIns(t *testing.T, m *Manager, workerID string, n int) (wins, rejected int32) {
	t.Helper()
	var won, lost atomic.Int32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := m.ClockIn(context.Background(), workerID, ClockInInput{Time: at(9), Location: loc(inside)})
			switch {
			case err == nil:
				won.Add(1)
			case apperr.KindOf(err) == apperr.KindPrecondition:
				lost.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	return won.Load(), lost.Load()
}

func TestClockIn_ConcurrentSingleWinner(t *testing.T) {
	f := setup(t)

	wins, rejected := raceClockIns(t, f.manager, f.worker.ID, 8)
	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(7), rejected)

	all, err := f.manager.ListShiftsForWorker(context.Background(), f.worker.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestClockIn_ConcurrentOnFileDatabase(t *testing.T) {
	db, err := database.InitDB(database.Options{DataPath: filepath.Join(t.TempDir(), "shifts.db"), Silent: true})
	require.NoError(t, err)
	s := store.NewGormStore(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	boss := storetest.AddUser(t, s, "Site Manager", models.RoleManager, "")
	storetest.AddPerimeter(t, s, boss.ID, site, 2000)
	m := NewManager(s, perimeter.NewService(s, zap.NewNop(), 0), zap.NewNop())

	for round := 0; round < 5; round++ {
		worker := storetest.AddUser(t, s, fmt.Sprintf("Worker %d", round), models.RoleWorker, boss.ID)

		wins, rejected := raceClockIns(t, m, worker.ID, 8)
		assert.Equal(t, int32(1), wins, "round %d", round)
		assert.Equal(t, int32(7), rejected, "round %d: duplicates are preconditions, not internal errors", round)
	}
}

func TestClockOut(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	shift, err := f.manager.ClockIn(ctx, f.worker.ID, ClockInInput{Time: at(9), Location: loc(inside)})
	require.NoError(t, err)

	_, err = f.manager.ClockOut(ctx, f.worker.ID, shift.ID, ClockOutInput{Time: at(9), Location: loc(inside)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "clock-out must be after clock-in")

	done, err := f.manager.ClockOut(ctx, f.worker.ID, shift.ID, ClockOutInput{Time: at(17), Location: loc(outside), Notes: "handover done"})
	require.NoError(t, err, "clock-out has no geofence check")
	assert.Equal(t, models.StatusClockedOut, done.Status)
	assert.Equal(t, "handover done", done.ClockOutNotes)
	require.NotNil(t, done.ClockOutTime)
	hours, ok := done.DurationHours()
	assert.True(t, ok)
	assert.Equal(t, 8.0, hours)

	_, err = f.manager.ClockOut(ctx, f.worker.ID, shift.ID, ClockOutInput{Time: at(18), Location: loc(inside)})
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err), "double clock-out")

	active, err := f.manager.GetActiveShift(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestClockOut_Preconditions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other := storetest.AddUser(t, f.store, "Day Worker", models.RoleWorker, "")

	shift, err := f.manager.ClockIn(ctx, f.worker.ID, ClockInInput{Time: at(9), Location: loc(inside)})
	require.NoError(t, err)

	_, err = f.manager.ClockOut(ctx, f.worker.ID, "no-such-shift", ClockOutInput{Time: at(17), Location: loc(inside)})
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err), "unknown shift")

	_, err = f.manager.ClockOut(ctx, other.ID, shift.ID, ClockOutInput{Time: at(17), Location: loc(inside)})
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err), "someone else's shift")

	_, err = f.manager.ClockOut(ctx, f.worker.ID, shift.ID, ClockOutInput{Time: at(17)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "missing location")

	done, err := f.manager.ClockOut(ctx, f.worker.ID, shift.ID, ClockOutInput{Time: at(17), Location: loc(inside)})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultClockOutNotes, done.ClockOutNotes)
}

func TestListShiftsForWorker_NewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, h := range []int{6, 12, 18} {
		shift, err := f.manager.ClockIn(ctx, f.worker.ID, ClockInInput{Time: at(h), Location: loc(inside)})
		require.NoError(t, err)
		_, err = f.manager.ClockOut(ctx, f.worker.ID, shift.ID, ClockOutInput{Time: at(h + 2), Location: loc(inside)})
		require.NoError(t, err)
	}

	got, err := f.manager.ListShiftsForWorker(ctx, f.worker.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].ClockInTime.Equal(*at(18)))
	assert.True(t, got[2].ClockInTime.Equal(*at(6)))
}
