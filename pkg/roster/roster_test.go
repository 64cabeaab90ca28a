package roster

import (
	"context"
	"testing"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store/storetest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func TestGroupByWorker(t *testing.T) {
	shifts := []models.Shift{
		{ID: "b2", WorkerID: "b", ClockInTime: base.Add(48 * time.Hour)},
		{ID: "a1", WorkerID: "a", ClockInTime: base},
		{ID: "b1", WorkerID: "b", ClockInTime: base.Add(24 * time.Hour)},
	}
	identities := map[string]models.WorkerIdentity{"a": {ID: "a", Name: "Asha"}}

	got := GroupByWorker(shifts, identities)

	want := []WorkerShifts{
		{Worker: models.WorkerIdentity{ID: "a", Name: "Asha"}, Shifts: []models.Shift{shifts[1]}},
		{Worker: models.WorkerIdentity{ID: "b"}, Shifts: []models.Shift{shifts[2], shifts[0]}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupByWorker() mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, GroupByWorker(nil, nil))
}

func TestService_Queries(t *testing.T) {
	s := storetest.New(t)
	asha := storetest.AddUser(t, s, "Asha Rao", models.RoleWorker, "")
	ben := storetest.AddUser(t, s, "Ben Cole", models.RoleWorker, "")

	storetest.AddShift(t, s, asha.ID, base, base.Add(8*time.Hour))
	open := storetest.AddShift(t, s, asha.ID, base.Add(24*time.Hour), time.Time{})
	storetest.AddShift(t, s, ben.ID, base.Add(2*time.Hour), base.Add(6*time.Hour))

	svc := NewService(s)
	ctx := context.Background()

	active, err := svc.ListCurrentlyClockedIn(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].Shift.ID)
	assert.Equal(t, asha.Identity(), active[0].Worker)

	groups, err := svc.ListAllShiftsGroupedByWorker(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	total := 0
	for _, g := range groups {
		total += len(g.Shifts)
		for i := 1; i < len(g.Shifts); i++ {
			assert.True(t, g.Shifts[i-1].ClockInTime.Before(g.Shifts[i].ClockInTime))
		}
	}
	assert.Equal(t, 3, total, "open shift is part of the history")
	assert.Less(t, groups[0].Worker.ID, groups[1].Worker.ID)
}
