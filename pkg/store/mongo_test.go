package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/arnavshah/clockin-api-go/pkg/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMongoStore_Contract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) store.Store { return storetest.NewMongo(t) })
}

func TestMongoStore_ConcurrentCreateShift(t *testing.T) {
	s := storetest.NewMongo(t)

	var g errgroup.Group
	errs := make([]error, 8)
	for i := range errs {
		i := i
		g.Go(func() error {
			sh := models.Shift{ID: uuid.NewString(), WorkerID: "worker-1", ClockInTime: base, Status: models.StatusClockedIn}
			errs[i] = s.CreateShift(context.Background(), &sh)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var created int
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, store.ErrActiveShiftExists)
	}
	assert.Equal(t, 1, created)
}

func TestNewMongoStore_UnreachableReleasesClient(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := store.NewMongoStore(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200", "clockin_unreachable")
	assert.Error(t, err)
	assert.Nil(t, s)
}
