// Package storetest opens throwaway stores for tests and holds the checks
// every Store implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/database"
	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/google/uuid"
)

var seq atomic.Int64

// New returns a GormStore on a private in-memory SQLite database.
// The pool is capped at one connection so the database lives as long as the test.
func New(t testing.TB) *store.GormStore {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.InitDB(database.Options{DataPath: dsn, MaxOpenConns: 1, Silent: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	s := store.NewGormStore(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// NewMongo returns a MongoStore on a fresh database of the server at
// MONGODB_URI and drops that database when the test ends. The test is
// skipped when MONGODB_URI is unset.
func NewMongo(t testing.TB) *store.MongoStore {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	name := fmt.Sprintf("clockin_test_%d_%d", seq.Add(1), time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s, err := store.NewMongoStore(ctx, uri, name)
	if err != nil {
		t.Fatalf("open test mongodb: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

// AddUser inserts a user with the given role and returns it
func AddUser(t testing.TB, s store.Store, name string, role models.Role, managerID string) models.User {
	t.Helper()

	u := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:         role,
		ManagerID:    managerID,
		PasswordHash: "not-a-hash",
	}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// AddPerimeter stores a perimeter owned by ownerID
func AddPerimeter(t testing.TB, s store.Store, ownerID string, center geo.Coordinate, radius float64) models.Perimeter {
	t.Helper()

	p := models.Perimeter{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Center:       center,
		RadiusMeters: radius,
		Address:      "Test Site",
	}
	if err := s.UpsertPerimeter(context.Background(), &p); err != nil {
		t.Fatalf("upsert perimeter: %v", err)
	}
	return p
}

// AddShift stores a shift directly, completed when out is non-zero
func AddShift(t testing.TB, s store.Store, workerID string, in, out time.Time) models.Shift {
	t.Helper()
	ctx := context.Background()

	sh := models.Shift{
		ID:           uuid.NewString(),
		WorkerID:     workerID,
		ClockInTime:  in,
		ClockInNotes: models.DefaultClockInNotes,
		Status:       models.StatusClockedIn,
	}
	if err := s.CreateShift(ctx, &sh); err != nil {
		t.Fatalf("create shift: %v", err)
	}
	if out.IsZero() {
		return sh
	}

	done, err := s.CompleteShift(ctx, sh.ID, workerID, models.ClockOut{Time: out, Notes: models.DefaultClockOutNotes})
	if err != nil {
		t.Fatalf("complete shift: %v", err)
	}
	return *done
}
