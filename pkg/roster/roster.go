package roster

import (
	"context"
	"sort"

	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"golang.org/x/sync/errgroup"
)

// ActiveEntry is a clocked-in shift joined with its worker
type ActiveEntry struct {
	Shift  models.Shift          `json:"shift"`
	Worker models.WorkerIdentity `json:"worker"`
}

// WorkerShifts is one worker's shift history
type WorkerShifts struct {
	Worker models.WorkerIdentity `json:"worker"`
	Shifts []models.Shift        `json:"shifts"`
}

// Service answers manager presence and history queries
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// ListCurrentlyClockedIn returns every open shift with the worker's identity
func (s *Service) ListCurrentlyClockedIn(ctx context.Context) ([]ActiveEntry, error) {
	shifts, identities, err := s.snapshot(ctx, s.store.ListActiveShifts)
	if err != nil {
		return nil, err
	}

	entries := make([]ActiveEntry, 0, len(shifts))
	for _, sh := range shifts {
		entries = append(entries, ActiveEntry{Shift: sh, Worker: identityFor(identities, sh.WorkerID)})
	}
	return entries, nil
}

// ListAllShiftsGroupedByWorker returns the full shift history grouped per worker
func (s *Service) ListAllShiftsGroupedByWorker(ctx context.Context) ([]WorkerShifts, error) {
	shifts, identities, err := s.snapshot(ctx, s.store.ListShifts)
	if err != nil {
		return nil, err
	}
	return GroupByWorker(shifts, identities), nil
}

func (s *Service) snapshot(ctx context.Context, list func(context.Context) ([]models.Shift, error)) ([]models.Shift, map[string]models.WorkerIdentity, error) {
	var shifts []models.Shift
	var users []models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shifts, err = list(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.store.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, apperr.Internal(err)
	}

	identities := make(map[string]models.WorkerIdentity, len(users))
	for _, u := range users {
		identities[u.ID] = u.Identity()
	}
	return shifts, identities, nil
}

// GroupByWorker groups shifts by worker id ascending, each group ordered by clock-in time
func GroupByWorker(shifts []models.Shift, identities map[string]models.WorkerIdentity) []WorkerShifts {
	byWorker := make(map[string][]models.Shift)
	for _, sh := range shifts {
		byWorker[sh.WorkerID] = append(byWorker[sh.WorkerID], sh)
	}

	ids := make([]string, 0, len(byWorker))
	for id := range byWorker {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	groups := make([]WorkerShifts, 0, len(ids))
	for _, id := range ids {
		list := byWorker[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].ClockInTime.Before(list[j].ClockInTime) })
		groups = append(groups, WorkerShifts{Worker: identityFor(identities, id), Shifts: list})
	}
	return groups
}

func identityFor(identities map[string]models.WorkerIdentity, id string) models.WorkerIdentity {
	if w, ok := identities[id]; ok {
		return w
	}
	return models.WorkerIdentity{ID: id}
}
