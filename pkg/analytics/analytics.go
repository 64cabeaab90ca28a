package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Window is how far back the weekly summary looks
const Window = 7 * 24 * time.Hour

// DateLayout is the UTC day key used for buckets
const DateLayout = "2006-01-02"

// DailyAggregate is one day of completed shifts
type DailyAggregate struct {
	Date       string  `json:"date"`
	Shifts     int     `json:"shifts"`
	Workers    int     `json:"workers"`
	TotalHours float64 `json:"total_hours"`
	AvgHours   float64 `json:"avg_hours"`
}

// StaffWeeklyTotal is a worker's hours over the window
type StaffWeeklyTotal struct {
	Worker     models.WorkerIdentity `json:"worker"`
	TotalHours float64               `json:"total_hours"`
	Shifts     int                   `json:"shifts"`
}

// WeeklySummary is the manager dashboard payload
type WeeklySummary struct {
	WindowStart         time.Time          `json:"window_start"`
	WindowEnd           time.Time          `json:"window_end"`
	AvgHoursPerDay      map[string]float64 `json:"avg_hours_per_day"`
	CountClockInsPerDay map[string]int     `json:"count_clock_ins_per_day"`
	TotalHoursPerStaff  []StaffWeeklyTotal `json:"total_hours_per_staff"`
	Days                []DailyAggregate   `json:"days"`
}

// InWindow reports whether a shift counts toward the summary ending at ref
func InWindow(s models.Shift, ref time.Time) bool {
	return s.ClockOutTime != nil && !s.ClockInTime.Before(ref.Add(-Window))
}

// Summarize aggregates completed shifts from the seven days before ref.
// Workers missing from the users slice are reported by id only.
func Summarize(shifts []models.Shift, users []models.User, ref time.Time) WeeklySummary {
	ref = ref.UTC()
	identities := make(map[string]models.WorkerIdentity, len(users))
	for _, u := range users {
		identities[u.ID] = u.Identity()
	}

	type day struct {
		shifts  int
		hours   float64
		workers map[string]struct{}
	}
	days := make(map[string]*day)
	staff := make(map[string]*StaffWeeklyTotal)

	for _, s := range shifts {
		if !InWindow(s, ref) {
			continue
		}
		hours, _ := s.DurationHours()
		key := s.ClockInTime.UTC().Format(DateLayout)

		d, ok := days[key]
		if !ok {
			d = &day{workers: make(map[string]struct{})}
			days[key] = d
		}
		d.shifts++
		d.hours += hours
		d.workers[s.WorkerID] = struct{}{}

		st, ok := staff[s.WorkerID]
		if !ok {
			id, known := identities[s.WorkerID]
			if !known {
				id = models.WorkerIdentity{ID: s.WorkerID}
			}
			st = &StaffWeeklyTotal{Worker: id}
			staff[s.WorkerID] = st
		}
		st.TotalHours += hours
		st.Shifts++
	}

	summary := WeeklySummary{
		WindowStart:         ref.Add(-Window),
		WindowEnd:           ref,
		AvgHoursPerDay:      make(map[string]float64, len(days)),
		CountClockInsPerDay: make(map[string]int, len(days)),
		TotalHoursPerStaff:  make([]StaffWeeklyTotal, 0, len(staff)),
		Days:                make([]DailyAggregate, 0, len(days)),
	}

	for key, d := range days {
		avg := d.hours / float64(d.shifts)
		summary.AvgHoursPerDay[key] = avg
		summary.CountClockInsPerDay[key] = len(d.workers)
		summary.Days = append(summary.Days, DailyAggregate{
			Date:       key,
			Shifts:     d.shifts,
			Workers:    len(d.workers),
			TotalHours: d.hours,
			AvgHours:   avg,
		})
	}
	sort.Slice(summary.Days, func(i, j int) bool { return summary.Days[i].Date < summary.Days[j].Date })

	for _, st := range staff {
		summary.TotalHoursPerStaff = append(summary.TotalHoursPerStaff, *st)
	}
	sort.Slice(summary.TotalHoursPerStaff, func(i, j int) bool {
		a, b := summary.TotalHoursPerStaff[i], summary.TotalHoursPerStaff[j]
		if a.TotalHours != b.TotalHours {
			return a.TotalHours > b.TotalHours
		}
		return a.Worker.ID < b.Worker.ID
	})

	return summary
}

// Engine computes summaries from a store snapshot
type Engine struct {
	store store.Store
	now   func() time.Time
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// WeeklySummary loads the window's shifts and the user directory concurrently,
// then aggregates them as of now
func (e *Engine) WeeklySummary(ctx context.Context) (*WeeklySummary, error) {
	ref := e.now().UTC()

	var shifts []models.Shift
	var users []models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shifts, err = e.store.ListCompletedShiftsSince(gctx, ref.Add(-Window))
		return err
	})
	g.Go(func() error {
		var err error
		users, err = e.store.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal(err)
	}

	summary := Summarize(shifts, users, ref)
	return &summary, nil
}
