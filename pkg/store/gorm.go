package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/database"
	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on Postgres or SQLite
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	row := userRow(u)
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt = row.CreatedAt
	return nil
}

func (s *GormStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	var row database.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err, "find user")
	}
	u := userModel(row)
	return &u, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row database.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, notFound(err, "find user by email")
	}
	u := userModel(row)
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var rows []database.User
	if err := s.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, userModel(r))
	}
	return users, nil
}

func (s *GormStore) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&database.User{}).Where("role = ?", string(role)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// UpsertPerimeter uses a single-query upsert on the owner column
func (s *GormStore) UpsertPerimeter(ctx context.Context, p *models.Perimeter) error {
	row := perimeterRow(p)
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"center_lat", "center_lng", "radius_meters", "address", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert perimeter: %w", err)
	}

	stored, err := s.FindPerimeterByOwner(ctx, p.OwnerID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (s *GormStore) FindPerimeterByOwner(ctx context.Context, ownerID string) (*models.Perimeter, error) {
	var row database.Perimeter
	if err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).First(&row).Error; err != nil {
		return nil, notFound(err, "find perimeter")
	}
	p := perimeterModel(row)
	return &p, nil
}

func (s *GormStore) FirstPerimeter(ctx context.Context) (*models.Perimeter, error) {
	var row database.Perimeter
	if err := s.DB.WithContext(ctx).Order("created_at asc").Order("id asc").First(&row).Error; err != nil {
		return nil, notFound(err, "find first perimeter")
	}
	p := perimeterModel(row)
	return &p, nil
}

// CreateShift checks for an active shift and inserts inside one transaction.
// The partial unique index catches writers that race past the check.
func (s *GormStore) CreateShift(ctx context.Context, sh *models.Shift) error {
	row := shiftRow(sh)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.Shift{}).
			Where("worker_id = ? AND status = ?", row.WorkerID, string(models.StatusClockedIn)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrActiveShiftExists
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, ErrActiveShiftExists) || isDuplicateKey(err) {
			return ErrActiveShiftExists
		}
		return fmt.Errorf("create shift: %w", err)
	}
	*sh = shiftModel(row)
	return nil
}

func (s *GormStore) FindShift(ctx context.Context, id string) (*models.Shift, error) {
	var row database.Shift
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err, "find shift")
	}
	sh := shiftModel(row)
	return &sh, nil
}

// CompleteShift is a conditional update, only one concurrent caller can win it
func (s *GormStore) CompleteShift(ctx context.Context, shiftID, workerID string, out models.ClockOut) (*models.Shift, error) {
	outTime := out.Time.UTC()
	lat, lng, notes := out.Location.Lat, out.Location.Lng, out.Notes

	res := s.DB.WithContext(ctx).Model(&database.Shift{}).
		Where("id = ? AND worker_id = ? AND status = ?", shiftID, workerID, string(models.StatusClockedIn)).
		Updates(map[string]interface{}{
			"clock_out_time":  outTime,
			"clock_out_lat":   lat,
			"clock_out_lng":   lng,
			"clock_out_notes": notes,
			"status":          string(models.StatusClockedOut),
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("complete shift: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotClockedIn
	}
	return s.FindShift(ctx, shiftID)
}

func (s *GormStore) FindActiveShift(ctx context.Context, workerID string) (*models.Shift, error) {
	var row database.Shift
	err := s.DB.WithContext(ctx).
		Where("worker_id = ? AND status = ?", workerID, string(models.StatusClockedIn)).
		Order("clock_in_time desc").
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "find active shift")
	}
	sh := shiftModel(row)
	return &sh, nil
}

func (s *GormStore) ListShiftsByWorker(ctx context.Context, workerID string) ([]models.Shift, error) {
	return s.findShifts(ctx, s.DB.Where("worker_id = ?", workerID).Order("clock_in_time desc"))
}

func (s *GormStore) ListActiveShifts(ctx context.Context) ([]models.Shift, error) {
	return s.findShifts(ctx, s.DB.Where("status = ?", string(models.StatusClockedIn)).Order("clock_in_time asc"))
}

func (s *GormStore) ListShifts(ctx context.Context) ([]models.Shift, error) {
	return s.findShifts(ctx, s.DB.Order("worker_id asc").Order("clock_in_time asc"))
}

func (s *GormStore) ListCompletedShiftsSince(ctx context.Context, since time.Time) ([]models.Shift, error) {
	return s.findShifts(ctx, s.DB.
		Where("clock_in_time >= ? AND clock_out_time IS NOT NULL", since.UTC()).
		Order("clock_in_time asc"))
}

func (s *GormStore) findShifts(ctx context.Context, q *gorm.DB) ([]models.Shift, error) {
	var rows []database.Shift
	if err := q.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	shifts := make([]models.Shift, 0, len(rows))
	for _, r := range rows {
		shifts = append(shifts, shiftModel(r))
	}
	return shifts, nil
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isDuplicateKey also matches raw driver messages for drivers without error translation
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

func userRow(u *models.User) database.User {
	row := database.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	if u.ManagerID != "" {
		managerID := u.ManagerID
		row.ManagerID = &managerID
	}
	return row
}

func userModel(r database.User) models.User {
	u := models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         models.Role(r.Role),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
	if r.ManagerID != nil {
		u.ManagerID = *r.ManagerID
	}
	return u
}

func perimeterRow(p *models.Perimeter) database.Perimeter {
	return database.Perimeter{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		CenterLat:    p.Center.Lat,
		CenterLng:    p.Center.Lng,
		RadiusMeters: p.RadiusMeters,
		Address:      p.Address,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func perimeterModel(r database.Perimeter) models.Perimeter {
	return models.Perimeter{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Center:       geo.Coordinate{Lat: r.CenterLat, Lng: r.CenterLng},
		RadiusMeters: r.RadiusMeters,
		Address:      r.Address,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func shiftRow(s *models.Shift) database.Shift {
	row := database.Shift{
		ID:           s.ID,
		WorkerID:     s.WorkerID,
		ClockInTime:  s.ClockInTime.UTC(),
		ClockInLat:   s.ClockInLocation.Lat,
		ClockInLng:   s.ClockInLocation.Lng,
		ClockInNotes: s.ClockInNotes,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.ClockOutTime != nil {
		t := s.ClockOutTime.UTC()
		row.ClockOutTime = &t
	}
	if s.ClockOutLocation != nil {
		lat, lng := s.ClockOutLocation.Lat, s.ClockOutLocation.Lng
		row.ClockOutLat, row.ClockOutLng = &lat, &lng
	}
	if s.ClockOutNotes != "" {
		notes := s.ClockOutNotes
		row.ClockOutNotes = &notes
	}
	return row
}

func shiftModel(r database.Shift) models.Shift {
	s := models.Shift{
		ID:              r.ID,
		WorkerID:        r.WorkerID,
		ClockInTime:     r.ClockInTime.UTC(),
		ClockInLocation: geo.Coordinate{Lat: r.ClockInLat, Lng: r.ClockInLng},
		ClockInNotes:    r.ClockInNotes,
		Status:          models.ShiftStatus(r.Status),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
	if r.ClockOutTime != nil {
		t := r.ClockOutTime.UTC()
		s.ClockOutTime = &t
	}
	if r.ClockOutLat != nil && r.ClockOutLng != nil {
		s.ClockOutLocation = &geo.Coordinate{Lat: *r.ClockOutLat, Lng: *r.ClockOutLng}
	}
	if r.ClockOutNotes != nil {
		s.ClockOutNotes = *r.ClockOutNotes
	}
	return s
}
