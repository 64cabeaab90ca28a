package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// User represents the users table
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Role         string    `gorm:"size:16;not null;index"`
	ManagerID    *string   `gorm:"size:36;index"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
}

// Perimeter represents the perimeters table, one row per manager
type Perimeter struct {
	ID           string  `gorm:"primaryKey;size:36"`
	OwnerID      string  `gorm:"size:36;uniqueIndex;not null"`
	CenterLat    float64 `gorm:"not null"`
	CenterLng    float64 `gorm:"not null"`
	RadiusMeters float64 `gorm:"not null;default:2000"`
	Address      string
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

// Shift represents the shifts table
type Shift struct {
	ID            string    `gorm:"primaryKey;size:36"`
	WorkerID      string    `gorm:"size:36;not null;index:idx_shifts_worker_clock_in,priority:1"`
	ClockInTime   time.Time `gorm:"not null;index;index:idx_shifts_worker_clock_in,priority:2"`
	ClockInLat    float64   `gorm:"not null"`
	ClockInLng    float64   `gorm:"not null"`
	ClockInNotes  string
	ClockOutTime  *time.Time
	ClockOutLat   *float64
	ClockOutLng   *float64
	ClockOutNotes *string
	Status        string `gorm:"size:16;not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// activeShiftIndex guarantees at most one clocked-in shift per worker.
// Partial unique indexes are supported by both Postgres and SQLite.
const activeShiftIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_active ON shifts (worker_id) WHERE status = 'clock_in'`

// Options selects and tunes the SQL backend
type Options struct {
	// DSN selects Postgres when set
	DSN string
	// DataPath is the SQLite file (or URI) used when DSN is empty
	DataPath string
	// MaxOpenConns caps the pool. SQLite defaults to 1 so writers queue in the
	// pool instead of failing with "database is locked".
	MaxOpenConns int
	Silent       bool
}

// InitDB opens the database connection and migrates the schema
func InitDB(opts Options) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	maxOpen := opts.MaxOpenConns

	cfg := &gorm.Config{TranslateError: true}
	if opts.Silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	if opts.DSN != "" {
		cfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true,
		}), cfg)
	} else {
		dbPath := opts.DataPath
		if dbPath == "" {
			dbPath = "shifts.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), cfg)
		if maxOpen <= 0 {
			maxOpen = 1
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if maxOpen > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Perimeter{}, &Shift{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeShiftIndex).Error; err != nil {
		return fmt.Errorf("create active shift index: %w", err)
	}
	return nil
}
