package perimeter

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/geo"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRadiusMeters applies when a manager does not give a radius
const DefaultRadiusMeters = 2000.0

// SetInput is a manager's perimeter update
type SetInput struct {
	Center       *geo.Coordinate `json:"center"`
	RadiusMeters *float64        `json:"radiusMeters"`
	Address      string          `json:"address"`
}

// Service owns the one-perimeter-per-manager rules
type Service struct {
	store         store.Store
	log           *zap.Logger
	defaultRadius float64
	now           func() time.Time
}

func NewService(s store.Store, log *zap.Logger, defaultRadius float64) *Service {
	if defaultRadius <= 0 {
		defaultRadius = DefaultRadiusMeters
	}
	return &Service{store: s, log: log, defaultRadius: defaultRadius, now: time.Now}
}

// SetPerimeter creates or replaces the perimeter owned by ownerID.
// It reports whether a new perimeter was created.
func (s *Service) SetPerimeter(ctx context.Context, ownerID string, in SetInput) (*models.Perimeter, bool, error) {
	if in.Center == nil {
		return nil, false, apperr.Validation("latitude and longitude are required")
	}
	if err := in.Center.Validate(); err != nil {
		return nil, false, apperr.Validation(err.Error())
	}

	radius := s.defaultRadius
	if in.RadiusMeters != nil && *in.RadiusMeters != 0 {
		radius = *in.RadiusMeters
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return nil, false, apperr.Validation("radius must be a positive number of meters")
	}

	existing, err := s.store.FindPerimeterByOwner(ctx, ownerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.Internal(err)
	}
	created := existing == nil

	now := s.now().UTC()
	p := &models.Perimeter{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Center:       *in.Center,
		RadiusMeters: radius,
		Address:      strings.TrimSpace(in.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !created {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		if p.Address == "" {
			p.Address = existing.Address
		}
	}

	if err := s.store.UpsertPerimeter(ctx, p); err != nil {
		return nil, false, apperr.Internal(err)
	}

	s.log.Info("perimeter saved",
		zap.String("owner_id", ownerID),
		zap.Bool("created", created),
		zap.Stringer("center", p.Center),
		zap.Float64("radius_meters", p.RadiusMeters))
	return p, created, nil
}

// GetPerimeter returns the perimeter owned by the manager
func (s *Service) GetPerimeter(ctx context.Context, ownerID string) (*models.Perimeter, error) {
	p, err := s.store.FindPerimeterByOwner(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("no perimeter found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// GetActivePerimeterForWorker resolves the perimeter governing a worker.
// Workers linked to a manager use that manager's perimeter. Workers without
// a manager fall back to the earliest perimeter in the system.
func (s *Service) GetActivePerimeterForWorker(ctx context.Context, workerID string) (*models.Perimeter, error) {
	worker, err := s.store.FindUser(ctx, workerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	if worker != nil && worker.ManagerID != "" {
		p, err := s.store.FindPerimeterByOwner(ctx, worker.ManagerID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("no perimeter found")
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return p, nil
	}

	p, err := s.store.FirstPerimeter(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("no perimeter found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.Warn("worker has no manager, using first perimeter",
		zap.String("worker_id", workerID),
		zap.String("perimeter_owner_id", p.OwnerID))
	return p, nil
}
