package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// SignupInput is the registration request
type SignupInput struct {
	Name      string      `json:"name" binding:"required"`
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required"`
	Role      models.Role `json:"role"`
	ManagerID string      `json:"managerId"`
}

// Service is the identity provider: registration, authentication and profile lookup
type Service struct {
	store  store.Store
	issuer *Issuer
	log    *zap.Logger
}

func NewService(s store.Store, issuer *Issuer, log *zap.Logger) *Service {
	return &Service{store: s, issuer: issuer, log: log}
}

// Register creates a worker or manager account
func (s *Service) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("password length must be at least 6 characters")
	}

	role := in.Role
	if role == "" {
		role = models.RoleWorker
	}
	if !role.Valid() {
		return nil, apperr.Validation("role must be worker or manager")
	}

	managerID := strings.TrimSpace(in.ManagerID)
	if managerID != "" {
		if role != models.RoleWorker {
			return nil, apperr.Validation("only workers report to a manager")
		}
		manager, err := s.store.FindUser(ctx, managerID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && manager.Role != models.RoleManager) {
			return nil, apperr.Validation("managerId does not reference a manager")
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         role,
		ManagerID:    managerID,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperr.Validation("user already exists")
		}
		return nil, apperr.Internal(err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Authenticate checks credentials and returns the principal with a signed token
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Principal, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apperr.Validation("email and password are required")
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", apperr.Authentication("invalid credentials")
	}
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", apperr.Authentication("invalid credentials")
	}

	token, err := s.issuer.CreateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return &Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, token, nil
}

// Profile returns the user behind the principal
func (s *Service) Profile(ctx context.Context, p *Principal) (*models.User, error) {
	if err := Authorize(p, CapViewProfile); err != nil {
		return nil, err
	}
	user, err := s.store.FindUser(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// EnsureManagerExists creates a manager account from config when none exists
func (s *Service) EnsureManagerExists(ctx context.Context, name, email, password string) error {
	count, err := s.store.CountUsersByRole(ctx, models.RoleManager)
	if err != nil {
		return err
	}
	if count > 0 || email == "" || password == "" {
		return nil
	}

	user, err := s.Register(ctx, SignupInput{Name: name, Email: email, Password: password, Role: models.RoleManager})
	if err != nil {
		return err
	}
	s.log.Info("default manager created", zap.String("email", user.Email))
	return nil
}
