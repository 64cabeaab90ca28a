// Package app wires configuration, storage and services into a gin router.
package app

import (
	"context"
	"fmt"

	"github.com/arnavshah/clockin-api-go/pkg/analytics"
	"github.com/arnavshah/clockin-api-go/pkg/auth"
	"github.com/arnavshah/clockin-api-go/pkg/config"
	"github.com/arnavshah/clockin-api-go/pkg/database"
	"github.com/arnavshah/clockin-api-go/pkg/handlers"
	"github.com/arnavshah/clockin-api-go/pkg/logging"
	"github.com/arnavshah/clockin-api-go/pkg/perimeter"
	"github.com/arnavshah/clockin-api-go/pkg/roster"
	"github.com/arnavshah/clockin-api-go/pkg/shifts"
	"github.com/arnavshah/clockin-api-go/pkg/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App is a fully wired API instance
type App struct {
	Router  *gin.Engine
	Store   store.Store
	Handler *handlers.Handler
}

// OpenStore connects the backend selected by cfg: MongoDB when MONGODB_URI
// is set, else Postgres when DATABASE_URL is set, else SQLite
func OpenStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.MongoURI != "" {
		log.Info("using mongodb store", zap.String("database", cfg.MongoDatabase))
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}

	db, err := database.InitDB(database.Options{DSN: cfg.DatabaseURL, DataPath: cfg.DataPath})
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL != "" {
		log.Info("using postgres store")
	} else {
		log.Info("using sqlite store", zap.String("path", cfg.DataPath))
	}
	return store.NewGormStore(db), nil
}

// New wires every service over s and seeds the default manager
func New(ctx context.Context, cfg config.Config, s store.Store, log *zap.Logger) (*App, error) {
	issuer := auth.NewIssuer(cfg.Secret(), cfg.TokenTTL)
	identity := auth.NewService(s, issuer, log.Named("auth"))
	perimeters := perimeter.NewService(s, log.Named("perimeter"), cfg.DefaultRadiusMeters)

	h := &handlers.Handler{
		Identity:   identity,
		Issuer:     issuer,
		Perimeters: perimeters,
		Shifts:     shifts.NewManager(s, perimeters, log.Named("shifts")),
		Roster:     roster.NewService(s),
		Analytics:  analytics.NewEngine(s),
		Log:        log,
	}

	if err := identity.EnsureManagerExists(ctx, cfg.ManagerName, cfg.ManagerEmail, cfg.ManagerPassword); err != nil {
		return nil, fmt.Errorf("seed manager: %w", err)
	}

	r := gin.New()
	r.Use(logging.GinLogger(log), gin.Recovery())
	h.RegisterRoutes(r)

	return &App{Router: r, Store: s, Handler: h}, nil
}

// Build loads the store from cfg and returns the wired app
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	s, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a, err := New(ctx, cfg, s, log)
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return a, nil
}

// Close releases the store
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}
