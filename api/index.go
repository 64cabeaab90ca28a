package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/clockin-api-go/pkg/app"
	"github.com/arnavshah/clockin-api-go/pkg/config"
	"github.com/arnavshah/clockin-api-go/pkg/logging"
	"github.com/gin-gonic/gin"
)

var r http.Handler

func init() {
	gin.SetMode(gin.ReleaseMode)

	// .env is picked up for local testing with vercel dev
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, "production")
	if err != nil {
		panic(err)
	}

	a, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	r = a.Router
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
