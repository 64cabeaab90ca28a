package handlers

import (
	"net/http"
	"strings"

	"github.com/arnavshah/clockin-api-go/pkg/analytics"
	"github.com/arnavshah/clockin-api-go/pkg/apperr"
	"github.com/arnavshah/clockin-api-go/pkg/auth"
	"github.com/arnavshah/clockin-api-go/pkg/perimeter"
	"github.com/arnavshah/clockin-api-go/pkg/roster"
	"github.com/arnavshah/clockin-api-go/pkg/shifts"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the index route
const Version = "1.0.0"

const principalKey = "principal"

// Handler contains dependencies for the route handlers
type Handler struct {
	Identity   *auth.Service
	Issuer     *auth.Issuer
	Perimeters *perimeter.Service
	Shifts     *shifts.Manager
	Roster     *roster.Service
	Analytics  *analytics.Engine
	Log        *zap.Logger
}

// AuthMiddleware verifies the bearer token and attaches the principal
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			h.fail(c, apperr.Authentication("authorization header required"))
			return
		}

		// Strip "Bearer " if present
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))

		p, err := h.Issuer.VerifyToken(token)
		if err != nil {
			h.fail(c, apperr.Wrap(apperr.KindAuthentication, "invalid token", err))
			return
		}

		c.Set(principalKey, p)
		c.Set("userID", p.UserID)
		c.Next()
	}
}

// RequireCapability rejects principals whose role lacks the capability
func (h *Handler) RequireCapability(capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(principal(c), capability); err != nil {
			h.fail(c, err)
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

// fail writes the error envelope and stops the chain. Internal causes are logged, not returned.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		h.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), gin.H{
		"error": gin.H{
			"kind":    kind,
			"message": apperr.MessageOf(err),
		},
	})
}

// bindJSON decodes the body into dst, writing a validation error on failure
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.Wrap(apperr.KindValidation, FormatBindingError(err), err))
		return false
	}
	return true
}

// Index reports the service name and version
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Clock-in API",
		"version": Version,
	})
}

// Health is the liveness check
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
