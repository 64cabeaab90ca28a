package handlers

import (
	"net/http"

	"github.com/arnavshah/clockin-api-go/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Signup registers a worker or manager
func (h *Handler) Signup(c *gin.Context) {
	var req auth.SignupInput
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.Identity.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user created", "user": user})
}

// Login exchanges credentials for a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !h.bindJSON(c, &req) {
		return
	}

	p, token, err := h.Identity.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "user": p})
}

// Me returns the caller's profile
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Identity.Profile(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
