package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/services"
)

// AuthHandler checks credentials and reports the matching account.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	acct, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid email or password")
		return
	case errors.Is(err, services.ErrAccountBlocked):
		apierrors.Forbidden(c, "Account is blocked")
		return
	case err != nil:
		apierrors.FromError(c, err, "Account")
		return
	}
	c.JSON(http.StatusOK, acct)
}
