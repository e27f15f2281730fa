package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
)

// UserHandler handles site-account HTTP requests.
type UserHandler struct {
	service services.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		apierrors.FromError(c, err, "User")
		return
	}

	public := make([]models.User, len(users))
	for i, u := range users {
		public[i] = u.Public()
	}
	c.JSON(http.StatusOK, public)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.FromError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req models.User
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		apierrors.FromError(c, err, "User")
		return
	}
	c.JSON(http.StatusCreated, created.Public())
}

// Update handles PUT /api/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.BindError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apierrors.FromError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, updated.Public())
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.FromError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ToggleBlock handles PUT /api/users/:id/toggle-block.
func (h *UserHandler) ToggleBlock(c *gin.Context) {
	u, err := h.service.ToggleBlock(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.FromError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, u.Public())
}
