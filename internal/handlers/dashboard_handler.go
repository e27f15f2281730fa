package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/services"
)

// DashboardHandler serves the admin aggregates.
type DashboardHandler struct {
	service services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats handles GET /api/dashboard.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute dashboard stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
