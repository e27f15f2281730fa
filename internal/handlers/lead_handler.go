package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// LeadHandler handles inquiry-related HTTP requests. Reads are scoped to
// the actor set by middleware.Actor.
type LeadHandler struct {
	service services.LeadService
}

// NewLeadHandler creates a new LeadHandler instance.
func NewLeadHandler(service services.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// AssignRequest is the body of PUT /api/leads/:id/assign.
type AssignRequest struct {
	AgentID string `json:"agentId"`
}

// List handles GET /api/leads. Query: status, propertyId, assignedAgentId.
func (h *LeadHandler) List(c *gin.Context) {
	filter := store.LeadFilter{
		Status:          models.LeadStatus(c.Query("status")),
		PropertyID:      c.Query("propertyId"),
		AssignedAgentID: c.Query("assignedAgentId"),
	}

	leads, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		apierrors.FromError(c, err, "Lead")
		return
	}
	c.JSON(http.StatusOK, leads)
}

// Get handles GET /api/leads/:id.
func (h *LeadHandler) Get(c *gin.Context) {
	l, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.FromError(c, err, "Lead")
		return
	}
	c.JSON(http.StatusOK, l)
}

// Create handles POST /api/leads. The stored status is always NEW.
func (h *LeadHandler) Create(c *gin.Context) {
	var req models.Lead
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		apierrors.FromError(c, err, "Lead")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/leads/:id.
func (h *LeadHandler) Update(c *gin.Context) {
	var patch models.LeadPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.BindError(c, err)
		return
	}

	var (
		updated *models.Lead
		err     error
	)
	if patch.Status != nil && patch == (models.LeadPatch{Status: patch.Status}) {
		updated, err = h.service.UpdateStatus(c.Request.Context(), c.Param("id"), *patch.Status)
	} else {
		updated, err = h.service.Update(c.Request.Context(), c.Param("id"), patch)
	}
	if err != nil {
		apierrors.FromError(c, err, "Lead")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Assign handles PUT /api/leads/:id/assign.
func (h *LeadHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	updated, err := h.service.Assign(c.Request.Context(), c.Param("id"), req.AgentID)
	if err != nil {
		apierrors.FromError(c, err, "Lead")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/leads/:id.
func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.FromError(c, err, "Lead")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
