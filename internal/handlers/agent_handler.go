package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/middleware"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// AgentHandler handles agent-related HTTP requests.
// Passwords never leave the server.
type AgentHandler struct {
	service services.AgentService
}

// NewAgentHandler creates a new AgentHandler instance.
func NewAgentHandler(service services.AgentService) *AgentHandler {
	return &AgentHandler{service: service}
}

// ReassignRequest is the body of POST /api/agents/reassign.
type ReassignRequest struct {
	OldAgentID string `json:"oldAgentId"`
	NewAgentID string `json:"newAgentId"`
}

// ReassignResponse reports how many listings moved.
type ReassignResponse struct {
	Success bool `json:"success"`
	Moved   int  `json:"moved"`
}

// List handles GET /api/agents. BLOCKED agents appear only with
// includeInactive=true.
func (h *AgentHandler) List(c *gin.Context) {
	var filter store.AgentFilter
	if raw := c.Query("includeInactive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.ValidationError(c, map[string]string{"includeInactive": "Must be true or false"})
			return
		}
		filter.IncludeInactive = v
	}

	agents, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		apierrors.FromError(c, err, "Agent")
		return
	}

	public := make([]models.Agent, len(agents))
	for i, a := range agents {
		public[i] = a.Public()
	}
	c.JSON(http.StatusOK, public)
}

// Get handles GET /api/agents/:id.
func (h *AgentHandler) Get(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.FromError(c, err, "Agent")
		return
	}
	c.JSON(http.StatusOK, a.Public())
}

// Create handles POST /api/agents.
func (h *AgentHandler) Create(c *gin.Context) {
	var req models.Agent
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		apierrors.FromError(c, err, "Agent")
		return
	}
	c.JSON(http.StatusCreated, created.Public())
}

// Update handles PUT /api/agents/:id.
func (h *AgentHandler) Update(c *gin.Context) {
	var patch models.AgentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.BindError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apierrors.FromError(c, err, "Agent")
		return
	}
	c.JSON(http.StatusOK, updated.Public())
}

// Delete handles DELETE /api/agents/:id. Responds 409 with the listing
// count while the agent still owns properties.
func (h *AgentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.FromError(c, err, "Agent")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Reassign handles POST /api/agents/reassign.
func (h *AgentHandler) Reassign(c *gin.Context) {
	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing reassign request", map[string]interface{}{
			"from": req.OldAgentID,
			"to":   req.NewAgentID,
		})
	}

	moved, err := h.service.Reassign(c.Request.Context(), req.OldAgentID, req.NewAgentID)
	if err != nil {
		apierrors.FromError(c, err, "Agent")
		return
	}
	c.JSON(http.StatusOK, ReassignResponse{Success: true, Moved: moved})
}
