package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// PropertyHandler handles listing-related HTTP requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// SuccessResponse acknowledges a delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// List handles GET /api/properties.
// Query: minPrice, maxPrice, search, status, agentId, sortBy.
func (h *PropertyHandler) List(c *gin.Context) {
	filter, ok := propertyFilterFromQuery(c)
	if !ok {
		return
	}

	props, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		apierrors.FromError(c, err, "Property")
		return
	}
	c.JSON(http.StatusOK, props)
}

func propertyFilterFromQuery(c *gin.Context) (store.PropertyFilter, bool) {
	filter := store.PropertyFilter{
		Search:  strings.TrimSpace(c.Query("search")),
		Status:  models.PropertyStatus(c.Query("status")),
		AgentID: c.Query("agentId"),
		SortBy:  store.SortOrder(c.Query("sortBy")),
	}

	for key, dst := range map[string]**float64{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			apierrors.ValidationError(c, map[string]string{key: "Must be a number"})
			return filter, false
		}
		*dst = &v
	}
	return filter, true
}

// Get handles GET /api/properties/:slug. An id is accepted in place of
// the slug so clients holding only the id can fetch the listing.
func (h *PropertyHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.Param("slug")

	p, err := h.service.GetBySlug(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		p, err = h.service.Get(ctx, key)
	}
	if err != nil {
		apierrors.FromError(c, err, "Property")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /api/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	var req models.Property
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		apierrors.FromError(c, err, "Property")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/properties/:id. Omitted fields are kept.
func (h *PropertyHandler) Update(c *gin.Context) {
	var patch models.PropertyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.BindError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apierrors.FromError(c, err, "Property")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/properties/:id.
func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.FromError(c, err, "Property")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
