package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// BlogHandler handles blog HTTP requests.
type BlogHandler struct {
	service services.BlogService
}

// NewBlogHandler creates a new BlogHandler instance.
func NewBlogHandler(service services.BlogService) *BlogHandler {
	return &BlogHandler{service: service}
}

// List handles GET /api/blog. Query: authorId.
func (h *BlogHandler) List(c *gin.Context) {
	posts, err := h.service.List(c.Request.Context(), store.BlogFilter{AuthorID: c.Query("authorId")})
	if err != nil {
		apierrors.FromError(c, err, "Blog post")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get handles GET /api/blog/:slug, falling back to an id lookup.
func (h *BlogHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.Param("slug")

	b, err := h.service.GetBySlug(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		b, err = h.service.Get(ctx, key)
	}
	if err != nil {
		apierrors.FromError(c, err, "Blog post")
		return
	}
	c.JSON(http.StatusOK, b)
}

// Create handles POST /api/blog.
func (h *BlogHandler) Create(c *gin.Context) {
	var req models.BlogPost
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		apierrors.FromError(c, err, "Blog post")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/blog/:id.
func (h *BlogHandler) Update(c *gin.Context) {
	var patch models.BlogPostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.BindError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apierrors.FromError(c, err, "Blog post")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/blog/:id.
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.FromError(c, err, "Blog post")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
