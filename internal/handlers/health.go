package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/luxeestate/internal/database"
	"github.com/stwalsh4118/luxeestate/internal/middleware"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "1.0.0"
	// HealthCheckTimeout is the timeout for store health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is implemented by stores that can check their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolReporter is implemented by stores backed by a connection pool.
type PoolReporter interface {
	PoolStats() database.PoolStats
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	store     store.Store
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(st store.Store, env string) *HealthHandler {
	return &HealthHandler{
		store:     st,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string              `json:"status"`
	Store  string              `json:"store"`
	Mode   store.Mode          `json:"mode"`
	Pool   *database.PoolStats `json:"pool,omitempty"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string     `json:"version"`
	Environment string     `json:"environment"`
	Uptime      string     `json:"uptime"`
	Mode        store.Mode `json:"mode"`
}

// Health handles GET /health and GET /api/health.
// It always returns 200 OK and is what clients probe at start-up.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /api/health/ready.
// Returns 200 OK if the backing store answers, 503 Service Unavailable otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	mode := h.store.Mode()

	if p, ok := h.store.(Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Store health check failed", err, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
					"mode":    mode,
				})
			}

			c.JSON(http.StatusServiceUnavailable, ReadyResponse{
				Status: "not_ready",
				Store:  "disconnected",
				Mode:   mode,
			})
			return
		}
	}

	resp := ReadyResponse{
		Status: "ready",
		Store:  "connected",
		Mode:   mode,
	}
	if r, ok := h.store.(PoolReporter); ok {
		stats := r.PoolStats()
		resp.Pool = &stats
	}
	c.JSON(http.StatusOK, resp)
}

// Info handles GET /api/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
		Mode:        h.store.Mode(),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
