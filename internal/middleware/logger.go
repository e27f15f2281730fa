package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/luxeestate/internal/logger"
)

// LoggerKey is the gin context key holding the request-scoped logger.
const LoggerKey = "logger"

// Logger writes one entry per request once it completes. The
// request-scoped logger is also put on the request context so services
// log with the request id. Health probes are logged at debug level.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.WithRequestID(GetRequestID(c))

		c.Set(LoggerKey, reqLog)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"bytes":       c.Writer.Size(),
			"ip":          c.ClientIP(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields["query"] = q
		}
		if actor := GetActor(c); actor.ID != "" {
			fields["actor_id"] = actor.ID
			fields["actor_role"] = actor.Role
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			reqLog.Error("Request failed", nil, fields)
		case status >= 400:
			reqLog.Warn("Request rejected", fields)
		case isHealthProbe(c.Request.URL.Path):
			reqLog.Debug("Health probe", fields)
		default:
			reqLog.Info("Request completed", fields)
		}
	}
}

func isHealthProbe(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/api/health")
}

// GetLogger returns the request-scoped logger, or nil outside the
// middleware.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return nil
}
