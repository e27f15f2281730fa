package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/luxeestate/internal/logger"
)

// Recovery turns a panic in a handler into a 500 envelope and an error
// log entry with the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			reqLog := GetLogger(c)
			if reqLog == nil {
				reqLog = log
			}
			reqLog.Error("Panic recovered", fmt.Errorf("panic: %v", rec), logger.Fields{
				"request_id": GetRequestID(c),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"actor_id":   GetActor(c).ID,
				"stack":      string(debug.Stack()),
			})

			abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred")
		}()

		c.Next()
	}
}
