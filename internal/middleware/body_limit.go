package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit leaves room for base64-encoded listing images.
const DefaultBodyLimit int64 = 10 << 20

// BodyLimit caps request bodies at limit bytes. A declared length over the
// cap is refused with 413 up front; an undeclared one fails while reading,
// which the handler reports as a binding error.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abort(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
