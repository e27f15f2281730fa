package middleware

import "github.com/gin-gonic/gin"

// abort writes the API error envelope and stops the chain. The errors
// package builds the same shape for handlers; middleware runs before it
// is in play.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}
