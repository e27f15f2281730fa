package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/luxeestate/internal/models"
)

const (
	// ActorIDHeader identifies the account making the request.
	ActorIDHeader = "X-Actor-ID"
	// ActorRoleHeader carries that account's role.
	ActorRoleHeader = "X-Actor-Role"
	// ActorKey is the gin context key holding the models.Actor.
	ActorKey = "actor"
)

// Actor reads the actor headers and stores the identity in both the gin
// context and the request context, where services pick it up. The headers
// identify the caller; they are not verified.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := models.Actor{
			ID:   strings.TrimSpace(c.GetHeader(ActorIDHeader)),
			Role: models.UserRole(strings.ToUpper(strings.TrimSpace(c.GetHeader(ActorRoleHeader)))),
		}

		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(models.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// GetActor retrieves the actor from the Gin context. The zero Actor is
// returned when the middleware did not run.
func GetActor(c *gin.Context) models.Actor {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
