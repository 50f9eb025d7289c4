package middleware

import (
	"github.com/gin-gonic/gin"
)

// actorIDKey is the key used to store the acting user's ID in the Gin context.
// Using a custom type prevents collisions.
const actorIDKey = contextKey("actorID")

// ActorHeader is the request header carrying the acting user's ID. The
// surrounding platform authenticates upstream; the engine only records who
// acted on each document.
const ActorHeader = "X-Actor-ID"

// ActorMiddleware extracts the acting user's ID from the request header and
// stores it in the context. Requests without the header are rejected so every
// write carries an auditable actor.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(400, gin.H{"error": ActorHeader + " header is required"})
			return
		}
		c.Set(string(actorIDKey), actorID)
		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting user ID from the Gin context.
// It returns the actor ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorIDVal, exists := c.Get(string(actorIDKey))
	if !exists {
		// check in the request context as well
		if v := c.Request.Context().Value(actorIDKey); v != nil {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
		return "", false
	}

	actorID, ok := actorIDVal.(string)
	if !ok {
		return "", false
	}

	return actorID, true
}
