package middleware

import (
	"net/http"

	"github.com/bizconsole/ledger/internal/infrastructure/logger"
	"github.com/bizconsole/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ActorHeader carries the identity of the person performing a request
const ActorHeader = "X-Actor"

// ActorRoleHeader carries the actor's role for privileged operations
const ActorRoleHeader = "X-Actor-Role"

// ActorKey is the gin context key under which the actor is stored
const ActorKey = "actor"

// ActorRoleKey is the gin context key under which the actor role is stored
const ActorRoleKey = "actor_role"

// Actor extracts the acting user from the X-Actor header and propagates it
// through the gin context and the request context, so both handlers and log
// enrichment see the same identity.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			c.Next()
			return
		}

		c.Set(ActorKey, actor)
		if role := c.GetHeader(ActorRoleHeader); role != "" {
			c.Set(ActorRoleKey, role)
		}
		ctx := logger.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetActor returns the actor stored by the Actor middleware, if any
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

// RequireRole guards corrective operations such as payable deletion, status
// overrides and relinks. The request is rejected with 403 unless the actor
// declares one of the allowed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ActorRoleKey)
		if _, ok := allowed[role]; !ok {
			c.JSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.ErrCodeForbidden,
				"This operation requires an elevated role",
			))
			c.Abort()
			return
		}
		c.Next()
	}
}
