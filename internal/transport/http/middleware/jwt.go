package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"mindhaven/internal/app"
	"mindhaven/internal/pkg/jwtutil"
	"mindhaven/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// IdentityFromContext rebuilds the caller from the values AuthJWT stored.
// The role comes from the token on this request; it is never cached from
// an earlier one.
func IdentityFromContext(c *gin.Context) (app.Identity, bool) {
	userIDAny, exists := c.Get(ContextUserIDKey)
	if !exists {
		return app.Identity{}, false
	}
	userID, ok := userIDAny.(uint)
	if !ok || userID == 0 {
		return app.Identity{}, false
	}

	role, _ := c.Get(ContextRoleKey)
	roleStr, _ := role.(string)
	return app.Identity{UserID: userID, Role: roleStr}, true
}
