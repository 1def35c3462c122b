package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

const identityKey = "identity"

// RequireAuth resolves the caller from the accessToken cookie (or the
// Authorization header) and aborts with 401 when it cannot.
func RequireAuth(users *userservice.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("accessToken")
		if err != nil || token == "" {
			token = c.GetHeader("Authorization")
		}
		identity, err := users.ResolveIdentity(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// CallerIdentity returns the identity stored by RequireAuth.
func CallerIdentity(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(auth.Identity)
	return identity
}
