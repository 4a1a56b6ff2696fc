package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
)

const ContextUserKey = "auth_user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*app.Identity, error)
}

// AuthJWT requires "Authorization: Bearer <token>" and stores the resolved
// identity in the gin context.
func AuthJWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			abort(c, app.ErrAuthRequired)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		if token == "" {
			abort(c, app.ErrAuthRequired)
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(ContextUserKey, *identity)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (app.Identity, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return app.Identity{}, false
	}
	identity, ok := v.(app.Identity)
	return identity, ok
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
