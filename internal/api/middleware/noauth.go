package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth is a pass-through middleware for when AUTH_MODE=none.
// Renders are attributed to an anonymous user.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", anonymousUser)
		c.Set("user_id_str", anonymousUser)
		c.Next()
	}
}
