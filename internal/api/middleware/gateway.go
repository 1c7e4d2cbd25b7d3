package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const anonymousUser = "anonymous"

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Name).
// This is used when the API runs behind the hosted gateway, which handles
// token validation and script storage.
//
// When AUTH_MODE=gateway, the API trusts these headers unconditionally.
// This should ONLY be used in the hosted environment with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_id_str", userID)
		c.Set("user_email", c.GetHeader("X-User-Email"))
		c.Set("user_name", c.GetHeader("X-User-Name"))

		c.Next()
	}
}

// GetUserIDFromGateway retrieves the user ID set by GatewayAuth or NoAuth
func GetUserIDFromGateway(c *gin.Context) (string, bool) {
	return contextString(c, "user_id_str")
}

// GetUserEmailFromGateway retrieves the user email from gateway headers
func GetUserEmailFromGateway(c *gin.Context) (string, bool) {
	return contextString(c, "user_email")
}

// RenderArtist names the requesting user for WAV metadata: display name,
// then email, then ID. Anonymous requests get an empty artist.
func RenderArtist(c *gin.Context) string {
	for _, key := range []string{"user_name", "user_email", "user_id_str"} {
		if v, ok := contextString(c, key); ok && v != "" && v != anonymousUser {
			return v
		}
	}
	return ""
}

func contextString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
