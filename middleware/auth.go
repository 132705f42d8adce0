package middleware

import (
	"net/http"
	"strings"

	"quizdeck/services"

	"github.com/gin-gonic/gin"
)

// OptionalAuth decorates the context with the caller's identity when a valid
// bearer token is present. Absent, invalid, or logged-out tokens are ignored
// so public endpoints keep working; protected routes layer RequireAuth on
// top.
func OptionalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, userName, err := authService.ParseToken(token)
		if err != nil || authService.IsBlacklisted(c.Request.Context(), token) {
			c.Next()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_name", userName)
		c.Set("token", token)
		c.Next()
	}
}

// RequireAuth rejects requests that OptionalAuth did not authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_id"); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous callers.
func UserID(c *gin.Context) string {
	id, _ := c.Get("user_id")
	s, _ := id.(string)
	return s
}

// UserName returns the authenticated user's name, or "".
func UserName(c *gin.Context) string {
	name, _ := c.Get("user_name")
	s, _ := name.(string)
	return s
}
