package middleware

import (
	"net/http"
	"strings"

	"fundi/config"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards the administrative override endpoints with the
// static token from configuration.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Missing or invalid Authorization header",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if config.AppConfig.AdminToken == "" || tokenString != config.AppConfig.AdminToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Unauthorized admin access",
			})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
