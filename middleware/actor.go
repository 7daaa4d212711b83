package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Actor context keys. Identity is verified upstream at the gateway; these
// headers carry the authenticated party into the dispatch service.
const (
	CtxUserID     = "userID"
	CtxProviderID = "providerID"
)

// ActorMiddleware lifts the gateway identity headers into the context.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			c.Set(CtxUserID, id)
		}
		if id := c.GetHeader("X-Provider-ID"); id != "" {
			c.Set(CtxProviderID, id)
		}
		c.Next()
	}
}

// RequireUser aborts unless the gateway identified a requester.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "missing X-User-ID header",
			})
			return
		}
		c.Next()
	}
}

// RequireProvider aborts unless the gateway identified a provider.
func RequireProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxProviderID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "missing X-Provider-ID header",
			})
			return
		}
		c.Next()
	}
}
