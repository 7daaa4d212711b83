package routes

import (
	"net/http"
	"time"

	"fundi/handlers"
	"fundi/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRequestRoutes registers the dispatch lifecycle endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	{
		api.POST("", middleware.RequireUser(), hb.CreateRequest)
		// :id accepts the internal id or the SR- display reference.
		api.GET("/:id", hb.GetRequest)
		api.POST("/:id/accept", middleware.RequireProvider(), hb.AcceptRequest)
		api.POST("/:id/reject", middleware.RequireProvider(), hb.RejectRequest)
		api.PATCH("/:id/status", middleware.RequireProvider(), hb.UpdateStatus)
		api.PATCH("/:id/location", middleware.RequireProvider(), hb.UpdateLocation)
		api.POST("/:id/cancel", middleware.RequireUser(), hb.CancelRequest)
		api.GET("/:id/tracking", hb.GetTracking)
	}
}

// RegisterProviderRoutes registers the minimal directory endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.POST("", hb.RegisterProvider)
		api.GET("/:id", hb.GetProvider)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminAuthMiddleware())
		adminGroup.PATCH("/requests/:id/status", hb.OverrideStatus)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Fundi"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-User-ID", "X-Provider-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRequestRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
