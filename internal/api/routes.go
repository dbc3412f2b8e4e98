package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(gin.Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		orgs := v1.Group("/orgs/:org")
		{
			orgs.GET("", handler.GetOrganization)
			orgs.POST("/sync", handler.SyncOrganization)
			orgs.GET("/sync/cycles", handler.GetSyncCycles)

			stats := orgs.Group("/stats")
			{
				stats.GET("/code_frequency", handler.GetCodeFrequency)
				stats.GET("/punch_card", handler.GetPunchCard)
			}
		}
	}

	return router
}
