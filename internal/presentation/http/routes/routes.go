// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bleonardo0/cobi-sub002/internal/application/container"
	"github.com/bleonardo0/cobi-sub002/internal/presentation/http/handlers"
	"github.com/bleonardo0/cobi-sub002/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	trackHandlers := handlers.NewTrackHandlers(container.TrackingService, container.Logger)
	analyticsHandlers := handlers.NewAnalyticsHandlers(
		container.AnalyticsService,
		container.TrendService,
		container.ConversionService,
		container.Logger,
	)
	adminHandlers := handlers.NewAdminHandlers(container.AuthService, container.AdminService, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container.DB)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.HandleHealth)

		track := api.Group("/track")
		{
			track.POST("/session-start", trackHandlers.HandleSessionStart)
			track.POST("/menu-view", trackHandlers.HandleMenuView)
			track.POST("/model-view-start", trackHandlers.HandleModelViewStart)
			track.POST("/model-view-end", trackHandlers.HandleModelViewEnd)
			track.POST("/session-end", trackHandlers.HandleSessionEnd)
		}

		analyticsGroup := api.Group("/analytics")
		{
			analyticsGroup.GET("/stats", analyticsHandlers.HandleGeneralStats)
			analyticsGroup.GET("/trends", analyticsHandlers.HandleTrends)
			analyticsGroup.GET("/conversion", analyticsHandlers.HandleConversion)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandlers.HandleLogin)

			admin.Use(middleware.OperatorAuthMiddleware(container.AuthService))
			{
				admin.POST("/reset", adminHandlers.HandleReset)
				admin.GET("/metrics", adminHandlers.HandleMetrics)
			}
		}
	}

	return r
}
