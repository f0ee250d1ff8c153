package routes

import (
	"github.com/gin-gonic/gin"

	"echoscript/internal/api/middleware"
	"echoscript/internal/api/v1/handlers"
	"echoscript/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	JobService     services.JobService
	SessionService services.SessionService
	MaxUploadBytes int64
}

// RegisterRoutes registers all v1 API routes. Every route requires X-API-Key.
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	router.Use(middleware.RequireAPIKey())

	sessionHandler := handlers.NewSessionHandler(container.SessionService)
	router.POST("/session", sessionHandler.Create)

	jobHandler := handlers.NewJobHandler(container.JobService, container.MaxUploadBytes)
	jobs := router.Group("/jobs")
	{
		jobs.POST("", jobHandler.Create)
		jobs.POST("/import", jobHandler.Import)
		jobs.GET("", jobHandler.List)
		jobs.GET("/:id", jobHandler.Get)
		jobs.DELETE("/:id", jobHandler.Delete)
		jobs.POST("/:id/retry", jobHandler.Retry)
		jobs.GET("/:id/export", jobHandler.Export)
		jobs.GET("/:id/audio", jobHandler.Audio)
	}
}
