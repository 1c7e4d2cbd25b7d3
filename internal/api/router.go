package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chipwave/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/chipwave/internal/api/middleware"
	"github.com/Conceptual-Machines/chipwave/internal/config"
	"github.com/Conceptual-Machines/chipwave/internal/metrics"
	"github.com/Conceptual-Machines/chipwave/internal/services"
)

// Deps are the long-lived collaborators shared by all handlers
type Deps struct {
	Renderer   *services.RenderService
	Recorder   *metrics.Recorder
	CloudWatch *metrics.Client
}

func SetupRouter(cfg *config.Config, deps Deps, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.CloudWatch))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.Renderer)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, deps.Recorder)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Render API v1
	v1 := router.Group("/api/v1")
	if cfg.IsGatewayMode() {
		v1.Use(apimiddleware.GatewayAuth())
	} else {
		v1.Use(apimiddleware.NoAuth())
	}
	{
		renderHandler := handlers.NewRenderHandler(cfg, deps.Renderer)
		v1.POST("/render/script", renderHandler.RenderScript)
		v1.POST("/render/table", renderHandler.RenderTable)
	}

	return router
}
