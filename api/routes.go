package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/customeros/docingest/api/handlers"
	"github.com/customeros/docingest/api/middleware"
	"github.com/customeros/docingest/config"
	"github.com/customeros/docingest/internal/tracing"
)

const APIKeyHeader = "X-DOCINGEST-API-KEY"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, h *handlers.APIHandlers, apikey string) {
	if h == nil {
		panic("Handlers cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  APIKeyHeader,
		ValidAPIKey: apikey,
	})

	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.CustomContextMiddleware(config.AppSourceAPI))
	api.Use(middleware.TracingMiddleware())
	{
		ingestion := api.Group("/ingestion")
		{
			ingestion.POST("/run", h.Ingestion.RunAll())
			ingestion.POST("/configurations/:id/run", h.Ingestion.RunConfiguration())
		}

		configurations := api.Group("/mailbox-configurations")
		{
			configurations.POST("", h.MailboxConfigurations.Create())
			configurations.GET("/:id", h.MailboxConfigurations.Get())
		}
	}
}
