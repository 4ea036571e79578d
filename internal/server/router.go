package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mburgan/gutcheck-backend/internal/handlers"
	"github.com/mburgan/gutcheck-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName        string
	AllowOrigins       []string
	AuthMiddleware     *middleware.AuthMiddleware
	CorrelationHandler *handlers.CorrelationHandler
	MLHandler          *handlers.MLHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	{
		api.POST("/correlations/calculate", cfg.CorrelationHandler.Calculate)
		api.GET("/correlations", cfg.CorrelationHandler.GetStored)
		api.GET("/correlations/insights", cfg.CorrelationHandler.GetInsights)
		api.GET("/trends", cfg.CorrelationHandler.GetTrends)
		api.POST("/ml/analyze", cfg.MLHandler.RunAnalysis)
		api.GET("/ml/results", cfg.MLHandler.GetResults)
	}

	return router
}
