package app

import (
	"github.com/gin-gonic/gin"

	"github.com/mburgan/gutcheck-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:        cfg.ServiceName,
		AllowOrigins:       cfg.AllowOrigins,
		AuthMiddleware:     middlewareset.Auth,
		CorrelationHandler: handlerset.Correlation,
		MLHandler:          handlerset.ML,
	})
}
