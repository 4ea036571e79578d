package app

import (
	"github.com/mburgan/gutcheck-backend/internal/handlers"
	"github.com/mburgan/gutcheck-backend/internal/logger"
)

type Handlers struct {
	Correlation *handlers.CorrelationHandler
	ML          *handlers.MLHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Correlation: handlers.NewCorrelationHandler(log, serviceset.Correlation),
		ML:          handlers.NewMLHandler(log, serviceset.ML),
	}
}
