package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/services"
)

type MLHandler struct {
	log   *logger.Logger
	mlSvc services.MLService
}

func NewMLHandler(log *logger.Logger, mlSvc services.MLService) *MLHandler {
	return &MLHandler{
		log:   log.With("handler", "MLHandler"),
		mlSvc: mlSvc,
	}
}

// POST /api/ml/analyze
// Recomputes per-outcome feature-importance reports and refreshes the
// user's cache.
func (h *MLHandler) RunAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("no authenticated user"))
		return
	}
	reports, err := h.mlSvc.RunAnalysis(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("ML analysis failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "ml_failed", err)
		return
	}
	RespondOK(c, reports)
}

// GET /api/ml/results
// Returns the cached reports from the last run, empty when none exist.
func (h *MLHandler) GetResults(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("no authenticated user"))
		return
	}
	reports, err := h.mlSvc.CachedResults(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Loading cached ML results failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "ml_results_failed", err)
		return
	}
	RespondOK(c, reports)
}
