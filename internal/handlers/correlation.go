package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/services"
)

type CorrelationHandler struct {
	log     *logger.Logger
	corrSvc services.CorrelationService
}

func NewCorrelationHandler(log *logger.Logger, corrSvc services.CorrelationService) *CorrelationHandler {
	return &CorrelationHandler{
		log:     log.With("handler", "CorrelationHandler"),
		corrSvc: corrSvc,
	}
}

type calculateRequest struct {
	DaysBack        int     `json:"days_back"`
	TimeWindowHours int     `json:"time_window_hours"`
	MinConfidence   float64 `json:"min_confidence"`
}

// POST /api/correlations/calculate
// Recomputes the user's full correlation set from raw logs.
func (h *CorrelationHandler) Calculate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("no authenticated user"))
		return
	}
	// an empty body means "use configured defaults"
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	records, err := h.corrSvc.Calculate(c.Request.Context(), userID, req.DaysBack, req.TimeWindowHours, req.MinConfidence)
	if err != nil {
		h.log.Error("Correlation calculation failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "calculation_failed", err)
		return
	}
	RespondOK(c, records)
}

// GET /api/correlations?min_confidence=&limit=
func (h *CorrelationHandler) GetStored(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("no authenticated user"))
		return
	}
	minConfidence, _ := strconv.ParseFloat(c.Query("min_confidence"), 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := h.corrSvc.GetStored(c.Request.Context(), userID, minConfidence, limit)
	if err != nil {
		h.log.Error("Loading correlations failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "load_failed", err)
		return
	}
	RespondOK(c, records)
}

// GET /api/correlations/insights
func (h *CorrelationHandler) GetInsights(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("no authenticated user"))
		return
	}
	summary, err := h.corrSvc.Insights(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Building insights failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "insights_failed", err)
		return
	}
	RespondOK(c, summary)
}

// GET /api/trends?days=
func (h *CorrelationHandler) GetTrends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("no authenticated user"))
		return
	}
	days, _ := strconv.Atoi(c.Query("days"))
	points, err := h.corrSvc.Trends(c.Request.Context(), userID, days)
	if err != nil {
		h.log.Error("Generating trends failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "trends_failed", err)
		return
	}
	RespondOK(c, points)
}
