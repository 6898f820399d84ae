package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/services"
)

// BudgetHistoryHandler handles budget lifecycle and history requests.
type BudgetHistoryHandler struct {
	rolloverService services.RolloverServicer
	historyService  services.HistoryAnalyzer
	auditService    services.AuditServicer
}

// NewBudgetHistoryHandler creates a new BudgetHistoryHandler.
func NewBudgetHistoryHandler(rolloverService services.RolloverServicer, historyService services.HistoryAnalyzer, auditService services.AuditServicer) *BudgetHistoryHandler {
	return &BudgetHistoryHandler{
		rolloverService: rolloverService,
		historyService:  historyService,
		auditService:    auditService,
	}
}

// RolloverRequest represents the request payload for rolling over a budget.
type RolloverRequest struct {
	BudgetID string `json:"budget_id" binding:"required"`
}

// Rollover handles an on-demand rollover of a single budget.
// @Summary     Roll over a budget
// @Description Retire an expired budget and create its successor
// @Tags        budget-history
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RolloverRequest true "Budget to roll over"
// @Success     200 {object} services.RolloverResult "Rollover result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget already rolled over"
// @Router      /budget-history/rollover [post]
func (h *BudgetHistoryHandler) Rollover(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.rolloverService.ProcessRollover(userID, req.BudgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ROLLOVER_BUDGET", "budget", req.BudgetID, c.ClientIP(),
		map[string]interface{}{"successor_id": result.Successor.ID})

	c.JSON(http.StatusOK, gin.H{"rollover": result})
}

// Analytics handles budget utilization reporting over historical rollovers.
// @Summary     Budget history analytics
// @Description Summarize budget utilization over past periods
// @Tags        budget-history
// @Produce     json
// @Security    BearerAuth
// @Param       category   query string false "Filter by category"
// @Param       start_date query string false "Window start (RFC 3339)"
// @Param       end_date   query string false "Window end (RFC 3339)"
// @Success     200 {object} services.UtilizationReport "Utilization report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-history/analytics [get]
func (h *BudgetHistoryHandler) Analytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var from, to *time.Time
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be an RFC 3339 timestamp"))
			return
		}
		from = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be an RFC 3339 timestamp"))
			return
		}
		to = &t
	}

	report, err := h.historyService.BudgetUtilization(userID, c.Query("category"), from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": report})
}
