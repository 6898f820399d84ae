package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerly/internal/services"
)

// InsightsHandler handles spending insights requests.
type InsightsHandler struct {
	insightsService services.InsightsServicer
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insightsService services.InsightsServicer) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

// GetInsights handles generating spending insights for the authenticated user.
// @Summary     Get spending insights
// @Description Analyze the user's transaction history for patterns, outliers, and recommendations
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Insights "Insights"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/insights [get]
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	insights, err := h.insightsService.GenerateInsights(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
