package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
	"ledgerly/internal/store"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Category  string              `json:"category" binding:"required,min=1,max=100"`
	Amount    int64               `json:"amount" binding:"required,gt=0"`
	Period    models.BudgetPeriod `json:"period" binding:"required,budget_period"`
	StartDate time.Time           `json:"start_date" binding:"required"`
	EndDate   time.Time           `json:"end_date" binding:"required"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new budget for a category
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, req.Category, req.Amount, req.Period, req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category": req.Category, "amount": req.Amount, "period": req.Period})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets for the authenticated user
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool   false "Filter by active status"
// @Param       period    query string false "Filter by period (weekly/monthly/yearly)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter store.BudgetFilter
	if v := c.Query("is_active"); v != "" {
		switch v {
		case "true":
			b := true
			filter.IsActive = &b
		case "false":
			b := false
			filter.IsActive = &b
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "is_active must be true or false"))
			return
		}
	}
	if v := c.Query("period"); v != "" {
		switch v {
		case "weekly", "monthly", "yearly":
			p := models.BudgetPeriod(v)
			filter.Period = &p
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly, or yearly"))
			return
		}
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles fetching a single budget by ID.
// @Summary     Get a budget
// @Description Get a budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}
