package services

import (
	"time"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/store"
)

// budgetService handles budget CRUD. The lifecycle (rollover) logic lives in
// rolloverService; this service only creates and reads records.
type budgetService struct {
	budgets store.BudgetStore
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(budgets store.BudgetStore) BudgetServicer {
	return &budgetService{budgets: budgets}
}

// CreateBudget creates a new active budget for a category.
func (s *budgetService) CreateBudget(userID, category string, amount int64, period models.BudgetPeriod, startDate, endDate time.Time) (*models.Budget, error) {
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if !startDate.Before(endDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date must be before end date")
	}

	budget := &models.Budget{
		UserID:    userID,
		Category:  category,
		Amount:    amount,
		Spent:     0,
		Period:    period,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}

	if err := s.budgets.CreateBudget(budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, filter store.BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	budgets, totalItems, err := s.budgets.ListBudgets(userID, page, filter)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return s.budgets.GetBudgetByID(userID, budgetID)
}
