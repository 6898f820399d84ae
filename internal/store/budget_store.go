// Package store implements the persistence contracts consumed by the
// service layer. Services depend on the interfaces so tests can substitute
// failing or instrumented implementations.
package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
)

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	IsActive *bool
	Period   *models.BudgetPeriod
}

// BudgetStore is the persistence contract for per-user budget records.
type BudgetStore interface {
	GetActiveBudgets(userID string) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	CreateBudget(budget *models.Budget) error
	ListBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) ([]models.Budget, int64, error)
	ListRetired(userID, category string, from, to *time.Time) ([]models.Budget, error)

	// CreateSuccessor retires the predecessor and persists its successor in
	// one transaction. The retire is conditional on the predecessor still
	// being active, which makes rollover at-most-once even under concurrent
	// triggers: the loser of the race gets ErrBudgetAlreadyRolled.
	CreateSuccessor(predecessor, successor *models.Budget) error
}

// budgetStore is the GORM-backed BudgetStore.
type budgetStore struct {
	db *gorm.DB
}

// NewBudgetStore creates a GORM-backed BudgetStore.
func NewBudgetStore(db *gorm.DB) BudgetStore {
	return &budgetStore{db: db}
}

// GetActiveBudgets returns all currently active budgets for the user.
func (s *budgetStore) GetActiveBudgets(userID string) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetStore) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// CreateBudget persists a new budget record.
func (s *budgetStore) CreateBudget(budget *models.Budget) error {
	if err := s.db.Create(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListBudgets returns a page of the user's budgets plus the total count.
func (s *budgetStore) ListBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) ([]models.Budget, int64, error) {
	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if filter.IsActive != nil {
		base = base.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Period != nil {
		base = base.Where("period = ?", *filter.Period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Paginate(page)).Order("start_date DESC").Find(&budgets).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budgets, totalItems, nil
}

// ListRetired returns rolled-over budgets for the user, optionally filtered
// by category and window overlap, ordered oldest first.
func (s *budgetStore) ListRetired(userID, category string, from, to *time.Time) ([]models.Budget, error) {
	q := s.db.Where("user_id = ? AND is_active = ?", userID, false)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if from != nil {
		q = q.Where("end_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_date <= ?", *to)
	}

	var budgets []models.Budget
	if err := q.Order("start_date ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// CreateSuccessor retires the predecessor and creates the successor
// atomically. The predecessor row is flipped inactive with a guard on its
// current active state so that two concurrent rollovers cannot both produce
// a successor.
func (s *budgetStore) CreateSuccessor(predecessor, successor *models.Budget) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Budget{}).
			Where("id = ? AND user_id = ? AND is_active = ?", predecessor.ID, predecessor.UserID, true).
			Update("is_active", false)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrBudgetAlreadyRolled
		}

		if err := tx.Create(successor).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	predecessor.IsActive = false
	return nil
}
