package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
)

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Category *string
	Kind     *models.TransactionKind
}

// TransactionStore is the persistence contract for per-user transactions.
// The analytics engines read through it and never mutate what it returns.
type TransactionStore interface {
	FindByUserID(userID string) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	CreateTransaction(transaction *models.Transaction) error
	ListTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) ([]models.Transaction, int64, error)
}

// transactionStore is the GORM-backed TransactionStore.
type transactionStore struct {
	db *gorm.DB
}

// NewTransactionStore creates a GORM-backed TransactionStore.
func NewTransactionStore(db *gorm.DB) TransactionStore {
	return &transactionStore{db: db}
}

// FindByUserID returns the user's full transaction history in date order.
func (s *transactionStore) FindByUserID(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Order("date ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionStore) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// CreateTransaction persists a new transaction record.
func (s *transactionStore) CreateTransaction(transaction *models.Transaction) error {
	if err := s.db.Create(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListTransactions returns a page of the user's transactions plus the total count.
func (s *transactionStore) ListTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) ([]models.Transaction, int64, error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}
	if filter.Kind != nil {
		base = base.Where("kind = ?", *filter.Kind)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).Order("date DESC").Find(&transactions).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transactions, totalItems, nil
}
