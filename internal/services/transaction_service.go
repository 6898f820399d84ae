package services

import (
	"time"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/store"
)

// transactionService handles transaction recording and listing.
type transactionService struct {
	transactions store.TransactionStore
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(transactions store.TransactionStore) TransactionServicer {
	return &transactionService{transactions: transactions}
}

// CreateTransaction records a money movement. The sign convention is
// normalized here, at the store boundary: expenses are stored negative,
// income positive, whatever sign the caller supplied.
func (s *transactionService) CreateTransaction(userID string, kind models.TransactionKind, amount int64, description, category string, date time.Time) (*models.Transaction, error) {
	if amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be zero")
	}
	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	if amount < 0 {
		amount = -amount
	}
	if kind == models.TransactionKindExpense {
		amount = -amount
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Date:        date,
		Category:    category,
	}

	if err := s.transactions.CreateTransaction(transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions returns a paginated list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter store.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	transactions, totalItems, err := s.transactions.ListTransactions(userID, page, filter)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return s.transactions.GetTransactionByID(userID, transactionID)
}
