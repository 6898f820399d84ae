package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ledgerly/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates an active monthly budget for the given category
// with a window starting now.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category string, amount int64) *models.Budget {
	t.Helper()
	start := time.Now()
	return CreateTestBudgetWithWindow(t, db, userID, category, amount, models.BudgetPeriodMonthly, start, start.AddDate(0, 1, 0))
}

// CreateTestBudgetWithWindow creates an active budget with an explicit
// period and window.
func CreateTestBudgetWithWindow(t *testing.T, db *gorm.DB, userID, category string, amount int64, period models.BudgetPeriod, start, end time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:    userID,
		Category:  category,
		Amount:    amount,
		Period:    period,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestTransaction creates an expense transaction with the given
// absolute amount (in cents), date, and category. The stored amount is
// negative, following the outflow sign convention.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, amount int64, date time.Time, category, description string) *models.Transaction {
	t.Helper()

	if amount > 0 {
		amount = -amount
	}
	tx := &models.Transaction{
		UserID:      userID,
		Kind:        models.TransactionKindExpense,
		Amount:      amount,
		Description: description,
		Date:        date,
		Category:    category,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
