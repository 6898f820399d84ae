package services

import (
	"time"

	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
	"ledgerly/internal/store"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, category string, amount int64, period models.BudgetPeriod, startDate, endDate time.Time) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, filter store.BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, kind models.TransactionKind, amount int64, description, category string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter store.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
}

// RolloverResult reports the outcome of rolling one expired budget over.
type RolloverResult struct {
	Predecessor *models.Budget `json:"predecessor"`
	Successor   *models.Budget `json:"successor"`
}

// RolloverServicer defines the contract for the budget lifecycle engine.
type RolloverServicer interface {
	// ProcessRollover retires the identified budget and creates its
	// time-advanced successor. Errors propagate to the caller.
	ProcessRollover(userID, budgetID string) (*RolloverResult, error)

	// CheckUserBudgetsOnLogin scans the user's active budgets and rolls over
	// every expired one. Best-effort: failures are logged, never returned,
	// so the login path is never blocked.
	CheckUserBudgetsOnLogin(userID string)
}

// InsightsServicer defines the contract for the spending insights engine.
type InsightsServicer interface {
	GenerateInsights(userID string) (*models.Insights, error)
}

// BudgetUtilization summarizes one retired budget's spend against its allowance.
type BudgetUtilization struct {
	BudgetID    string    `json:"budget_id"`
	Category    string    `json:"category"`
	Amount      int64     `json:"amount"`
	Spent       int64     `json:"spent"`
	Utilization float64   `json:"utilization"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// UtilizationReport aggregates budget utilization over historical rollovers.
type UtilizationReport struct {
	Budgets            []BudgetUtilization `json:"budgets"`
	AverageUtilization float64             `json:"average_utilization"`
	PeriodsOverBudget  int                 `json:"periods_over_budget"`
}

// HistoryAnalyzer summarizes budget utilization over historical rollovers.
type HistoryAnalyzer interface {
	BudgetUtilization(userID, category string, from, to *time.Time) (*UtilizationReport, error)
}

// Notifier is the narrow contract through which the lifecycle engine
// announces rollovers. Delivery (email/SMS/push) lives elsewhere.
type Notifier interface {
	BudgetRolledOver(userID string, predecessor, successor *models.Budget)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
