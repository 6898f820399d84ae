package services

import (
	"ledgerly/internal/logger"
	"ledgerly/internal/models"
)

// logNotifier is the default Notifier: it records rollover announcements in
// the structured log. Real delivery channels implement the same interface.
type logNotifier struct{}

// NewLogNotifier creates a Notifier that only logs.
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

// BudgetRolledOver logs a rollover announcement. Best-effort; never fails.
func (n *logNotifier) BudgetRolledOver(userID string, predecessor, successor *models.Budget) {
	logger.Get().Infow("budget renewed",
		"user_id", userID,
		"category", successor.Category,
		"previous_budget_id", predecessor.ID,
		"budget_id", successor.ID,
		"amount", successor.Amount,
		"window_start", successor.StartDate,
		"window_end", successor.EndDate,
	)
}
