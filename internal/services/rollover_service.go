package services

import (
	"time"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/logger"
	"ledgerly/internal/models"
	"ledgerly/internal/store"
)

// rolloverService is the budget lifecycle engine: it decides when a budget's
// window has closed and replaces it with a time-advanced successor.
type rolloverService struct {
	budgets      store.BudgetStore
	notifier     Notifier
	carryForward bool
}

// NewRolloverService creates a new RolloverServicer. When carryForward is
// true, an expired budget's unspent balance is added to its successor's
// allowance; otherwise the successor starts with the same allowance.
func NewRolloverService(budgets store.BudgetStore, notifier Notifier, carryForward bool) RolloverServicer {
	return &rolloverService{budgets: budgets, notifier: notifier, carryForward: carryForward}
}

// ProcessRollover retires the identified budget and persists its successor.
//
// The successor keeps the predecessor's category and period. Its window is
// anchored at the predecessor's end date so repeated rollovers never drift:
// the successor starts exactly where the predecessor ended and spans one
// full period of the same length. Spent resets to zero.
func (s *rolloverService) ProcessRollover(userID, budgetID string) (*RolloverResult, error) {
	if userID == "" || budgetID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user id and budget id are required")
	}

	predecessor, err := s.budgets.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	successor := s.buildSuccessor(predecessor)
	if err := s.budgets.CreateSuccessor(predecessor, successor); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BudgetRolledOver(userID, predecessor, successor)
	}

	return &RolloverResult{Predecessor: predecessor, Successor: successor}, nil
}

// buildSuccessor computes the budget that replaces an expired one.
func (s *rolloverService) buildSuccessor(predecessor *models.Budget) *models.Budget {
	amount := predecessor.Amount
	if s.carryForward {
		amount += predecessor.Unspent()
	}

	predecessorID := predecessor.ID
	return &models.Budget{
		UserID:        predecessor.UserID,
		Category:      predecessor.Category,
		Amount:        amount,
		Spent:         0,
		Period:        predecessor.Period,
		StartDate:     predecessor.EndDate,
		EndDate:       advancePeriod(predecessor.EndDate, predecessor.Period),
		IsActive:      true,
		PredecessorID: &predecessorID,
	}
}

// advancePeriod moves a window boundary forward by one full budget period.
// Monthly and yearly periods follow the calendar, so a January 31 anchor
// lands on the date AddDate normalizes to.
func advancePeriod(from time.Time, period models.BudgetPeriod) time.Time {
	switch period {
	case models.BudgetPeriodWeekly:
		return from.AddDate(0, 0, 7)
	case models.BudgetPeriodYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// CheckUserBudgetsOnLogin scans the user's active budgets and rolls over
// each one whose window has closed. Budgets do not notify on expiry, so a
// scan that runs at least once per period is sufficient for correctness;
// running it at login makes it prompt enough without a background scheduler.
//
// Each budget's rollover is isolated: one failure is logged and the scan
// moves on. A failure to load the budget list is also only logged — this
// path must never block a login.
func (s *rolloverService) CheckUserBudgetsOnLogin(userID string) {
	log := logger.Get()

	budgets, err := s.budgets.GetActiveBudgets(userID)
	if err != nil {
		log.Errorw("failed to load budgets for rollover scan", "user_id", userID, "error", err)
		return
	}

	now := time.Now()
	for _, budget := range budgets {
		if !budget.Expired(now) {
			continue
		}

		result, err := s.ProcessRollover(userID, budget.ID)
		if err != nil {
			log.Errorw("budget rollover failed",
				"user_id", userID,
				"budget_id", budget.ID,
				"category", budget.Category,
				"error", err,
			)
			continue
		}

		log.Infow("budget rolled over",
			"user_id", userID,
			"budget_id", budget.ID,
			"successor_id", result.Successor.ID,
			"category", budget.Category,
			"new_window_end", result.Successor.EndDate,
		)
	}
}
