package services

import (
	"math"
	"time"

	"ledgerly/internal/store"
)

// historyService aggregates utilization over the retired budgets the
// rollover engine leaves behind.
type historyService struct {
	budgets store.BudgetStore
}

// NewHistoryService creates a new HistoryAnalyzer.
func NewHistoryService(budgets store.BudgetStore) HistoryAnalyzer {
	return &historyService{budgets: budgets}
}

// BudgetUtilization reports spend against allowance for each retired budget
// matching the filters, oldest first, plus the average utilization and the
// number of periods that went over budget.
func (s *historyService) BudgetUtilization(userID, category string, from, to *time.Time) (*UtilizationReport, error) {
	retired, err := s.budgets.ListRetired(userID, category, from, to)
	if err != nil {
		return nil, err
	}

	report := &UtilizationReport{Budgets: []BudgetUtilization{}}
	var utilizationSum float64

	for i := range retired {
		b := &retired[i]

		var utilization float64
		if b.Amount > 0 {
			utilization = math.Round(float64(b.Spent)/float64(b.Amount)*1000) / 10
		}
		if b.Spent > b.Amount {
			report.PeriodsOverBudget++
		}
		utilizationSum += utilization

		report.Budgets = append(report.Budgets, BudgetUtilization{
			BudgetID:    b.ID,
			Category:    b.Category,
			Amount:      b.Amount,
			Spent:       b.Spent,
			Utilization: utilization,
			StartDate:   b.StartDate,
			EndDate:     b.EndDate,
		})
	}

	if len(report.Budgets) > 0 {
		report.AverageUtilization = math.Round(utilizationSum/float64(len(report.Budgets))*10) / 10
	}
	return report, nil
}
