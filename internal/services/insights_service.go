package services

import (
	"math"
	"sort"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/store"
)

// insightsService analyzes a user's transaction history. All analyses are
// pure functions over the loaded transaction slice; nothing is written back.
type insightsService struct {
	transactions store.TransactionStore
	rules        []Rule
}

// NewInsightsService creates a new InsightsServicer with the default
// recommendation rule set.
func NewInsightsService(transactions store.TransactionStore) InsightsServicer {
	return &insightsService{transactions: transactions, rules: DefaultRules()}
}

// GenerateInsights loads the user's full transaction history and runs the
// three independent analyses over it. A load failure surfaces as an error;
// there is no partial insights object.
func (s *insightsService) GenerateInsights(userID string) (*models.Insights, error) {
	if userID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user id is required")
	}

	transactions, err := s.transactions.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	return &models.Insights{
		SpendingPatterns:    analyzeSpendingPatterns(transactions),
		UnusualTransactions: detectUnusualTransactions(transactions),
		Recommendations:     evaluateRules(s.rules, transactions),
	}, nil
}

// orderedTotals accumulates int64 totals under string keys while remembering
// first-encounter order, so downstream sorting and ties stay deterministic.
type orderedTotals struct {
	keys   []string
	totals map[string]int64
}

func newOrderedTotals() *orderedTotals {
	return &orderedTotals{totals: make(map[string]int64)}
}

func (o *orderedTotals) add(key string, amount int64) {
	if _, seen := o.totals[key]; !seen {
		o.keys = append(o.keys, key)
	}
	o.totals[key] += amount
}

func (o *orderedTotals) get(key string) int64 {
	return o.totals[key]
}

// categoryTotals sums absolute amounts per category in encounter order.
func categoryTotals(transactions []models.Transaction) *orderedTotals {
	totals := newOrderedTotals()
	for i := range transactions {
		totals.add(transactions[i].Category, transactions[i].AbsAmount())
	}
	return totals
}

// totalSpent sums absolute amounts across the full transaction set.
func totalSpent(transactions []models.Transaction) int64 {
	var total int64
	for i := range transactions {
		total += transactions[i].AbsAmount()
	}
	return total
}

// analyzeSpendingPatterns produces the top spending categories, per-month
// totals, and the month-over-month trend.
func analyzeSpendingPatterns(transactions []models.Transaction) models.SpendingPatterns {
	byCategory := categoryTotals(transactions)

	top := make([]models.CategoryTotal, 0, len(byCategory.keys))
	for _, category := range byCategory.keys {
		top = append(top, models.CategoryTotal{Category: category, Total: byCategory.get(category)})
	}
	// Stable sort keeps encounter order for equal totals.
	sort.SliceStable(top, func(i, j int) bool { return top[i].Total > top[j].Total })
	if len(top) > 3 {
		top = top[:3]
	}

	byMonth := newOrderedTotals()
	for i := range transactions {
		byMonth.add(transactions[i].Date.Format("2006-01"), transactions[i].AbsAmount())
	}

	monthly := make([]models.MonthlyTotal, 0, len(byMonth.keys))
	for _, month := range byMonth.keys {
		monthly = append(monthly, models.MonthlyTotal{Month: month, Total: byMonth.get(month)})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })

	return models.SpendingPatterns{
		TopCategories: top,
		MonthlyTotals: monthly,
		MonthlyTrend:  monthlyTrend(monthly),
	}
}

// monthlyTrend is the percentage change between the two most recent months,
// rounded to one decimal place. Fewer than two months of data, or a zero
// previous-month total, yields zero rather than Inf/NaN.
func monthlyTrend(monthly []models.MonthlyTotal) float64 {
	if len(monthly) < 2 {
		return 0
	}
	previous := monthly[len(monthly)-2].Total
	latest := monthly[len(monthly)-1].Total
	if previous == 0 {
		return 0
	}
	change := (float64(latest)/float64(previous) - 1) * 100
	return math.Round(change*10) / 10
}

// detectUnusualTransactions flags transactions whose absolute amount exceeds
// two population standard deviations above the mean. Statistics are
// undefined for fewer than two transactions, so those sets yield no flags.
func detectUnusualTransactions(transactions []models.Transaction) []models.UnusualTransaction {
	unusual := []models.UnusualTransaction{}
	n := len(transactions)
	if n < 2 {
		return unusual
	}

	var sum float64
	for i := range transactions {
		sum += float64(transactions[i].AbsAmount())
	}
	mean := sum / float64(n)

	var sqDev float64
	for i := range transactions {
		d := float64(transactions[i].AbsAmount()) - mean
		sqDev += d * d
	}
	// Population formula: divide by n, not n-1.
	stdDev := math.Sqrt(sqDev / float64(n))

	threshold := mean + 2*stdDev
	for i := range transactions {
		t := &transactions[i]
		if float64(t.AbsAmount()) > threshold {
			unusual = append(unusual, models.UnusualTransaction{
				ID:          t.ID,
				Amount:      t.Amount,
				Description: t.Description,
				Date:        t.Date,
				Category:    t.Category,
			})
		}
	}
	return unusual
}
