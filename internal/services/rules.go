package services

import (
	"strings"
	"time"

	"ledgerly/internal/models"
)

// RuleContext carries the precomputed aggregates every recommendation rule
// evaluates against. Rules are stateless and independent; each may emit at
// most one recommendation.
type RuleContext struct {
	Transactions []models.Transaction
	Categories   *orderedTotals
	TotalSpent   int64
}

// Rule is a single recommendation rule. Evaluate returns nil when the rule
// does not apply.
type Rule struct {
	Name     string
	Evaluate func(ctx RuleContext) *models.Recommendation
}

// evaluateRules runs every rule against the full transaction set. Output
// order follows rule order; each rule contributes zero or one entry.
func evaluateRules(rules []Rule, transactions []models.Transaction) []models.Recommendation {
	ctx := RuleContext{
		Transactions: transactions,
		Categories:   categoryTotals(transactions),
		TotalSpent:   totalSpent(transactions),
	}

	recommendations := []models.Recommendation{}
	for _, rule := range rules {
		if rec := rule.Evaluate(ctx); rec != nil {
			recommendations = append(recommendations, *rec)
		}
	}
	return recommendations
}

// categoryShareExceeds reports whether a category's total is more than the
// given share (percent) of total spend. Always false with zero total spend.
func categoryShareExceeds(ctx RuleContext, category string, percent float64) bool {
	if ctx.TotalSpent == 0 {
		return false
	}
	return float64(ctx.Categories.get(category)) > float64(ctx.TotalSpent)*percent/100
}

func warning(message string) *models.Recommendation {
	return &models.Recommendation{Type: models.RecommendationWarning, Message: message}
}

func suggestion(message string) *models.Recommendation {
	return &models.Recommendation{Type: models.RecommendationSuggestion, Message: message}
}

// Thresholds in minor currency units (cents).
const (
	microTransactionCents = 500   // < 5.00
	largeShoppingCents    = 5000  // > 50.00
	bookSpendCents        = 10000 // > 100.00
)

// DefaultRules returns the standard recommendation rule set. Rules can be
// added or removed without touching the others.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "entertainment_share",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				if categoryShareExceeds(ctx, "Entertainment", 20) {
					return warning("Entertainment makes up over 20% of your spending. Consider setting a stricter entertainment budget.")
				}
				return nil
			},
		},
		{
			Name: "groceries_share",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				if categoryShareExceeds(ctx, "Groceries", 30) {
					return suggestion("Groceries are over 30% of your spending. Meal planning or bulk buying could bring this down.")
				}
				return nil
			},
		},
		{
			Name: "transaction_frequency",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				days := map[string]struct{}{}
				for i := range ctx.Transactions {
					days[ctx.Transactions[i].Date.Format("2006-01-02")] = struct{}{}
				}
				if len(days) > 20 {
					return suggestion("You made purchases on more than 20 different days. Consolidating shopping trips can reduce impulse spending.")
				}
				return nil
			},
		},
		{
			Name: "late_night_spending",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				count := 0
				for i := range ctx.Transactions {
					hour := ctx.Transactions[i].Date.Hour()
					if hour >= 23 || hour <= 4 {
						count++
					}
				}
				if count > 3 {
					return warning("Several late-night purchases detected. Late-night spending is often unplanned.")
				}
				return nil
			},
		},
		{
			Name: "weekend_concentration",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				if ctx.TotalSpent == 0 {
					return nil
				}
				var weekend int64
				for i := range ctx.Transactions {
					switch ctx.Transactions[i].Date.Weekday() {
					case time.Saturday, time.Sunday:
						weekend += ctx.Transactions[i].AbsAmount()
					}
				}
				if float64(weekend) > float64(ctx.TotalSpent)*0.40 {
					return suggestion("Over 40% of your spending happens on weekends. Planning weekend activities in advance can help.")
				}
				return nil
			},
		},
		{
			Name: "micro_transactions",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				if len(ctx.Transactions) == 0 {
					return nil
				}
				count := 0
				for i := range ctx.Transactions {
					if ctx.Transactions[i].AbsAmount() < microTransactionCents {
						count++
					}
				}
				if float64(count) > float64(len(ctx.Transactions))*0.20 {
					return suggestion("Many small purchases add up. Over 20% of your transactions are under 5.00.")
				}
				return nil
			},
		},
		{
			Name: "transport_share",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				if categoryShareExceeds(ctx, "Transportation", 15) {
					return suggestion("Transportation is over 15% of your spending. A transit pass or carpooling might save money.")
				}
				return nil
			},
		},
		{
			Name: "large_shopping",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				count := 0
				for i := range ctx.Transactions {
					t := &ctx.Transactions[i]
					if t.Category == "Shopping" && t.AbsAmount() > largeShoppingCents {
						count++
					}
				}
				if count > 3 {
					return warning("You have several large shopping purchases this period. A 24-hour wait before big buys can curb impulse spending.")
				}
				return nil
			},
		},
		{
			Name: "dining_frequency",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				count := 0
				for i := range ctx.Transactions {
					if ctx.Transactions[i].Category == "Dining Out" {
						count++
					}
				}
				if count > 8 {
					return suggestion("You dined out more than 8 times. Cooking at home a few more nights could free up budget.")
				}
				return nil
			},
		},
		{
			Name: "book_spend",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				var total int64
				for i := range ctx.Transactions {
					desc := strings.ToLower(ctx.Transactions[i].Description)
					if strings.Contains(desc, "book") {
						total += ctx.Transactions[i].AbsAmount()
					}
				}
				if total > bookSpendCents {
					return suggestion("Book and textbook spending is over 100.00. Libraries and used copies are cheaper alternatives.")
				}
				return nil
			},
		},
		{
			Name: "utilities_share",
			Evaluate: func(ctx RuleContext) *models.Recommendation {
				if categoryShareExceeds(ctx, "Utilities", 20) {
					return suggestion("Utilities are over 20% of your spending. It may be worth reviewing plans and usage.")
				}
				return nil
			},
		},
	}
}
