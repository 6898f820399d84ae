package models

import "time"

// CategoryTotal is the summed absolute spend for one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// MonthlyTotal is the summed absolute spend for one calendar month,
// keyed YYYY-MM.
type MonthlyTotal struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

// SpendingPatterns summarizes where and when a user's money goes.
type SpendingPatterns struct {
	TopCategories []CategoryTotal `json:"top_categories"`
	MonthlyTotals []MonthlyTotal  `json:"monthly_totals"`

	// MonthlyTrend is the percentage change between the two most recent
	// months, rounded to one decimal place. Zero when fewer than two months
	// of data exist or the previous month's total is zero.
	MonthlyTrend float64 `json:"monthly_trend"`
}

// UnusualTransaction is a transaction flagged as a statistical outlier.
// Fields are reported unmodified from the source transaction.
type UnusualTransaction struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
}

// RecommendationType distinguishes warnings from softer suggestions.
type RecommendationType string

const (
	RecommendationWarning    RecommendationType = "warning"
	RecommendationSuggestion RecommendationType = "suggestion"
)

// Recommendation is a single piece of rule-generated spending advice.
type Recommendation struct {
	Type    RecommendationType `json:"type"`
	Message string             `json:"message"`
}

// Insights is the full result of analyzing a user's transaction history.
type Insights struct {
	SpendingPatterns    SpendingPatterns     `json:"spending_patterns"`
	UnusualTransactions []UnusualTransaction `json:"unusual_transactions"`
	Recommendations     []Recommendation     `json:"recommendations"`
}
