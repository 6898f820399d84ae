package services

import (
	"testing"
	"time"

	"ledgerly/internal/models"
	"ledgerly/internal/store"
	"ledgerly/internal/testutil"
)

// expense builds an in-memory expense transaction with an absolute amount in
// cents. Stored amounts follow the outflow-negative convention.
func expense(id string, cents int64, date time.Time, category, description string) models.Transaction {
	t := models.Transaction{
		Kind:        models.TransactionKindExpense,
		Amount:      -cents,
		Description: description,
		Date:        date,
		Category:    category,
	}
	t.ID = id
	return t
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestAnalyzeSpendingPatterns(t *testing.T) {
	t.Run("top_categories_sorted_with_stable_ties", func(t *testing.T) {
		txs := []models.Transaction{
			expense("1", 1000, day(2025, 1, 2), "Groceries", ""),
			expense("2", 3000, day(2025, 1, 3), "Entertainment", ""),
			expense("3", 1000, day(2025, 1, 4), "Utilities", ""),
			expense("4", 2000, day(2025, 1, 5), "Groceries", ""),
			expense("5", 500, day(2025, 1, 6), "Transportation", ""),
		}

		patterns := analyzeSpendingPatterns(txs)

		want := []models.CategoryTotal{
			{Category: "Entertainment", Total: 3000},
			{Category: "Groceries", Total: 3000},
			{Category: "Utilities", Total: 1000},
		}
		if len(patterns.TopCategories) != 3 {
			t.Fatalf("expected 3 top categories, got %d", len(patterns.TopCategories))
		}
		for i, w := range want {
			got := patterns.TopCategories[i]
			if got.Category != w.Category || got.Total != w.Total {
				t.Errorf("top[%d]: got %s=%d, want %s=%d", i, got.Category, got.Total, w.Category, w.Total)
			}
		}
	})

	t.Run("trend_between_two_most_recent_months", func(t *testing.T) {
		txs := []models.Transaction{
			expense("1", 10000, day(2025, 1, 10), "Groceries", ""),
			expense("2", 15000, day(2025, 2, 10), "Groceries", ""),
		}

		patterns := analyzeSpendingPatterns(txs)
		if patterns.MonthlyTrend != 50.0 {
			t.Errorf("expected trend 50.0, got %v", patterns.MonthlyTrend)
		}
	})

	t.Run("trend_rounds_to_one_decimal", func(t *testing.T) {
		txs := []models.Transaction{
			expense("1", 30000, day(2025, 1, 10), "Groceries", ""),
			expense("2", 31000, day(2025, 2, 10), "Groceries", ""),
		}

		patterns := analyzeSpendingPatterns(txs)
		// 31000/30000 - 1 = 3.333...% -> 3.3
		if patterns.MonthlyTrend != 3.3 {
			t.Errorf("expected trend 3.3, got %v", patterns.MonthlyTrend)
		}
	})

	t.Run("single_month_has_zero_trend", func(t *testing.T) {
		txs := []models.Transaction{
			expense("1", 10000, day(2025, 1, 10), "Groceries", ""),
			expense("2", 2000, day(2025, 1, 20), "Utilities", ""),
		}

		patterns := analyzeSpendingPatterns(txs)
		if patterns.MonthlyTrend != 0 {
			t.Errorf("expected zero trend for one month of data, got %v", patterns.MonthlyTrend)
		}
	})

	t.Run("zero_previous_month_has_zero_trend", func(t *testing.T) {
		txs := []models.Transaction{
			expense("1", 0, day(2025, 1, 10), "Groceries", ""),
			expense("2", 5000, day(2025, 2, 10), "Groceries", ""),
		}

		patterns := analyzeSpendingPatterns(txs)
		if patterns.MonthlyTrend != 0 {
			t.Errorf("expected zero trend when previous month total is zero, got %v", patterns.MonthlyTrend)
		}
	})

	t.Run("monthly_totals_sorted_chronologically", func(t *testing.T) {
		txs := []models.Transaction{
			expense("1", 100, day(2025, 3, 1), "A", ""),
			expense("2", 200, day(2025, 1, 1), "A", ""),
			expense("3", 300, day(2025, 2, 1), "A", ""),
		}

		patterns := analyzeSpendingPatterns(txs)
		months := []string{"2025-01", "2025-02", "2025-03"}
		for i, m := range months {
			if patterns.MonthlyTotals[i].Month != m {
				t.Errorf("month[%d]: got %s, want %s", i, patterns.MonthlyTotals[i].Month, m)
			}
		}
	})

	t.Run("empty_set", func(t *testing.T) {
		patterns := analyzeSpendingPatterns(nil)
		if len(patterns.TopCategories) != 0 || len(patterns.MonthlyTotals) != 0 || patterns.MonthlyTrend != 0 {
			t.Errorf("expected degenerate-but-valid result, got %+v", patterns)
		}
	})
}

func TestDetectUnusualTransactions(t *testing.T) {
	t.Run("flags_only_two_sigma_outliers", func(t *testing.T) {
		// Ten ordinary purchases around $10 and one $500 laptop. The laptop
		// sits roughly 3.2 population stddevs above the mean; nothing else
		// comes close to the 2-sigma threshold.
		txs := []models.Transaction{
			expense("1", 1000, day(2025, 1, 1), "Groceries", ""),
			expense("2", 1200, day(2025, 1, 2), "Groceries", ""),
			expense("3", 1100, day(2025, 1, 3), "Groceries", ""),
			expense("4", 900, day(2025, 1, 4), "Groceries", ""),
			expense("5", 1000, day(2025, 1, 5), "Groceries", ""),
			expense("6", 1050, day(2025, 1, 6), "Groceries", ""),
			expense("7", 950, day(2025, 1, 7), "Groceries", ""),
			expense("8", 1000, day(2025, 1, 8), "Groceries", ""),
			expense("9", 1100, day(2025, 1, 9), "Groceries", ""),
			expense("10", 900, day(2025, 1, 10), "Groceries", ""),
			expense("11", 50000, day(2025, 1, 11), "Electronics", "new laptop"),
		}

		unusual := detectUnusualTransactions(txs)
		if len(unusual) != 1 {
			t.Fatalf("expected exactly 1 unusual transaction, got %d", len(unusual))
		}
		if unusual[0].ID != "11" {
			t.Errorf("expected transaction 11 flagged, got %s", unusual[0].ID)
		}
		// Fields are reported unmodified, including the signed amount.
		if unusual[0].Amount != -50000 {
			t.Errorf("expected raw amount -50000, got %d", unusual[0].Amount)
		}
		if unusual[0].Description != "new laptop" {
			t.Errorf("expected description preserved, got %q", unusual[0].Description)
		}
	})

	t.Run("threshold_is_exclusive", func(t *testing.T) {
		// Identical amounts: stddev 0, threshold == mean. Nothing exceeds it.
		txs := []models.Transaction{
			expense("1", 1000, day(2025, 1, 1), "A", ""),
			expense("2", 1000, day(2025, 1, 2), "A", ""),
			expense("3", 1000, day(2025, 1, 3), "A", ""),
		}
		if got := detectUnusualTransactions(txs); len(got) != 0 {
			t.Errorf("amount equal to threshold must not be flagged, got %d", len(got))
		}

		// [1, 1, 1, 1, 10] lands the 10 exactly on the threshold:
		// mean 2.8, stddev 3.6, mean + 2*stddev = 10.0. Not strictly above,
		// so nothing is flagged.
		boundary := []models.Transaction{
			expense("1", 100, day(2025, 1, 1), "A", ""),
			expense("2", 100, day(2025, 1, 2), "A", ""),
			expense("3", 100, day(2025, 1, 3), "A", ""),
			expense("4", 100, day(2025, 1, 4), "A", ""),
			expense("5", 1000, day(2025, 1, 5), "A", ""),
		}
		if got := detectUnusualTransactions(boundary); len(got) != 0 {
			t.Errorf("amount exactly at threshold must not be flagged, got %d", len(got))
		}
	})

	t.Run("fewer_than_two_transactions", func(t *testing.T) {
		if got := detectUnusualTransactions(nil); len(got) != 0 {
			t.Errorf("empty set: expected no flags, got %d", len(got))
		}
		single := []models.Transaction{expense("1", 99999, day(2025, 1, 1), "A", "")}
		if got := detectUnusualTransactions(single); len(got) != 0 {
			t.Errorf("single transaction: expected no flags, got %d", len(got))
		}
	})
}

func TestGenerateInsights(t *testing.T) {
	t.Run("full_pipeline_over_stored_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInsightsService(store.NewTransactionStore(db))
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, 1000, day(2025, 1, 5), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 1200, day(2025, 1, 12), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 950, day(2025, 1, 19), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 1050, day(2025, 1, 26), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 1100, day(2025, 2, 3), "Utilities", "power bill")
		testutil.CreateTestTransaction(t, db, user.ID, 900, day(2025, 2, 9), "Entertainment", "cinema")
		testutil.CreateTestTransaction(t, db, user.ID, 1000, day(2025, 2, 11), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 1100, day(2025, 2, 14), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 900, day(2025, 2, 16), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 1000, day(2025, 2, 18), "Groceries", "market")
		testutil.CreateTestTransaction(t, db, user.ID, 50000, day(2025, 2, 20), "Electronics", "new laptop")

		insights, err := svc.GenerateInsights(user.ID)
		testutil.AssertNoError(t, err)

		if len(insights.SpendingPatterns.TopCategories) == 0 {
			t.Error("expected spending patterns")
		}
		if insights.SpendingPatterns.TopCategories[0].Category != "Electronics" {
			t.Errorf("expected Electronics on top, got %s", insights.SpendingPatterns.TopCategories[0].Category)
		}
		if len(insights.UnusualTransactions) != 1 {
			t.Fatalf("expected 1 unusual transaction, got %d", len(insights.UnusualTransactions))
		}
		if insights.UnusualTransactions[0].Description != "new laptop" {
			t.Errorf("expected laptop flagged, got %q", insights.UnusualTransactions[0].Description)
		}
		if insights.Recommendations == nil {
			t.Error("recommendations must be non-nil even when empty")
		}
	})

	t.Run("empty_history_yields_degenerate_result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInsightsService(store.NewTransactionStore(db))
		user := testutil.CreateTestUser(t, db)

		insights, err := svc.GenerateInsights(user.ID)
		testutil.AssertNoError(t, err)

		if len(insights.UnusualTransactions) != 0 || len(insights.Recommendations) != 0 {
			t.Errorf("expected empty analyses, got %+v", insights)
		}
		if insights.SpendingPatterns.MonthlyTrend != 0 {
			t.Errorf("expected zero trend, got %v", insights.SpendingPatterns.MonthlyTrend)
		}
	})

	t.Run("missing_user_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInsightsService(store.NewTransactionStore(db))

		_, err := svc.GenerateInsights("")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("load_failure_surfaces_no_partial_result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.TeardownTestDB(t, db) // closed connection forces a load error
		svc := NewInsightsService(store.NewTransactionStore(db))

		insights, err := svc.GenerateInsights("some-user")
		if err == nil {
			t.Fatal("expected an error from a failing store")
		}
		if insights != nil {
			t.Error("no partial insights object on failure")
		}
	})
}
