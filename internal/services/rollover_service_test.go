package services

import (
	"errors"
	"testing"
	"time"

	"ledgerly/internal/models"
	"ledgerly/internal/store"
	"ledgerly/internal/testutil"
)

func TestProcessRollover(t *testing.T) {
	t.Run("monthly_window_continuity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		budgets := store.NewBudgetStore(db)
		svc := NewRolloverService(budgets, nil, false)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		budget := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Groceries", 20000, models.BudgetPeriodMonthly, start, end)

		result, err := svc.ProcessRollover(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		succ := result.Successor
		if !succ.StartDate.Equal(end) {
			t.Errorf("successor should start where predecessor ended: got %v, want %v", succ.StartDate, end)
		}
		wantEnd := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		if !succ.EndDate.Equal(wantEnd) {
			t.Errorf("successor should span one calendar month: got %v, want %v", succ.EndDate, wantEnd)
		}
		if succ.Amount != 20000 {
			t.Errorf("expected amount carried unchanged, got %d", succ.Amount)
		}
		if succ.Spent != 0 {
			t.Errorf("expected spent reset to 0, got %d", succ.Spent)
		}
		if succ.Category != "Groceries" {
			t.Errorf("expected category Groceries, got %s", succ.Category)
		}
		if !succ.IsActive {
			t.Error("successor should be active")
		}
		if succ.PredecessorID == nil || *succ.PredecessorID != budget.ID {
			t.Error("successor should link back to its predecessor")
		}
		if result.Predecessor.IsActive {
			t.Error("predecessor should be retired")
		}
	})

	t.Run("weekly_window_continuity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, 7)
		budget := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Dining Out", 5000, models.BudgetPeriodWeekly, start, end)

		result, err := svc.ProcessRollover(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if !result.Successor.StartDate.Equal(end) {
			t.Errorf("successor start %v, want %v", result.Successor.StartDate, end)
		}
		if !result.Successor.EndDate.Equal(end.AddDate(0, 0, 7)) {
			t.Errorf("successor end %v, want %v", result.Successor.EndDate, end.AddDate(0, 0, 7))
		}
	})

	t.Run("yearly_window_continuity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		budget := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Insurance", 120000, models.BudgetPeriodYearly, start, end)

		result, err := svc.ProcessRollover(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		wantEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		if !result.Successor.EndDate.Equal(wantEnd) {
			t.Errorf("successor end %v, want %v", result.Successor.EndDate, wantEnd)
		}
	})

	t.Run("carry_forward_adds_unspent_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, true)
		user := testutil.CreateTestUser(t, db)

		start := time.Now().AddDate(0, -1, 0)
		budget := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Groceries", 20000, models.BudgetPeriodMonthly, start, time.Now().AddDate(0, 0, -1))
		if err := db.Model(budget).Update("spent", 15000).Error; err != nil {
			t.Fatalf("failed to set spent: %v", err)
		}

		result, err := svc.ProcessRollover(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if result.Successor.Amount != 25000 {
			t.Errorf("expected allowance 25000 (20000 + 5000 unspent), got %d", result.Successor.Amount)
		}
	})

	t.Run("carry_forward_ignores_overspend", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, true)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, "Shopping", 10000)
		if err := db.Model(budget).Update("spent", 14000).Error; err != nil {
			t.Fatalf("failed to set spent: %v", err)
		}

		result, err := svc.ProcessRollover(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		// Overspend is not carried as debt.
		if result.Successor.Amount != 10000 {
			t.Errorf("expected allowance 10000, got %d", result.Successor.Amount)
		}
	})

	t.Run("idempotent_per_predecessor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, "Groceries", 20000)

		_, err := svc.ProcessRollover(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.ProcessRollover(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_ALREADY_ROLLED")

		var successors int64
		if err := db.Model(&models.Budget{}).Where("predecessor_id = ?", budget.ID).Count(&successors).Error; err != nil {
			t.Fatalf("failed to count successors: %v", err)
		}
		if successors != 1 {
			t.Errorf("expected exactly 1 successor, got %d", successors)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.ProcessRollover(user.ID, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID, "Groceries", 20000)

		_, err := svc.ProcessRollover(other.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("missing_ids", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)

		_, err := svc.ProcessRollover("", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

// flakyBudgetStore wraps a real BudgetStore, counts lookups, and fails
// CreateSuccessor for one configured budget ID.
type flakyBudgetStore struct {
	store.BudgetStore
	failFor string
	lookups int
}

func (f *flakyBudgetStore) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	f.lookups++
	return f.BudgetStore.GetBudgetByID(userID, budgetID)
}

func (f *flakyBudgetStore) CreateSuccessor(predecessor, successor *models.Budget) error {
	if predecessor.ID == f.failFor {
		return errors.New("simulated write failure")
	}
	return f.BudgetStore.CreateSuccessor(predecessor, successor)
}

func TestCheckUserBudgetsOnLogin(t *testing.T) {
	t.Run("rolls_only_expired_budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)
		user := testutil.CreateTestUser(t, db)

		expired := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Groceries", 20000,
			models.BudgetPeriodMonthly, time.Now().AddDate(0, -1, -1), time.Now().AddDate(0, 0, -1))
		if err := db.Model(expired).Update("spent", 15000).Error; err != nil {
			t.Fatalf("failed to set spent: %v", err)
		}
		current := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Utilities", 8000,
			models.BudgetPeriodMonthly, time.Now(), time.Now().AddDate(0, 1, 0))

		svc.CheckUserBudgetsOnLogin(user.ID)

		var successors []models.Budget
		if err := db.Where("predecessor_id IS NOT NULL").Find(&successors).Error; err != nil {
			t.Fatalf("failed to load successors: %v", err)
		}
		if len(successors) != 1 {
			t.Fatalf("expected exactly 1 successor, got %d", len(successors))
		}
		if successors[0].Category != "Groceries" {
			t.Errorf("expected Groceries successor, got %s", successors[0].Category)
		}
		if successors[0].Amount != 20000 {
			t.Errorf("expected amount unchanged without carry-forward, got %d", successors[0].Amount)
		}

		var unchanged models.Budget
		if err := db.First(&unchanged, "id = ?", current.ID).Error; err != nil {
			t.Fatalf("failed to reload current budget: %v", err)
		}
		if !unchanged.IsActive {
			t.Error("non-expired budget must not be touched")
		}
	})

	t.Run("budget_due_exactly_now_is_rolled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)
		user := testutil.CreateTestUser(t, db)

		// End date at (or a hair before) now: the comparison is inclusive.
		testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Groceries", 20000,
			models.BudgetPeriodWeekly, time.Now().AddDate(0, 0, -7), time.Now())

		svc.CheckUserBudgetsOnLogin(user.ID)

		var successors int64
		if err := db.Model(&models.Budget{}).Where("predecessor_id IS NOT NULL").Count(&successors).Error; err != nil {
			t.Fatalf("failed to count successors: %v", err)
		}
		if successors != 1 {
			t.Errorf("expected 1 successor for budget due exactly now, got %d", successors)
		}
	})

	t.Run("one_failure_does_not_stop_the_scan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		past := time.Now().AddDate(0, 0, -1)
		b1 := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Groceries", 20000,
			models.BudgetPeriodMonthly, past.AddDate(0, -1, 0), past)
		b2 := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Utilities", 8000,
			models.BudgetPeriodMonthly, past.AddDate(0, -1, 0), past)
		b3 := testutil.CreateTestBudgetWithWindow(t, db, user.ID, "Shopping", 15000,
			models.BudgetPeriodMonthly, past.AddDate(0, -1, 0), past)

		flaky := &flakyBudgetStore{BudgetStore: store.NewBudgetStore(db), failFor: b2.ID}
		svc := NewRolloverService(flaky, nil, false)

		svc.CheckUserBudgetsOnLogin(user.ID)

		// Every expired budget must have been attempted despite the failure.
		if flaky.lookups != 3 {
			t.Errorf("expected rollover attempted for all 3 budgets, got %d attempts", flaky.lookups)
		}

		var successors []models.Budget
		if err := db.Where("predecessor_id IS NOT NULL").Find(&successors).Error; err != nil {
			t.Fatalf("failed to load successors: %v", err)
		}
		if len(successors) != 2 {
			t.Fatalf("expected 2 successors, got %d", len(successors))
		}
		rolled := map[string]bool{}
		for _, s := range successors {
			rolled[*s.PredecessorID] = true
		}
		if !rolled[b1.ID] || !rolled[b3.ID] {
			t.Error("both healthy budgets should have successors")
		}
		if rolled[b2.ID] {
			t.Error("failing budget must not have a successor")
		}
	})

	t.Run("load_failure_is_swallowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.TeardownTestDB(t, db) // close the connection to force load errors
		svc := NewRolloverService(store.NewBudgetStore(db), nil, false)

		// Must not panic or propagate.
		svc.CheckUserBudgetsOnLogin("some-user")
	})
}

func TestAdvancePeriod(t *testing.T) {
	from := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	if got := advancePeriod(from, models.BudgetPeriodWeekly); !got.Equal(from.AddDate(0, 0, 7)) {
		t.Errorf("weekly: got %v", got)
	}
	// Calendar-month advance normalizes Jan 31 to Mar 3 (AddDate semantics).
	if got := advancePeriod(from, models.BudgetPeriodMonthly); !got.Equal(from.AddDate(0, 1, 0)) {
		t.Errorf("monthly: got %v", got)
	}
	if got := advancePeriod(from, models.BudgetPeriodYearly); !got.Equal(from.AddDate(1, 0, 0)) {
		t.Errorf("yearly: got %v", got)
	}
}
