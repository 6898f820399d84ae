package models

import "time"

// BudgetPeriod represents the length of a budget's spending window.
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget represents a spending allowance for one category over one time
// window. Amounts are in minor currency units (cents).
//
// A budget is active while its window is open. When the window closes it is
// retired by the rollover engine and replaced by a successor budget whose
// window starts exactly where the predecessor's ended. Retired budgets are
// never mutated again; they form the audit trail consumed by the history
// analytics.
type Budget struct {
	Base
	UserID    string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Category  string       `gorm:"not null" json:"category"`
	Amount    int64        `gorm:"type:bigint;not null" json:"amount"`
	Spent     int64        `gorm:"type:bigint;not null;default:0" json:"spent"`
	Period    BudgetPeriod `gorm:"not null" json:"period"`
	StartDate time.Time    `gorm:"not null" json:"start_date"`
	EndDate   time.Time    `gorm:"not null" json:"end_date"`
	IsActive  bool         `gorm:"default:true" json:"is_active"`

	// PredecessorID links a rolled-over budget to the budget it replaced.
	PredecessorID *string `gorm:"type:uuid;index" json:"predecessor_id,omitempty"`
}

// Expired reports whether the budget's window has closed at the given
// instant. A budget is due exactly at the instant its window closes.
func (b *Budget) Expired(now time.Time) bool {
	return !b.EndDate.After(now)
}

// Unspent returns the remaining allowance, floored at zero. Overspend is not
// carried as debt.
func (b *Budget) Unspent() int64 {
	if b.Spent >= b.Amount {
		return 0
	}
	return b.Amount - b.Spent
}
