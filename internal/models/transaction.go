package models

import "time"

// TransactionKind represents the direction of a transaction.
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// Transaction represents a single money movement. Amount is in minor
// currency units (cents) and is signed: outflows are negative. Analytics
// always work on absolute values, normalized in one place.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind        TransactionKind `gorm:"not null" json:"kind"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Category    string          `gorm:"index" json:"category"`
}

// AbsAmount returns the transaction's absolute amount in cents.
func (t *Transaction) AbsAmount() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
