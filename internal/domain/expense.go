package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory is the fixed set of ad-hoc spend categories
type ExpenseCategory string

const (
	CategoryFood      ExpenseCategory = "food"
	CategoryMarket    ExpenseCategory = "market"
	CategoryTransport ExpenseCategory = "transport"
	CategoryLeisure   ExpenseCategory = "leisure"
	CategoryHealth    ExpenseCategory = "health"
	CategoryOther     ExpenseCategory = "other"
)

// ExpenseCategories lists every valid category
var ExpenseCategories = []ExpenseCategory{
	CategoryFood, CategoryMarket, CategoryTransport,
	CategoryLeisure, CategoryHealth, CategoryOther,
}

// ValidExpenseCategory reports whether c is one of the known categories
func ValidExpenseCategory(c ExpenseCategory) bool {
	for _, cat := range ExpenseCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Expense is an unscheduled spend, independent of any template. Immutable
// once created except for deletion and receipt attachment; it counts toward
// the totals of the period containing Date.
type Expense struct {
	ID          int32           `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    ExpenseCategory `json:"category"`
	Date        time.Time       `json:"date"`
	ReceiptPath *string         `json:"receiptPath,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ExpenseRepository interface {
	Create(e *Expense) (*Expense, error)
	GetByID(ownerID uuid.UUID, id int32) (*Expense, error)
	ListByOwner(ownerID uuid.UUID) ([]*Expense, error)
	Delete(ownerID uuid.UUID, id int32) error
	UpdateReceipt(ownerID uuid.UUID, id int32, receiptPath *string) error
}
