package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstanceKind identifies which template family produced an instance
type InstanceKind string

const (
	KindFixed       InstanceKind = "fixed"
	KindInstallment InstanceKind = "installment"
	KindCard        InstanceKind = "card"
)

// ValidInstanceKind reports whether k is one of the known kinds
func ValidInstanceKind(k InstanceKind) bool {
	switch k {
	case KindFixed, KindInstallment, KindCard:
		return true
	}
	return false
}

// ObligationInstance is a concrete payable line item scoped to one period.
// Amount is nil while it is not yet defined (card invoices and variable
// fixed bills). SourceTemplateID is nil for items the user created ad hoc.
// Instances are never auto-deleted; deactivating a template leaves the
// instances it already produced untouched.
type ObligationInstance struct {
	ID               int32            `json:"id"`
	OwnerID          uuid.UUID        `json:"ownerId"`
	Month            int              `json:"month"`
	Year             int              `json:"year"`
	Name             string           `json:"name"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	DueDay           int32            `json:"dueDay"`
	Kind             InstanceKind     `json:"kind"`
	SourceTemplateID *int32           `json:"sourceTemplateId,omitempty"`
	Paid             bool             `json:"paid"`
	Position         int32            `json:"position"`
	Notes            string           `json:"notes"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Period returns the period the instance belongs to
func (i *ObligationInstance) Period() Period {
	return Period{Month: i.Month, Year: i.Year}
}

// InstanceRepository persists month-scoped obligation instances. ListByPeriod
// returns instances ordered by Position ascending.
type InstanceRepository interface {
	Create(i *ObligationInstance) (*ObligationInstance, error)
	GetByID(ownerID uuid.UUID, id int32) (*ObligationInstance, error)
	ListByPeriod(ownerID uuid.UUID, year, month int) ([]*ObligationInstance, error)
	CountByPeriod(ownerID uuid.UUID, year, month int) (int, error)
	Update(i *ObligationInstance) (*ObligationInstance, error)
	UpdatePosition(ownerID uuid.UUID, id int32, position int32) error
}
