package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TemplateStatus is the lifecycle state of a recurring template. Deleting a
// template never removes the row; it moves to StatusDeactivated so historical
// instances keep a valid reference.
type TemplateStatus string

const (
	StatusActive      TemplateStatus = "active"
	StatusDeactivated TemplateStatus = "deactivated"
)

// FixedTemplate is a recurring bill definition. Amount is nil when the bill
// is variable and entered per period.
type FixedTemplate struct {
	ID          int32            `json:"id"`
	OwnerID     uuid.UUID        `json:"ownerId"`
	Name        string           `json:"name"`
	DueDay      int32            `json:"dueDay"`
	FixedAmount bool             `json:"fixedAmount"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Notes       string           `json:"notes"`
	Status      TemplateStatus   `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Active reports whether the template participates in future materialization
func (t *FixedTemplate) Active() bool {
	return t.Status == StatusActive
}

type FixedTemplateRepository interface {
	Create(t *FixedTemplate) (*FixedTemplate, error)
	GetByID(ownerID uuid.UUID, id int32) (*FixedTemplate, error)
	ListByOwner(ownerID uuid.UUID) ([]*FixedTemplate, error)
	Update(t *FixedTemplate) (*FixedTemplate, error)
	Deactivate(ownerID uuid.UUID, id int32) error
}
