package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card is a named credit card producing one invoice instance per period.
// The invoice amount is never a card attribute; it starts unset each period
// and is entered when the invoice closes.
type Card struct {
	ID          int32           `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Name        string          `json:"name"`
	DueDay      int32           `json:"dueDay"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Status      TemplateStatus  `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Active reports whether the card participates in future materialization
func (c *Card) Active() bool {
	return c.Status == StatusActive
}

type CardRepository interface {
	Create(c *Card) (*Card, error)
	GetByID(ownerID uuid.UUID, id int32) (*Card, error)
	ListByOwner(ownerID uuid.UUID) ([]*Card, error)
	Update(c *Card) (*Card, error)
	Deactivate(ownerID uuid.UUID, id int32) error
}
