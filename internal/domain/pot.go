package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pot is the per-owner savings balance with an optional goal. Total is only
// ever changed through deposits recorded in the append-only ledger.
type Pot struct {
	OwnerID   uuid.UUID       `json:"ownerId"`
	Total     decimal.Decimal `json:"total"`
	Goal      decimal.Decimal `json:"goal"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PotEntry is one deposit in the pot ledger
type PotEntry struct {
	ID          int32           `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type PotRepository interface {
	GetByOwner(ownerID uuid.UUID) (*Pot, error)
	Upsert(p *Pot) (*Pot, error)
	AddEntry(e *PotEntry) (*PotEntry, error)
	ListEntries(ownerID uuid.UUID) ([]*PotEntry, error)
}
