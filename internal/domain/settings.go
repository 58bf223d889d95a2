package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings defaults applied when an owner has no stored settings yet
const (
	DefaultInitialBalance = 5500
	DefaultReferenceDay   = 10
)

// Settings is the per-owner singleton. ReferenceDay is the day of month on
// which a new financial period is considered to begin; instance bucketing
// stays by calendar month regardless.
type Settings struct {
	OwnerID               uuid.UUID       `json:"ownerId"`
	InitialMonthlyBalance decimal.Decimal `json:"initialMonthlyBalance"`
	ReferenceDay          int32           `json:"referenceDay"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// DefaultSettings builds the settings used before the owner saves their own
func DefaultSettings(ownerID uuid.UUID) *Settings {
	return &Settings{
		OwnerID:               ownerID,
		InitialMonthlyBalance: decimal.NewFromInt(DefaultInitialBalance),
		ReferenceDay:          DefaultReferenceDay,
	}
}

type SettingsRepository interface {
	GetByOwner(ownerID uuid.UUID) (*Settings, error)
	Upsert(s *Settings) (*Settings, error)
}
