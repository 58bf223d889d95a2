package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/websocket"
)

// SettingsService manages per-owner configuration
type SettingsService struct {
	settingsRepo   domain.SettingsRepository
	eventPublisher websocket.EventPublisher
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo domain.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SettingsService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// GetSettings returns the owner's settings, falling back to defaults for
// owners who never saved any
func (s *SettingsService) GetSettings(ownerID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.settingsRepo.GetByOwner(ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultSettings(ownerID), nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettingsInput holds the input for updating settings
type UpdateSettingsInput struct {
	InitialMonthlyBalance decimal.Decimal
	ReferenceDay          int32
}

// UpdateSettings validates and stores the owner's settings
func (s *SettingsService) UpdateSettings(ownerID uuid.UUID, input UpdateSettingsInput) (*domain.Settings, error) {
	if input.InitialMonthlyBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.ReferenceDay < domain.MinDueDay || input.ReferenceDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidReferenceDay
	}

	updated, err := s.settingsRepo.Upsert(&domain.Settings{
		OwnerID:               ownerID,
		InitialMonthlyBalance: input.InitialMonthlyBalance,
		ReferenceDay:          input.ReferenceDay,
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, websocket.SettingsUpdated(updated))
	}
	return updated, nil
}
