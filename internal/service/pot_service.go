package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/websocket"
)

// PotService manages the owner's savings pot and its deposit ledger
type PotService struct {
	potRepo        domain.PotRepository
	eventPublisher websocket.EventPublisher
}

// NewPotService creates a new PotService
func NewPotService(potRepo domain.PotRepository) *PotService {
	return &PotService{potRepo: potRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PotService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PotService) publishEvent(ownerID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// GetPot returns the owner's pot, creating an empty one on first access
func (s *PotService) GetPot(ownerID uuid.UUID) (*domain.Pot, error) {
	pot, err := s.potRepo.GetByOwner(ownerID)
	if errors.Is(err, domain.ErrPotNotFound) {
		return s.potRepo.Upsert(&domain.Pot{
			OwnerID: ownerID,
			Total:   decimal.Zero,
			Goal:    decimal.Zero,
		})
	}
	if err != nil {
		return nil, err
	}
	return pot, nil
}

// UpdatePotInput holds the input for updating pot goal and notes
type UpdatePotInput struct {
	Goal  decimal.Decimal
	Notes string
}

// UpdatePot sets the savings goal and notes. The total only moves through
// deposits.
func (s *PotService) UpdatePot(ownerID uuid.UUID, input UpdatePotInput) (*domain.Pot, error) {
	if input.Goal.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	pot, err := s.GetPot(ownerID)
	if err != nil {
		return nil, err
	}

	pot.Goal = input.Goal
	pot.Notes = input.Notes

	updated, err := s.potRepo.Upsert(pot)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.PotUpdated(updated))
	return updated, nil
}

// DepositInput holds the input for a pot deposit
type DepositInput struct {
	Amount      decimal.Decimal
	Description string
	Date        *time.Time
}

// Deposit appends a ledger entry and moves the total accordingly
func (s *PotService) Deposit(ownerID uuid.UUID, input DepositInput) (*domain.PotEntry, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	description := strings.TrimSpace(input.Description)
	if len(description) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	pot, err := s.GetPot(ownerID)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if input.Date != nil {
		date = *input.Date
	}

	entry, err := s.potRepo.AddEntry(&domain.PotEntry{
		OwnerID:     ownerID,
		Amount:      input.Amount,
		Description: description,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}

	pot.Total = pot.Total.Add(input.Amount)
	if _, err := s.potRepo.Upsert(pot); err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.PotDeposit(entry))
	return entry, nil
}

// ListDeposits retrieves the deposit ledger, newest first
func (s *PotService) ListDeposits(ownerID uuid.UUID) ([]*domain.PotEntry, error) {
	return s.potRepo.ListEntries(ownerID)
}
