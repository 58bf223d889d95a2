package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/websocket"
)

// ExpenseService handles ad hoc day-to-day expenses
type ExpenseService struct {
	expenseRepo    domain.ExpenseRepository
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExpenseService) publishEvent(ownerID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// CreateExpenseInput holds the input for recording an expense
type CreateExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	Category    domain.ExpenseCategory
	Date        *time.Time
}

// CreateExpense records an ad hoc expense
func (s *ExpenseService) CreateExpense(ownerID uuid.UUID, input CreateExpenseInput) (*domain.Expense, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrNameRequired
	}
	if len(description) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	category := input.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidExpenseCategory(category) {
		return nil, domain.ErrInvalidCategory
	}

	date := time.Now().UTC()
	if input.Date != nil {
		date = *input.Date
	}

	expense, err := s.expenseRepo.Create(&domain.Expense{
		OwnerID:     ownerID,
		Amount:      input.Amount,
		Description: description,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.ExpenseCreated(expense))
	return expense, nil
}

// ListExpenses retrieves all expenses for an owner, newest first
func (s *ExpenseService) ListExpenses(ownerID uuid.UUID) ([]*domain.Expense, error) {
	return s.expenseRepo.ListByOwner(ownerID)
}

// ListExpensesInPeriod retrieves the expenses falling into one period under
// the given reference day
func (s *ExpenseService) ListExpensesInPeriod(ownerID uuid.UUID, period domain.Period, referenceDay int32) ([]*domain.Expense, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return ExpensesInPeriod(expenses, period, referenceDay), nil
}

// GetExpense retrieves one expense
func (s *ExpenseService) GetExpense(ownerID uuid.UUID, id int32) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(ownerID, id)
}

// DeleteExpense removes an expense permanently
func (s *ExpenseService) DeleteExpense(ownerID uuid.UUID, id int32) error {
	expense, err := s.expenseRepo.GetByID(ownerID, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ownerID, id); err != nil {
		return err
	}
	s.publishEvent(ownerID, websocket.ExpenseDeleted(expense))
	return nil
}
