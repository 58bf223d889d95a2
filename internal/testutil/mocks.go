package testutil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moncash/moncash-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[string]*domain.User
	ByID  map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockFixedTemplateRepository is a mock implementation of domain.FixedTemplateRepository
type MockFixedTemplateRepository struct {
	Templates map[int32]*domain.FixedTemplate
	NextID    int32
}

// NewMockFixedTemplateRepository creates a new MockFixedTemplateRepository
func NewMockFixedTemplateRepository() *MockFixedTemplateRepository {
	return &MockFixedTemplateRepository{
		Templates: make(map[int32]*domain.FixedTemplate),
		NextID:    1,
	}
}

// Create creates a new fixed template
func (m *MockFixedTemplateRepository) Create(t *domain.FixedTemplate) (*domain.FixedTemplate, error) {
	created := *t
	created.ID = m.NextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = time.Now()
	m.NextID++
	m.Templates[created.ID] = &created
	return &created, nil
}

// GetByID retrieves a fixed template by ID
func (m *MockFixedTemplateRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.FixedTemplate, error) {
	if t, ok := m.Templates[id]; ok && t.OwnerID == ownerID {
		return t, nil
	}
	return nil, domain.ErrTemplateNotFound
}

// ListByOwner retrieves all fixed templates for an owner
func (m *MockFixedTemplateRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.FixedTemplate, error) {
	var result []*domain.FixedTemplate
	for _, t := range m.Templates {
		if t.OwnerID == ownerID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates a fixed template
func (m *MockFixedTemplateRepository) Update(t *domain.FixedTemplate) (*domain.FixedTemplate, error) {
	existing, ok := m.Templates[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return nil, domain.ErrTemplateNotFound
	}
	updated := *t
	updated.UpdatedAt = time.Now()
	m.Templates[t.ID] = &updated
	return &updated, nil
}

// Deactivate sets a fixed template's status to deactivated
func (m *MockFixedTemplateRepository) Deactivate(ownerID uuid.UUID, id int32) error {
	t, ok := m.Templates[id]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrTemplateNotFound
	}
	t.Status = domain.StatusDeactivated
	t.UpdatedAt = time.Now()
	return nil
}

// AddTemplate adds a fixed template to the mock repository (helper for tests)
func (m *MockFixedTemplateRepository) AddTemplate(t *domain.FixedTemplate) {
	m.Templates[t.ID] = t
	if t.ID >= m.NextID {
		m.NextID = t.ID + 1
	}
}

// MockInstallmentPlanRepository is a mock implementation of domain.InstallmentPlanRepository
type MockInstallmentPlanRepository struct {
	Plans  map[int32]*domain.InstallmentPlan
	NextID int32
}

// NewMockInstallmentPlanRepository creates a new MockInstallmentPlanRepository
func NewMockInstallmentPlanRepository() *MockInstallmentPlanRepository {
	return &MockInstallmentPlanRepository{
		Plans:  make(map[int32]*domain.InstallmentPlan),
		NextID: 1,
	}
}

// Create creates a new installment plan
func (m *MockInstallmentPlanRepository) Create(p *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	created := *p
	created.ID = m.NextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = time.Now()
	m.NextID++
	m.Plans[created.ID] = &created
	return &created, nil
}

// GetByID retrieves an installment plan by ID
func (m *MockInstallmentPlanRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.InstallmentPlan, error) {
	if p, ok := m.Plans[id]; ok && p.OwnerID == ownerID {
		return p, nil
	}
	return nil, domain.ErrPlanNotFound
}

// ListByOwner retrieves all installment plans for an owner
func (m *MockInstallmentPlanRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.InstallmentPlan, error) {
	var result []*domain.InstallmentPlan
	for _, p := range m.Plans {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates an installment plan
func (m *MockInstallmentPlanRepository) Update(p *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	existing, ok := m.Plans[p.ID]
	if !ok || existing.OwnerID != p.OwnerID {
		return nil, domain.ErrPlanNotFound
	}
	updated := *p
	updated.UpdatedAt = time.Now()
	m.Plans[p.ID] = &updated
	return &updated, nil
}

// AddPlan adds an installment plan to the mock repository (helper for tests)
func (m *MockInstallmentPlanRepository) AddPlan(p *domain.InstallmentPlan) {
	m.Plans[p.ID] = p
	if p.ID >= m.NextID {
		m.NextID = p.ID + 1
	}
}

// MockCardRepository is a mock implementation of domain.CardRepository
type MockCardRepository struct {
	Cards  map[int32]*domain.Card
	NextID int32
}

// NewMockCardRepository creates a new MockCardRepository
func NewMockCardRepository() *MockCardRepository {
	return &MockCardRepository{
		Cards:  make(map[int32]*domain.Card),
		NextID: 1,
	}
}

// Create creates a new card
func (m *MockCardRepository) Create(c *domain.Card) (*domain.Card, error) {
	created := *c
	created.ID = m.NextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = time.Now()
	m.NextID++
	m.Cards[created.ID] = &created
	return &created, nil
}

// GetByID retrieves a card by ID
func (m *MockCardRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.Card, error) {
	if c, ok := m.Cards[id]; ok && c.OwnerID == ownerID {
		return c, nil
	}
	return nil, domain.ErrCardNotFound
}

// ListByOwner retrieves all cards for an owner
func (m *MockCardRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.Card, error) {
	var result []*domain.Card
	for _, c := range m.Cards {
		if c.OwnerID == ownerID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates a card
func (m *MockCardRepository) Update(c *domain.Card) (*domain.Card, error) {
	existing, ok := m.Cards[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return nil, domain.ErrCardNotFound
	}
	updated := *c
	updated.UpdatedAt = time.Now()
	m.Cards[c.ID] = &updated
	return &updated, nil
}

// Deactivate sets a card's status to deactivated
func (m *MockCardRepository) Deactivate(ownerID uuid.UUID, id int32) error {
	c, ok := m.Cards[id]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrCardNotFound
	}
	c.Status = domain.StatusDeactivated
	c.UpdatedAt = time.Now()
	return nil
}

// AddCard adds a card to the mock repository (helper for tests)
func (m *MockCardRepository) AddCard(c *domain.Card) {
	m.Cards[c.ID] = c
	if c.ID >= m.NextID {
		m.NextID = c.ID + 1
	}
}

// MockInstanceRepository is a mock implementation of domain.InstanceRepository.
// It is safe for concurrent use so materialization race tests can exercise it.
type MockInstanceRepository struct {
	Instances map[int32]*domain.ObligationInstance
	NextID    int32
	mu        sync.Mutex

	// EnforceUniqueSource emulates a unique constraint on
	// (owner, year, month, kind, source template), the way the SQL schema
	// defines it.
	EnforceUniqueSource bool

	// CreateFn overrides Create when set (for failure injection)
	CreateFn func(i *domain.ObligationInstance) (*domain.ObligationInstance, error)
	// UpdatePositionFn overrides UpdatePosition when set (for failure injection)
	UpdatePositionFn func(ownerID uuid.UUID, id int32, position int32) error
}

// NewMockInstanceRepository creates a new MockInstanceRepository
func NewMockInstanceRepository() *MockInstanceRepository {
	return &MockInstanceRepository{
		Instances: make(map[int32]*domain.ObligationInstance),
		NextID:    1,
	}
}

// Create creates a new obligation instance
func (m *MockInstanceRepository) Create(i *domain.ObligationInstance) (*domain.ObligationInstance, error) {
	if m.CreateFn != nil {
		return m.CreateFn(i)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EnforceUniqueSource && i.SourceTemplateID != nil {
		for _, existing := range m.Instances {
			if existing.OwnerID == i.OwnerID && existing.Year == i.Year && existing.Month == i.Month &&
				existing.Kind == i.Kind && existing.SourceTemplateID != nil &&
				*existing.SourceTemplateID == *i.SourceTemplateID {
				return nil, fmt.Errorf("duplicate instance for template %d in %d-%d", *i.SourceTemplateID, i.Year, i.Month)
			}
		}
	}

	created := *i
	created.ID = m.NextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = time.Now()
	m.NextID++
	m.Instances[created.ID] = &created
	return &created, nil
}

// GetByID retrieves an obligation instance by ID
func (m *MockInstanceRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.ObligationInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.Instances[id]; ok && i.OwnerID == ownerID {
		return i, nil
	}
	return nil, domain.ErrInstanceNotFound
}

// ListByPeriod retrieves all instances for a period, ordered by position
func (m *MockInstanceRepository) ListByPeriod(ownerID uuid.UUID, year, month int) ([]*domain.ObligationInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domain.ObligationInstance
	for _, i := range m.Instances {
		if i.OwnerID == ownerID && i.Year == year && i.Month == month {
			result = append(result, i)
		}
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].Position != result[b].Position {
			return result[a].Position < result[b].Position
		}
		return result[a].ID < result[b].ID
	})
	return result, nil
}

// CountByPeriod counts the instances for a period
func (m *MockInstanceRepository) CountByPeriod(ownerID uuid.UUID, year, month int) (int, error) {
	instances, _ := m.ListByPeriod(ownerID, year, month)
	return len(instances), nil
}

// Update updates an obligation instance
func (m *MockInstanceRepository) Update(i *domain.ObligationInstance) (*domain.ObligationInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Instances[i.ID]
	if !ok || existing.OwnerID != i.OwnerID {
		return nil, domain.ErrInstanceNotFound
	}
	updated := *i
	updated.UpdatedAt = time.Now()
	m.Instances[i.ID] = &updated
	return &updated, nil
}

// UpdatePosition updates the position of one instance
func (m *MockInstanceRepository) UpdatePosition(ownerID uuid.UUID, id int32, position int32) error {
	if m.UpdatePositionFn != nil {
		return m.UpdatePositionFn(ownerID, id, position)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.Instances[id]
	if !ok || i.OwnerID != ownerID {
		return domain.ErrInstanceNotFound
	}
	i.Position = position
	i.UpdatedAt = time.Now()
	return nil
}

// AddInstance adds an instance to the mock repository (helper for tests)
func (m *MockInstanceRepository) AddInstance(i *domain.ObligationInstance) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Instances[i.ID] = i
	if i.ID >= m.NextID {
		m.NextID = i.ID + 1
	}
}

// MockPeriodMarkerRepository is a mock implementation of domain.PeriodMarkerRepository
type MockPeriodMarkerRepository struct {
	Markers map[string]bool
	mu      sync.Mutex
}

// NewMockPeriodMarkerRepository creates a new MockPeriodMarkerRepository
func NewMockPeriodMarkerRepository() *MockPeriodMarkerRepository {
	return &MockPeriodMarkerRepository{
		Markers: make(map[string]bool),
	}
}

func markerKey(ownerID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s/%d-%d", ownerID, year, month)
}

// IsMaterialized reports whether a period has been materialized
func (m *MockPeriodMarkerRepository) IsMaterialized(ownerID uuid.UUID, year, month int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Markers[markerKey(ownerID, year, month)], nil
}

// MarkMaterialized records that a period has been materialized (idempotent)
func (m *MockPeriodMarkerRepository) MarkMaterialized(ownerID uuid.UUID, year, month int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Markers[markerKey(ownerID, year, month)] = true
	return nil
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses map[int32]*domain.Expense
	NextID   int32
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		NextID:   1,
	}
}

// Create creates a new expense
func (m *MockExpenseRepository) Create(e *domain.Expense) (*domain.Expense, error) {
	created := *e
	created.ID = m.NextID
	created.CreatedAt = time.Now()
	m.NextID++
	m.Expenses[created.ID] = &created
	return &created, nil
}

// GetByID retrieves an expense by ID
func (m *MockExpenseRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.Expense, error) {
	if e, ok := m.Expenses[id]; ok && e.OwnerID == ownerID {
		return e, nil
	}
	return nil, domain.ErrExpenseNotFound
}

// ListByOwner retrieves all expenses for an owner, newest first
func (m *MockExpenseRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.Expense, error) {
	var result []*domain.Expense
	for _, e := range m.Expenses {
		if e.OwnerID == ownerID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

// Delete hard-deletes an expense
func (m *MockExpenseRepository) Delete(ownerID uuid.UUID, id int32) error {
	e, ok := m.Expenses[id]
	if !ok || e.OwnerID != ownerID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// UpdateReceipt sets or clears the receipt path of an expense
func (m *MockExpenseRepository) UpdateReceipt(ownerID uuid.UUID, id int32, receiptPath *string) error {
	e, ok := m.Expenses[id]
	if !ok || e.OwnerID != ownerID {
		return domain.ErrExpenseNotFound
	}
	e.ReceiptPath = receiptPath
	return nil
}

// AddExpense adds an expense to the mock repository (helper for tests)
func (m *MockExpenseRepository) AddExpense(e *domain.Expense) {
	m.Expenses[e.ID] = e
	if e.ID >= m.NextID {
		m.NextID = e.ID + 1
	}
}

// MockSettingsRepository is a mock implementation of domain.SettingsRepository
type MockSettingsRepository struct {
	Settings map[uuid.UUID]*domain.Settings
}

// NewMockSettingsRepository creates a new MockSettingsRepository
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Settings: make(map[uuid.UUID]*domain.Settings),
	}
}

// GetByOwner retrieves the settings for an owner
func (m *MockSettingsRepository) GetByOwner(ownerID uuid.UUID) (*domain.Settings, error) {
	if s, ok := m.Settings[ownerID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

// Upsert creates or replaces the settings for an owner
func (m *MockSettingsRepository) Upsert(s *domain.Settings) (*domain.Settings, error) {
	stored := *s
	stored.UpdatedAt = time.Now()
	m.Settings[s.OwnerID] = &stored
	return &stored, nil
}

// MockPotRepository is a mock implementation of domain.PotRepository
type MockPotRepository struct {
	Pots    map[uuid.UUID]*domain.Pot
	Entries map[int32]*domain.PotEntry
	NextID  int32
}

// NewMockPotRepository creates a new MockPotRepository
func NewMockPotRepository() *MockPotRepository {
	return &MockPotRepository{
		Pots:    make(map[uuid.UUID]*domain.Pot),
		Entries: make(map[int32]*domain.PotEntry),
		NextID:  1,
	}
}

// GetByOwner retrieves the pot for an owner
func (m *MockPotRepository) GetByOwner(ownerID uuid.UUID) (*domain.Pot, error) {
	if p, ok := m.Pots[ownerID]; ok {
		return p, nil
	}
	return nil, domain.ErrPotNotFound
}

// Upsert creates or replaces the pot for an owner
func (m *MockPotRepository) Upsert(p *domain.Pot) (*domain.Pot, error) {
	stored := *p
	stored.UpdatedAt = time.Now()
	m.Pots[p.OwnerID] = &stored
	return &stored, nil
}

// AddEntry appends a deposit to the pot ledger
func (m *MockPotRepository) AddEntry(e *domain.PotEntry) (*domain.PotEntry, error) {
	created := *e
	created.ID = m.NextID
	created.CreatedAt = time.Now()
	m.NextID++
	m.Entries[created.ID] = &created
	return &created, nil
}

// ListEntries retrieves the pot ledger for an owner, newest first
func (m *MockPotRepository) ListEntries(ownerID uuid.UUID) ([]*domain.PotEntry, error) {
	var result []*domain.PotEntry
	for _, e := range m.Entries {
		if e.OwnerID == ownerID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}
