package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/websocket"
)

// TemplateService manages obligation templates: fixed bills, installment
// plans and cards. Creating a template also drops its first instance into
// the caller's active period so it shows up without waiting for the next
// materialization.
type TemplateService struct {
	templateRepo   domain.FixedTemplateRepository
	planRepo       domain.InstallmentPlanRepository
	cardRepo       domain.CardRepository
	instanceRepo   domain.InstanceRepository
	markerRepo     domain.PeriodMarkerRepository
	eventPublisher websocket.EventPublisher
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(
	templateRepo domain.FixedTemplateRepository,
	planRepo domain.InstallmentPlanRepository,
	cardRepo domain.CardRepository,
	instanceRepo domain.InstanceRepository,
	markerRepo domain.PeriodMarkerRepository,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		planRepo:     planRepo,
		cardRepo:     cardRepo,
		instanceRepo: instanceRepo,
		markerRepo:   markerRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TemplateService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TemplateService) publishEvent(ownerID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// CreateFixedTemplateInput holds the input for creating a fixed template
type CreateFixedTemplateInput struct {
	Name        string
	DueDay      int32
	FixedAmount bool
	Amount      *decimal.Decimal
	Notes       string
}

// CreateFixedTemplate creates a fixed obligation template and its instance
// in the active period
func (s *TemplateService) CreateFixedTemplate(ctx domain.PeriodContext, input CreateFixedTemplateInput) (*domain.FixedTemplate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.DueDay < domain.MinDueDay || input.DueDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidDueDay
	}
	if input.FixedAmount {
		if input.Amount == nil || input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
	}

	template, err := s.templateRepo.Create(&domain.FixedTemplate{
		OwnerID:     ctx.OwnerID,
		Name:        name,
		DueDay:      input.DueDay,
		FixedAmount: input.FixedAmount,
		Amount:      input.Amount,
		Notes:       input.Notes,
		Status:      domain.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	instance := &domain.ObligationInstance{
		OwnerID:          ctx.OwnerID,
		Month:            ctx.Period.Month,
		Year:             ctx.Period.Year,
		Name:             template.Name,
		DueDay:           template.DueDay,
		Kind:             domain.KindFixed,
		SourceTemplateID: int32Ptr(template.ID),
		Notes:            template.Notes,
	}
	if template.FixedAmount && template.Amount != nil {
		amt := *template.Amount
		instance.Amount = &amt
	}
	s.materializeIntoActivePeriod(ctx, instance)

	s.publishEvent(ctx.OwnerID, websocket.FixedTemplateCreated(template))
	return template, nil
}

// UpdateFixedTemplateInput holds the input for updating a fixed template
type UpdateFixedTemplateInput struct {
	Name        string
	DueDay      int32
	FixedAmount bool
	Amount      *decimal.Decimal
	Notes       string
}

// UpdateFixedTemplate updates a fixed template. Existing instances keep
// their materialized values; changes apply from the next materialization.
func (s *TemplateService) UpdateFixedTemplate(ownerID uuid.UUID, id int32, input UpdateFixedTemplateInput) (*domain.FixedTemplate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.DueDay < domain.MinDueDay || input.DueDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidDueDay
	}
	if input.FixedAmount {
		if input.Amount == nil || input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
	}

	template, err := s.templateRepo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}

	template.Name = name
	template.DueDay = input.DueDay
	template.FixedAmount = input.FixedAmount
	template.Amount = input.Amount
	template.Notes = input.Notes

	updated, err := s.templateRepo.Update(template)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.FixedTemplateUpdated(updated))
	return updated, nil
}

// ListFixedTemplates retrieves all fixed templates for an owner
func (s *TemplateService) ListFixedTemplates(ownerID uuid.UUID) ([]*domain.FixedTemplate, error) {
	return s.templateRepo.ListByOwner(ownerID)
}

// DeactivateFixedTemplate stops a template from materializing. Instances
// already created from it are untouched.
func (s *TemplateService) DeactivateFixedTemplate(ownerID uuid.UUID, id int32) error {
	if err := s.templateRepo.Deactivate(ownerID, id); err != nil {
		return err
	}
	s.publishEvent(ownerID, websocket.FixedTemplateDeleted(map[string]interface{}{"id": id}))
	return nil
}

// CreateInstallmentPlanInput holds the input for creating an installment plan
type CreateInstallmentPlanInput struct {
	Name              string
	InstallmentAmount decimal.Decimal
	TotalInstallments int32
	DueDay            int32
	Notes             string
}

// CreateInstallmentPlan creates an installment plan and its first-period
// instance
func (s *TemplateService) CreateInstallmentPlan(ctx domain.PeriodContext, input CreateInstallmentPlanInput) (*domain.InstallmentPlan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.DueDay < domain.MinDueDay || input.DueDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidDueDay
	}
	if input.InstallmentAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.TotalInstallments < 1 {
		return nil, domain.ErrInvalidInstallments
	}

	plan, err := s.planRepo.Create(&domain.InstallmentPlan{
		OwnerID:               ctx.OwnerID,
		Name:                  name,
		InstallmentAmount:     input.InstallmentAmount,
		TotalInstallments:     input.TotalInstallments,
		RemainingInstallments: input.TotalInstallments,
		DueDay:                input.DueDay,
		Notes:                 input.Notes,
		Status:                domain.PlanOpen,
	})
	if err != nil {
		return nil, err
	}

	amt := plan.InstallmentAmount
	s.materializeIntoActivePeriod(ctx, &domain.ObligationInstance{
		OwnerID:          ctx.OwnerID,
		Month:            ctx.Period.Month,
		Year:             ctx.Period.Year,
		Name:             plan.InstanceName(),
		Amount:           &amt,
		DueDay:           plan.DueDay,
		Kind:             domain.KindInstallment,
		SourceTemplateID: int32Ptr(plan.ID),
		Notes:            plan.Notes,
	})

	s.publishEvent(ctx.OwnerID, websocket.PlanCreated(plan))
	return plan, nil
}

// UpdateInstallmentPlanInput holds the input for updating an installment plan
type UpdateInstallmentPlanInput struct {
	Name                  string
	InstallmentAmount     decimal.Decimal
	TotalInstallments     int32
	RemainingInstallments int32
	DueDay                int32
	Notes                 string
}

// UpdateInstallmentPlan updates an installment plan
func (s *TemplateService) UpdateInstallmentPlan(ownerID uuid.UUID, id int32, input UpdateInstallmentPlanInput) (*domain.InstallmentPlan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.DueDay < domain.MinDueDay || input.DueDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidDueDay
	}
	if input.InstallmentAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.TotalInstallments < 1 || input.RemainingInstallments < 0 || input.RemainingInstallments > input.TotalInstallments {
		return nil, domain.ErrInvalidInstallments
	}

	plan, err := s.planRepo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}

	plan.Name = name
	plan.InstallmentAmount = input.InstallmentAmount
	plan.TotalInstallments = input.TotalInstallments
	plan.RemainingInstallments = input.RemainingInstallments
	plan.DueDay = input.DueDay
	plan.Notes = input.Notes
	if plan.RemainingInstallments == 0 {
		plan.Status = domain.PlanArchived
	}

	updated, err := s.planRepo.Update(plan)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.PlanUpdated(updated))
	return updated, nil
}

// ListInstallmentPlans retrieves all installment plans for an owner
func (s *TemplateService) ListInstallmentPlans(ownerID uuid.UUID) ([]*domain.InstallmentPlan, error) {
	return s.planRepo.ListByOwner(ownerID)
}

// ArchiveInstallmentPlan closes a plan early. History stays, future periods
// skip it.
func (s *TemplateService) ArchiveInstallmentPlan(ownerID uuid.UUID, id int32) error {
	plan, err := s.planRepo.GetByID(ownerID, id)
	if err != nil {
		return err
	}
	plan.Status = domain.PlanArchived
	updated, err := s.planRepo.Update(plan)
	if err != nil {
		return err
	}
	s.publishEvent(ownerID, websocket.PlanUpdated(updated))
	return nil
}

// CreateCardInput holds the input for creating a card
type CreateCardInput struct {
	Name        string
	DueDay      int32
	CreditLimit decimal.Decimal
}

// CreateCard creates a card and its invoice slot in the active period
func (s *TemplateService) CreateCard(ctx domain.PeriodContext, input CreateCardInput) (*domain.Card, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.DueDay < domain.MinDueDay || input.DueDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidDueDay
	}
	if input.CreditLimit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	card, err := s.cardRepo.Create(&domain.Card{
		OwnerID:     ctx.OwnerID,
		Name:        name,
		DueDay:      input.DueDay,
		CreditLimit: input.CreditLimit,
		Status:      domain.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	s.materializeIntoActivePeriod(ctx, &domain.ObligationInstance{
		OwnerID:          ctx.OwnerID,
		Month:            ctx.Period.Month,
		Year:             ctx.Period.Year,
		Name:             card.Name,
		DueDay:           card.DueDay,
		Kind:             domain.KindCard,
		SourceTemplateID: int32Ptr(card.ID),
	})

	s.publishEvent(ctx.OwnerID, websocket.CardCreated(card))
	return card, nil
}

// UpdateCardInput holds the input for updating a card
type UpdateCardInput struct {
	Name        string
	DueDay      int32
	CreditLimit decimal.Decimal
}

// UpdateCard updates a card
func (s *TemplateService) UpdateCard(ownerID uuid.UUID, id int32, input UpdateCardInput) (*domain.Card, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.DueDay < domain.MinDueDay || input.DueDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidDueDay
	}
	if input.CreditLimit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	card, err := s.cardRepo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}

	card.Name = name
	card.DueDay = input.DueDay
	card.CreditLimit = input.CreditLimit

	updated, err := s.cardRepo.Update(card)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.CardUpdated(updated))
	return updated, nil
}

// ListCards retrieves all cards for an owner
func (s *TemplateService) ListCards(ownerID uuid.UUID) ([]*domain.Card, error) {
	return s.cardRepo.ListByOwner(ownerID)
}

// DeactivateCard stops a card from materializing invoice slots
func (s *TemplateService) DeactivateCard(ownerID uuid.UUID, id int32) error {
	if err := s.cardRepo.Deactivate(ownerID, id); err != nil {
		return err
	}
	s.publishEvent(ownerID, websocket.CardDeleted(map[string]interface{}{"id": id}))
	return nil
}

// CreateAdhocInstanceInput holds the input for a one-off instance
type CreateAdhocInstanceInput struct {
	Name   string
	Amount *decimal.Decimal
	DueDay int32
	Notes  string
}

// CreateAdhocInstance adds a one-off obligation directly to a period,
// without a backing template
func (s *TemplateService) CreateAdhocInstance(ctx domain.PeriodContext, input CreateAdhocInstanceInput) (*domain.ObligationInstance, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.DueDay < domain.MinDueDay || input.DueDay > domain.MaxDueDay {
		return nil, domain.ErrInvalidDueDay
	}
	if err := ctx.Period.Validate(); err != nil {
		return nil, err
	}
	if input.Amount != nil && input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	count, err := s.instanceRepo.CountByPeriod(ctx.OwnerID, ctx.Period.Year, ctx.Period.Month)
	if err != nil {
		return nil, err
	}

	instance, err := s.instanceRepo.Create(&domain.ObligationInstance{
		OwnerID:  ctx.OwnerID,
		Month:    ctx.Period.Month,
		Year:     ctx.Period.Year,
		Name:     name,
		Amount:   input.Amount,
		DueDay:   input.DueDay,
		Kind:     domain.KindFixed,
		Position: int32(count) + 1,
		Notes:    input.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx.OwnerID, websocket.InstanceCreated(instance))
	return instance, nil
}

// materializeIntoActivePeriod appends a freshly created template's instance
// to the period the caller is looking at. Skipped when that period was never
// visited: the regular materialization will pick the template up there, and
// inserting now would collide with it.
func (s *TemplateService) materializeIntoActivePeriod(ctx domain.PeriodContext, instance *domain.ObligationInstance) {
	materialized, err := s.markerRepo.IsMaterialized(ctx.OwnerID, ctx.Period.Year, ctx.Period.Month)
	if err != nil || !materialized {
		return
	}

	count, err := s.instanceRepo.CountByPeriod(ctx.OwnerID, ctx.Period.Year, ctx.Period.Month)
	if err != nil {
		log.Warn().
			Err(err).
			Str("owner_id", ctx.OwnerID.String()).
			Str("period", ctx.Period.String()).
			Msg("Failed to count instances for new template")
		return
	}
	instance.Position = int32(count) + 1

	created, err := s.instanceRepo.Create(instance)
	if err != nil {
		log.Warn().
			Err(err).
			Str("owner_id", ctx.OwnerID.String()).
			Str("period", ctx.Period.String()).
			Str("name", instance.Name).
			Msg("Failed to materialize new template into active period")
		return
	}

	s.publishEvent(ctx.OwnerID, websocket.InstanceCreated(created))
}
