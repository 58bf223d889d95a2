package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/websocket"
)

// PaymentService handles the payment lifecycle of obligation instances
type PaymentService struct {
	instanceRepo   domain.InstanceRepository
	planRepo       domain.InstallmentPlanRepository
	templateRepo   domain.FixedTemplateRepository
	eventPublisher websocket.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	instanceRepo domain.InstanceRepository,
	planRepo domain.InstallmentPlanRepository,
	templateRepo domain.FixedTemplateRepository,
) *PaymentService {
	return &PaymentService{
		instanceRepo: instanceRepo,
		planRepo:     planRepo,
		templateRepo: templateRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *PaymentService) publishEvent(ownerID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// SetPaid toggles the paid flag of an instance. Marking an
// installment-sourced instance paid consumes one installment of its plan;
// unmarking never restores it.
func (s *PaymentService) SetPaid(ownerID uuid.UUID, instanceID int32, paid bool) (*domain.ObligationInstance, error) {
	instance, err := s.instanceRepo.GetByID(ownerID, instanceID)
	if err != nil {
		return nil, err
	}

	// Idempotent: already in the requested state
	if instance.Paid == paid {
		return instance, nil
	}

	instance.Paid = paid
	updated, err := s.instanceRepo.Update(instance)
	if err != nil {
		return nil, err
	}

	if paid && instance.Kind == domain.KindInstallment && instance.SourceTemplateID != nil {
		s.consumeInstallment(ownerID, *instance.SourceTemplateID)
	}

	if paid {
		s.publishEvent(ownerID, websocket.InstancePaid(updated))
	} else {
		s.publishEvent(ownerID, websocket.InstanceUnpaid(updated))
	}
	return updated, nil
}

// consumeInstallment decrements the plan's remaining installments and
// archives it when the last one is paid. A plan that is already archived is
// left alone; the instance toggle still succeeds.
func (s *PaymentService) consumeInstallment(ownerID uuid.UUID, planID int32) {
	plan, err := s.planRepo.GetByID(ownerID, planID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("owner_id", ownerID.String()).
			Int32("plan_id", planID).
			Msg("Installment plan lookup failed, skipping decrement")
		return
	}

	if plan.Status == domain.PlanArchived {
		log.Warn().
			Str("owner_id", ownerID.String()).
			Int32("plan_id", planID).
			Msg("Plan already archived, skipping decrement")
		return
	}

	plan.RemainingInstallments--
	if plan.RemainingInstallments <= 0 {
		plan.RemainingInstallments = 0
		plan.Status = domain.PlanArchived
	}

	updatedPlan, err := s.planRepo.Update(plan)
	if err != nil {
		log.Error().
			Err(err).
			Str("owner_id", ownerID.String()).
			Int32("plan_id", planID).
			Msg("Failed to persist installment decrement")
		return
	}

	s.publishEvent(ownerID, websocket.PlanUpdated(updatedPlan))
}

// SetAmount sets the amount of an instance (card invoices, variable bills)
func (s *PaymentService) SetAmount(ownerID uuid.UUID, instanceID int32, amount decimal.Decimal) (*domain.ObligationInstance, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	instance, err := s.instanceRepo.GetByID(ownerID, instanceID)
	if err != nil {
		return nil, err
	}

	instance.Amount = &amount
	updated, err := s.instanceRepo.Update(instance)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.InstanceUpdated(updated))
	return updated, nil
}

// SetNotes sets the notes of an instance. Notes on a fixed-sourced instance
// also flow back to the template so they reappear next period.
func (s *PaymentService) SetNotes(ownerID uuid.UUID, instanceID int32, notes string) (*domain.ObligationInstance, error) {
	instance, err := s.instanceRepo.GetByID(ownerID, instanceID)
	if err != nil {
		return nil, err
	}

	instance.Notes = notes
	updated, err := s.instanceRepo.Update(instance)
	if err != nil {
		return nil, err
	}

	if instance.Kind == domain.KindFixed && instance.SourceTemplateID != nil {
		if err := s.propagateNotes(ownerID, *instance.SourceTemplateID, notes); err != nil {
			log.Warn().
				Err(err).
				Str("owner_id", ownerID.String()).
				Int32("template_id", *instance.SourceTemplateID).
				Msg("Failed to propagate notes to template")
		}
	}

	s.publishEvent(ownerID, websocket.InstanceUpdated(updated))
	return updated, nil
}

func (s *PaymentService) propagateNotes(ownerID uuid.UUID, templateID int32, notes string) error {
	template, err := s.templateRepo.GetByID(ownerID, templateID)
	if err != nil {
		return err
	}
	template.Notes = notes
	_, err = s.templateRepo.Update(template)
	return err
}

// Reorder rewrites instance positions to follow the given ID order.
// Positions are written one by one; a failed write does not stop the rest,
// so a partial reorder leaves a mixed but valid ordering.
func (s *PaymentService) Reorder(ownerID uuid.UUID, orderedIDs []int32) error {
	var errs []error
	for idx, id := range orderedIDs {
		if err := s.instanceRepo.UpdatePosition(ownerID, id, int32(idx+1)); err != nil {
			log.Error().
				Err(err).
				Str("owner_id", ownerID.String()).
				Int32("instance_id", id).
				Msg("Failed to update instance position")
			errs = append(errs, fmt.Errorf("instance %d: %w", id, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.publishEvent(ownerID, websocket.InstancesReordered(map[string]interface{}{
		"order": orderedIDs,
	}))
	return nil
}
