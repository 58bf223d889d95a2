package service

import (
	"github.com/rs/zerolog/log"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/websocket"
)

// MaterializationService turns obligation templates into per-period instances
type MaterializationService struct {
	templateRepo   domain.FixedTemplateRepository
	planRepo       domain.InstallmentPlanRepository
	cardRepo       domain.CardRepository
	instanceRepo   domain.InstanceRepository
	markerRepo     domain.PeriodMarkerRepository
	eventPublisher websocket.EventPublisher
}

// NewMaterializationService creates a new MaterializationService
func NewMaterializationService(
	templateRepo domain.FixedTemplateRepository,
	planRepo domain.InstallmentPlanRepository,
	cardRepo domain.CardRepository,
	instanceRepo domain.InstanceRepository,
	markerRepo domain.PeriodMarkerRepository,
) *MaterializationService {
	return &MaterializationService{
		templateRepo: templateRepo,
		planRepo:     planRepo,
		cardRepo:     cardRepo,
		instanceRepo: instanceRepo,
		markerRepo:   markerRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *MaterializationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *MaterializationService) publishEvent(ctx domain.PeriodContext, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ctx.OwnerID, event)
	}
}

// SwitchPeriod returns the instances of a period, materializing it first if
// it has never been visited. Already-materialized periods are returned as-is,
// including legitimately empty ones.
func (s *MaterializationService) SwitchPeriod(ctx domain.PeriodContext) ([]*domain.ObligationInstance, error) {
	if err := ctx.Period.Validate(); err != nil {
		return nil, err
	}

	materialized, err := s.markerRepo.IsMaterialized(ctx.OwnerID, ctx.Period.Year, ctx.Period.Month)
	if err != nil {
		return nil, err
	}
	if materialized {
		return s.instanceRepo.ListByPeriod(ctx.OwnerID, ctx.Period.Year, ctx.Period.Month)
	}

	return s.Materialize(ctx)
}

// Materialize generates this period's instances from the owner's templates.
// Generation is best-effort per template: a failed insert is collected into a
// MaterializationError while the remaining templates still materialize. The
// period marker is set regardless, so the period is never regenerated.
func (s *MaterializationService) Materialize(ctx domain.PeriodContext) ([]*domain.ObligationInstance, error) {
	if err := ctx.Period.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.buildCandidates(ctx)
	if err != nil {
		return nil, err
	}

	var failures []domain.MaterializationFailure
	for _, candidate := range candidates {
		if _, err := s.instanceRepo.Create(candidate); err != nil {
			log.Error().
				Err(err).
				Str("owner_id", ctx.OwnerID.String()).
				Str("period", ctx.Period.String()).
				Str("kind", string(candidate.Kind)).
				Str("name", candidate.Name).
				Msg("Failed to materialize instance")
			failures = append(failures, domain.MaterializationFailure{
				Kind:       candidate.Kind,
				TemplateID: *candidate.SourceTemplateID,
				Name:       candidate.Name,
				Err:        err,
			})
		}
	}

	if err := s.markerRepo.MarkMaterialized(ctx.OwnerID, ctx.Period.Year, ctx.Period.Month); err != nil {
		return nil, err
	}

	// The store is authoritative: concurrent materialization of the same
	// period makes some inserts lose to the unique index, so the final set
	// is whatever actually landed.
	instances, err := s.instanceRepo.ListByPeriod(ctx.OwnerID, ctx.Period.Year, ctx.Period.Month)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, websocket.PeriodMaterialized(map[string]interface{}{
		"year":          ctx.Period.Year,
		"month":         ctx.Period.Month,
		"instanceCount": len(instances),
	}))

	if len(failures) > 0 {
		return instances, &domain.MaterializationError{
			Period:   ctx.Period,
			Failures: failures,
		}
	}
	return instances, nil
}

// buildCandidates generates the unsaved instances for a period in their
// canonical order: fixed obligations, then installments, then cards.
func (s *MaterializationService) buildCandidates(ctx domain.PeriodContext) ([]*domain.ObligationInstance, error) {
	templates, err := s.templateRepo.ListByOwner(ctx.OwnerID)
	if err != nil {
		return nil, err
	}
	plans, err := s.planRepo.ListByOwner(ctx.OwnerID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.ListByOwner(ctx.OwnerID)
	if err != nil {
		return nil, err
	}

	var candidates []*domain.ObligationInstance
	position := int32(1)

	for _, t := range templates {
		if !t.Active() {
			continue
		}
		instance := &domain.ObligationInstance{
			OwnerID:          ctx.OwnerID,
			Month:            ctx.Period.Month,
			Year:             ctx.Period.Year,
			Name:             t.Name,
			DueDay:           t.DueDay,
			Kind:             domain.KindFixed,
			SourceTemplateID: int32Ptr(t.ID),
			Position:         position,
			Notes:            t.Notes,
		}
		if t.FixedAmount && t.Amount != nil {
			amt := *t.Amount
			instance.Amount = &amt
		}
		candidates = append(candidates, instance)
		position++
	}

	for _, p := range plans {
		if !p.Open() {
			continue
		}
		amt := p.InstallmentAmount
		candidates = append(candidates, &domain.ObligationInstance{
			OwnerID:          ctx.OwnerID,
			Month:            ctx.Period.Month,
			Year:             ctx.Period.Year,
			Name:             p.InstanceName(),
			Amount:           &amt,
			DueDay:           p.DueDay,
			Kind:             domain.KindInstallment,
			SourceTemplateID: int32Ptr(p.ID),
			Position:         position,
			Notes:            p.Notes,
		})
		position++
	}

	for _, c := range cards {
		if !c.Active() {
			continue
		}
		candidates = append(candidates, &domain.ObligationInstance{
			OwnerID:          ctx.OwnerID,
			Month:            ctx.Period.Month,
			Year:             ctx.Period.Year,
			Name:             c.Name,
			DueDay:           c.DueDay,
			Kind:             domain.KindCard,
			SourceTemplateID: int32Ptr(c.ID),
			Position:         position,
		})
		position++
	}

	return candidates, nil
}

func int32Ptr(v int32) *int32 {
	return &v
}
