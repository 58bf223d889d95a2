package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanStatus is the lifecycle state of an installment plan
type PlanStatus string

const (
	PlanOpen     PlanStatus = "open"
	PlanArchived PlanStatus = "archived"
)

// InstallmentPlan is a recurring bill with a finite number of remaining
// occurrences. RemainingInstallments is a monotonically decreasing ledger:
// it is decremented when an installment instance transitions to paid and is
// never restored by un-paying.
type InstallmentPlan struct {
	ID                    int32           `json:"id"`
	OwnerID               uuid.UUID       `json:"ownerId"`
	Name                  string          `json:"name"`
	InstallmentAmount     decimal.Decimal `json:"installmentAmount"`
	TotalInstallments     int32           `json:"totalInstallments"`
	RemainingInstallments int32           `json:"remainingInstallments"`
	DueDay                int32           `json:"dueDay"`
	Notes                 string          `json:"notes"`
	Status                PlanStatus      `json:"status"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// CurrentInstallment derives the 1-based number of the next installment to
// pay. It is never stored, so it cannot drift from RemainingInstallments.
func (p *InstallmentPlan) CurrentInstallment() int32 {
	return p.TotalInstallments - p.RemainingInstallments + 1
}

// InstanceName is the display name materialized instances carry, e.g.
// "Sofa (4/12)"
func (p *InstallmentPlan) InstanceName() string {
	return fmt.Sprintf("%s (%d/%d)", p.Name, p.CurrentInstallment(), p.TotalInstallments)
}

// Open reports whether the plan still produces instances
func (p *InstallmentPlan) Open() bool {
	return p.Status == PlanOpen && p.RemainingInstallments > 0
}

type InstallmentPlanRepository interface {
	Create(p *InstallmentPlan) (*InstallmentPlan, error)
	GetByID(ownerID uuid.UUID, id int32) (*InstallmentPlan, error)
	ListByOwner(ownerID uuid.UUID) ([]*InstallmentPlan, error)
	Update(p *InstallmentPlan) (*InstallmentPlan, error)
}
