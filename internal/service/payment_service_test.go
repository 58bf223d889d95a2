package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/testutil"
)

func newPaymentFixture() (*PaymentService, *testutil.MockInstanceRepository, *testutil.MockInstallmentPlanRepository, *testutil.MockFixedTemplateRepository) {
	instanceRepo := testutil.NewMockInstanceRepository()
	planRepo := testutil.NewMockInstallmentPlanRepository()
	templateRepo := testutil.NewMockFixedTemplateRepository()
	svc := NewPaymentService(instanceRepo, planRepo, templateRepo)
	return svc, instanceRepo, planRepo, templateRepo
}

func TestSetPaid_TogglesFlag(t *testing.T) {
	svc, instanceRepo, _, _ := newPaymentFixture()
	owner := uuid.New()

	amt := decimal.NewFromInt(100)
	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "Internet", Amount: &amt, DueDay: 10, Kind: domain.KindFixed,
	})

	updated, err := svc.SetPaid(owner, 1, true)
	require.NoError(t, err)
	assert.True(t, updated.Paid)

	updated, err = svc.SetPaid(owner, 1, false)
	require.NoError(t, err)
	assert.False(t, updated.Paid)
}

func TestSetPaid_IdempotentNoOp(t *testing.T) {
	svc, instanceRepo, planRepo, _ := newPaymentFixture()
	owner := uuid.New()

	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 1, OwnerID: owner, Name: "Sofa",
		InstallmentAmount: decimal.NewFromInt(120),
		TotalInstallments: 12, RemainingInstallments: 9,
		DueDay: 15, Status: domain.PlanOpen,
	})
	amt := decimal.NewFromInt(120)
	src := int32(1)
	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "Sofa (4/12)", Amount: &amt, DueDay: 15,
		Kind: domain.KindInstallment, SourceTemplateID: &src, Paid: true,
	})

	// Paying an already-paid instance must not decrement again
	_, err := svc.SetPaid(owner, 1, true)
	require.NoError(t, err)

	plan, err := planRepo.GetByID(owner, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(9), plan.RemainingInstallments)
}

func TestSetPaid_InstallmentDecrement(t *testing.T) {
	svc, instanceRepo, planRepo, _ := newPaymentFixture()
	owner := uuid.New()

	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 1, OwnerID: owner, Name: "Sofa",
		InstallmentAmount: decimal.NewFromInt(120),
		TotalInstallments: 12, RemainingInstallments: 9,
		DueDay: 15, Status: domain.PlanOpen,
	})
	amt := decimal.NewFromInt(120)
	src := int32(1)
	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "Sofa (4/12)", Amount: &amt, DueDay: 15,
		Kind: domain.KindInstallment, SourceTemplateID: &src,
	})

	_, err := svc.SetPaid(owner, 1, true)
	require.NoError(t, err)

	plan, err := planRepo.GetByID(owner, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(8), plan.RemainingInstallments)
	assert.Equal(t, domain.PlanOpen, plan.Status)
}

func TestSetPaid_UnpayNeverRestores(t *testing.T) {
	svc, instanceRepo, planRepo, _ := newPaymentFixture()
	owner := uuid.New()

	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 1, OwnerID: owner, Name: "Sofa",
		InstallmentAmount: decimal.NewFromInt(120),
		TotalInstallments: 12, RemainingInstallments: 9,
		DueDay: 15, Status: domain.PlanOpen,
	})
	amt := decimal.NewFromInt(120)
	src := int32(1)
	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "Sofa (4/12)", Amount: &amt, DueDay: 15,
		Kind: domain.KindInstallment, SourceTemplateID: &src,
	})

	_, err := svc.SetPaid(owner, 1, true)
	require.NoError(t, err)
	_, err = svc.SetPaid(owner, 1, false)
	require.NoError(t, err)

	plan, err := planRepo.GetByID(owner, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(8), plan.RemainingInstallments, "un-pay must not restore the installment")

	// Pay again: the ratchet moves one more notch
	_, err = svc.SetPaid(owner, 1, true)
	require.NoError(t, err)
	plan, _ = planRepo.GetByID(owner, 1)
	assert.Equal(t, int32(7), plan.RemainingInstallments)
}

func TestSetPaid_LastInstallmentArchivesPlan(t *testing.T) {
	svc, instanceRepo, planRepo, _ := newPaymentFixture()
	owner := uuid.New()

	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 1, OwnerID: owner, Name: "TV",
		InstallmentAmount: decimal.NewFromInt(200),
		TotalInstallments: 10, RemainingInstallments: 1,
		DueDay: 15, Status: domain.PlanOpen,
	})
	amt := decimal.NewFromInt(200)
	src := int32(1)
	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "TV (10/10)", Amount: &amt, DueDay: 15,
		Kind: domain.KindInstallment, SourceTemplateID: &src,
	})

	_, err := svc.SetPaid(owner, 1, true)
	require.NoError(t, err)

	plan, err := planRepo.GetByID(owner, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), plan.RemainingInstallments)
	assert.Equal(t, domain.PlanArchived, plan.Status)
}

func TestSetPaid_ArchivedPlanSkipsDecrement(t *testing.T) {
	svc, instanceRepo, planRepo, _ := newPaymentFixture()
	owner := uuid.New()

	planRepo.AddPlan(&domain.InstallmentPlan{
		ID: 1, OwnerID: owner, Name: "TV",
		InstallmentAmount: decimal.NewFromInt(200),
		TotalInstallments: 10, RemainingInstallments: 0,
		DueDay: 15, Status: domain.PlanArchived,
	})
	amt := decimal.NewFromInt(200)
	src := int32(1)
	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "TV (10/10)", Amount: &amt, DueDay: 15,
		Kind: domain.KindInstallment, SourceTemplateID: &src,
	})

	// Toggle still succeeds even though the plan is beyond its end
	updated, err := svc.SetPaid(owner, 1, true)
	require.NoError(t, err)
	assert.True(t, updated.Paid)

	plan, _ := planRepo.GetByID(owner, 1)
	assert.Equal(t, int32(0), plan.RemainingInstallments)
	assert.Equal(t, domain.PlanArchived, plan.Status)
}

func TestSetPaid_NotFound(t *testing.T) {
	svc, _, _, _ := newPaymentFixture()

	_, err := svc.SetPaid(uuid.New(), 99, true)
	assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestSetAmount(t *testing.T) {
	svc, instanceRepo, _, _ := newPaymentFixture()
	owner := uuid.New()

	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "Visa", DueDay: 20, Kind: domain.KindCard,
	})

	updated, err := svc.SetAmount(owner, 1, decimal.NewFromFloat(432.17))
	require.NoError(t, err)
	require.NotNil(t, updated.Amount)
	assert.True(t, updated.Amount.Equal(decimal.NewFromFloat(432.17)))

	_, err = svc.SetAmount(owner, 1, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestSetNotes_PropagatesToFixedTemplate(t *testing.T) {
	svc, instanceRepo, _, templateRepo := newPaymentFixture()
	owner := uuid.New()

	amt := decimal.NewFromInt(850)
	templateRepo.AddTemplate(&domain.FixedTemplate{
		ID: 1, OwnerID: owner, Name: "Rent", DueDay: 5,
		FixedAmount: true, Amount: &amt, Status: domain.StatusActive,
	})
	src := int32(1)
	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "Rent", Amount: &amt, DueDay: 5,
		Kind: domain.KindFixed, SourceTemplateID: &src,
	})

	updated, err := svc.SetNotes(owner, 1, "landlord changed IBAN")
	require.NoError(t, err)
	assert.Equal(t, "landlord changed IBAN", updated.Notes)

	template, err := templateRepo.GetByID(owner, 1)
	require.NoError(t, err)
	assert.Equal(t, "landlord changed IBAN", template.Notes)
}

func TestSetNotes_AdhocDoesNotPropagate(t *testing.T) {
	svc, instanceRepo, _, templateRepo := newPaymentFixture()
	owner := uuid.New()

	instanceRepo.AddInstance(&domain.ObligationInstance{
		ID: 1, OwnerID: owner, Month: 3, Year: 2025,
		Name: "One-off repair", DueDay: 12, Kind: domain.KindFixed,
	})

	_, err := svc.SetNotes(owner, 1, "plumber invoice")
	require.NoError(t, err)
	assert.Empty(t, templateRepo.Templates)
}

func TestReorder(t *testing.T) {
	svc, instanceRepo, _, _ := newPaymentFixture()
	owner := uuid.New()

	for i := int32(1); i <= 3; i++ {
		instanceRepo.AddInstance(&domain.ObligationInstance{
			ID: i, OwnerID: owner, Month: 3, Year: 2025,
			Name: "Bill", DueDay: 10, Kind: domain.KindFixed, Position: i,
		})
	}

	require.NoError(t, svc.Reorder(owner, []int32{3, 1, 2}))

	instances, err := instanceRepo.ListByPeriod(owner, 2025, 3)
	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, int32(3), instances[0].ID)
	assert.Equal(t, int32(1), instances[1].ID)
	assert.Equal(t, int32(2), instances[2].ID)
}

func TestReorder_PartialFailure(t *testing.T) {
	svc, instanceRepo, _, _ := newPaymentFixture()
	owner := uuid.New()

	for i := int32(1); i <= 3; i++ {
		instanceRepo.AddInstance(&domain.ObligationInstance{
			ID: i, OwnerID: owner, Month: 3, Year: 2025,
			Name: "Bill", DueDay: 10, Kind: domain.KindFixed, Position: i,
		})
	}

	writeErr := errors.New("write failed")
	instanceRepo.UpdatePositionFn = func(ownerID uuid.UUID, id int32, position int32) error {
		if id == 1 {
			return writeErr
		}
		inst, err := instanceRepo.GetByID(ownerID, id)
		if err != nil {
			return err
		}
		inst.Position = position
		return nil
	}

	err := svc.Reorder(owner, []int32{3, 1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)

	// The writes that succeeded stand
	inst3, _ := instanceRepo.GetByID(owner, 3)
	assert.Equal(t, int32(1), inst3.Position)
	inst2, _ := instanceRepo.GetByID(owner, 2)
	assert.Equal(t, int32(3), inst2.Position)
}
