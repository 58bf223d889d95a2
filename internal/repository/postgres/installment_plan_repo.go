package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moncash/moncash-backend/internal/domain"
)

// InstallmentPlanRepository implements domain.InstallmentPlanRepository using PostgreSQL
type InstallmentPlanRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentPlanRepository creates a new InstallmentPlanRepository
func NewInstallmentPlanRepository(pool *pgxpool.Pool) *InstallmentPlanRepository {
	return &InstallmentPlanRepository{pool: pool}
}

const planColumns = "id, owner_id, name, installment_amount, total_installments, remaining_installments, due_day, notes, status, created_at, updated_at"

func scanPlan(row pgx.Row) (*domain.InstallmentPlan, error) {
	var p domain.InstallmentPlan
	var amount pgtype.Numeric
	var status string
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &amount, &p.TotalInstallments, &p.RemainingInstallments, &p.DueDay, &p.Notes, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.InstallmentAmount = pgNumericToDecimal(amount)
	p.Status = domain.PlanStatus(status)
	return &p, nil
}

// Create creates a new installment plan
func (r *InstallmentPlanRepository) Create(p *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	amount, err := decimalToPgNumeric(p.InstallmentAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO installment_plans (owner_id, name, installment_amount, total_installments, remaining_installments, due_day, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+planColumns,
		p.OwnerID, p.Name, amount, p.TotalInstallments, p.RemainingInstallments, p.DueDay, p.Notes, string(p.Status))

	return scanPlan(row)
}

// GetByID retrieves an installment plan by ID
func (r *InstallmentPlanRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.InstallmentPlan, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+planColumns+" FROM installment_plans WHERE owner_id = $1 AND id = $2",
		ownerID, id)

	plan, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	return plan, err
}

// ListByOwner retrieves all installment plans for an owner
func (r *InstallmentPlanRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.InstallmentPlan, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+planColumns+" FROM installment_plans WHERE owner_id = $1 ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*domain.InstallmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Update updates an installment plan
func (r *InstallmentPlanRepository) Update(p *domain.InstallmentPlan) (*domain.InstallmentPlan, error) {
	amount, err := decimalToPgNumeric(p.InstallmentAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE installment_plans
		SET name = $3, installment_amount = $4, total_installments = $5, remaining_installments = $6,
		    due_day = $7, notes = $8, status = $9, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+planColumns,
		p.OwnerID, p.ID, p.Name, amount, p.TotalInstallments, p.RemainingInstallments, p.DueDay, p.Notes, string(p.Status))

	updated, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	return updated, err
}
