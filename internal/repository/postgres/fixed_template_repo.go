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

// FixedTemplateRepository implements domain.FixedTemplateRepository using PostgreSQL
type FixedTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewFixedTemplateRepository creates a new FixedTemplateRepository
func NewFixedTemplateRepository(pool *pgxpool.Pool) *FixedTemplateRepository {
	return &FixedTemplateRepository{pool: pool}
}

const fixedTemplateColumns = "id, owner_id, name, due_day, fixed_amount, amount, notes, status, created_at, updated_at"

func scanFixedTemplate(row pgx.Row) (*domain.FixedTemplate, error) {
	var t domain.FixedTemplate
	var amount pgtype.Numeric
	var status string
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.DueDay, &t.FixedAmount, &amount, &t.Notes, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimalPtr(amount)
	t.Status = domain.TemplateStatus(status)
	return &t, nil
}

// Create creates a new fixed template
func (r *FixedTemplateRepository) Create(t *domain.FixedTemplate) (*domain.FixedTemplate, error) {
	amount, err := decimalPtrToPgNumeric(t.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO fixed_templates (owner_id, name, due_day, fixed_amount, amount, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+fixedTemplateColumns,
		t.OwnerID, t.Name, t.DueDay, t.FixedAmount, amount, t.Notes, string(t.Status))

	return scanFixedTemplate(row)
}

// GetByID retrieves a fixed template by ID
func (r *FixedTemplateRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.FixedTemplate, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+fixedTemplateColumns+" FROM fixed_templates WHERE owner_id = $1 AND id = $2",
		ownerID, id)

	template, err := scanFixedTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	return template, err
}

// ListByOwner retrieves all fixed templates for an owner
func (r *FixedTemplateRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.FixedTemplate, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+fixedTemplateColumns+" FROM fixed_templates WHERE owner_id = $1 ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.FixedTemplate
	for rows.Next() {
		t, err := scanFixedTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Update updates a fixed template
func (r *FixedTemplateRepository) Update(t *domain.FixedTemplate) (*domain.FixedTemplate, error) {
	amount, err := decimalPtrToPgNumeric(t.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE fixed_templates
		SET name = $3, due_day = $4, fixed_amount = $5, amount = $6, notes = $7, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+fixedTemplateColumns,
		t.OwnerID, t.ID, t.Name, t.DueDay, t.FixedAmount, amount, t.Notes)

	updated, err := scanFixedTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	return updated, err
}

// Deactivate sets a fixed template's status to deactivated
func (r *FixedTemplateRepository) Deactivate(ownerID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		UPDATE fixed_templates SET status = 'deactivated', updated_at = now()
		WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
