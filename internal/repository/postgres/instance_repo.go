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

// InstanceRepository implements domain.InstanceRepository using PostgreSQL
type InstanceRepository struct {
	pool *pgxpool.Pool
}

// NewInstanceRepository creates a new InstanceRepository
func NewInstanceRepository(pool *pgxpool.Pool) *InstanceRepository {
	return &InstanceRepository{pool: pool}
}

const instanceColumns = "id, owner_id, month, year, name, amount, due_day, kind, source_template_id, paid, position, notes, created_at, updated_at"

func scanInstance(row pgx.Row) (*domain.ObligationInstance, error) {
	var i domain.ObligationInstance
	var amount pgtype.Numeric
	var kind string
	var sourceID pgtype.Int4
	if err := row.Scan(&i.ID, &i.OwnerID, &i.Month, &i.Year, &i.Name, &amount, &i.DueDay, &kind, &sourceID, &i.Paid, &i.Position, &i.Notes, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.Amount = pgNumericToDecimalPtr(amount)
	i.Kind = domain.InstanceKind(kind)
	i.SourceTemplateID = int4ToInt32Ptr(sourceID)
	return &i, nil
}

// Create creates a new obligation instance
func (r *InstanceRepository) Create(i *domain.ObligationInstance) (*domain.ObligationInstance, error) {
	amount, err := decimalPtrToPgNumeric(i.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO obligation_instances (owner_id, month, year, name, amount, due_day, kind, source_template_id, paid, position, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+instanceColumns,
		i.OwnerID, i.Month, i.Year, i.Name, amount, i.DueDay, string(i.Kind),
		int32PtrToInt4(i.SourceTemplateID), i.Paid, i.Position, i.Notes)

	return scanInstance(row)
}

// GetByID retrieves an obligation instance by ID
func (r *InstanceRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.ObligationInstance, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+instanceColumns+" FROM obligation_instances WHERE owner_id = $1 AND id = $2",
		ownerID, id)

	instance, err := scanInstance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInstanceNotFound
	}
	return instance, err
}

// ListByPeriod retrieves all instances for a period, ordered by position
func (r *InstanceRepository) ListByPeriod(ownerID uuid.UUID, year, month int) ([]*domain.ObligationInstance, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+instanceColumns+" FROM obligation_instances WHERE owner_id = $1 AND year = $2 AND month = $3 ORDER BY position, id",
		ownerID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []*domain.ObligationInstance
	for rows.Next() {
		i, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, i)
	}
	return instances, rows.Err()
}

// CountByPeriod counts the instances for a period
func (r *InstanceRepository) CountByPeriod(ownerID uuid.UUID, year, month int) (int, error) {
	var count int
	err := r.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM obligation_instances WHERE owner_id = $1 AND year = $2 AND month = $3",
		ownerID, year, month).Scan(&count)
	return count, err
}

// Update updates an obligation instance
func (r *InstanceRepository) Update(i *domain.ObligationInstance) (*domain.ObligationInstance, error) {
	amount, err := decimalPtrToPgNumeric(i.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE obligation_instances
		SET name = $3, amount = $4, due_day = $5, paid = $6, notes = $7, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+instanceColumns,
		i.OwnerID, i.ID, i.Name, amount, i.DueDay, i.Paid, i.Notes)

	updated, err := scanInstance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInstanceNotFound
	}
	return updated, err
}

// UpdatePosition updates the position of one instance
func (r *InstanceRepository) UpdatePosition(ownerID uuid.UUID, id int32, position int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		UPDATE obligation_instances SET position = $3, updated_at = now()
		WHERE owner_id = $1 AND id = $2`, ownerID, id, position)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}
