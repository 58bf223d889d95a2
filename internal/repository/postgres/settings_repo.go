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

// SettingsRepository implements domain.SettingsRepository using PostgreSQL
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func scanSettings(row pgx.Row) (*domain.Settings, error) {
	var s domain.Settings
	var balance pgtype.Numeric
	if err := row.Scan(&s.OwnerID, &balance, &s.ReferenceDay, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.InitialMonthlyBalance = pgNumericToDecimal(balance)
	return &s, nil
}

// GetByOwner retrieves the settings for an owner
func (r *SettingsRepository) GetByOwner(ownerID uuid.UUID) (*domain.Settings, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT owner_id, initial_monthly_balance, reference_day, created_at, updated_at
		FROM settings WHERE owner_id = $1`, ownerID)

	settings, err := scanSettings(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return settings, err
}

// Upsert creates or replaces the settings for an owner
func (r *SettingsRepository) Upsert(s *domain.Settings) (*domain.Settings, error) {
	balance, err := decimalToPgNumeric(s.InitialMonthlyBalance)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO settings (owner_id, initial_monthly_balance, reference_day)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET
			initial_monthly_balance = EXCLUDED.initial_monthly_balance,
			reference_day = EXCLUDED.reference_day,
			updated_at = now()
		RETURNING owner_id, initial_monthly_balance, reference_day, created_at, updated_at`,
		s.OwnerID, balance, s.ReferenceDay)

	return scanSettings(row)
}
