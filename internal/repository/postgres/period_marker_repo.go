package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PeriodMarkerRepository implements domain.PeriodMarkerRepository using PostgreSQL
type PeriodMarkerRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodMarkerRepository creates a new PeriodMarkerRepository
func NewPeriodMarkerRepository(pool *pgxpool.Pool) *PeriodMarkerRepository {
	return &PeriodMarkerRepository{pool: pool}
}

// IsMaterialized reports whether the period has already been materialized
func (r *PeriodMarkerRepository) IsMaterialized(ownerID uuid.UUID, year, month int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		"SELECT EXISTS(SELECT 1 FROM period_markers WHERE owner_id = $1 AND year = $2 AND month = $3)",
		ownerID, year, month).Scan(&exists)
	return exists, err
}

// MarkMaterialized records that the period has been materialized. Safe to
// call concurrently; the first writer wins and later calls are no-ops.
func (r *PeriodMarkerRepository) MarkMaterialized(ownerID uuid.UUID, year, month int) error {
	_, err := r.pool.Exec(context.Background(),
		"INSERT INTO period_markers (owner_id, year, month) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		ownerID, year, month)
	return err
}
