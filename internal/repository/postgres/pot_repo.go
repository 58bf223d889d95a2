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

// PotRepository implements domain.PotRepository using PostgreSQL
type PotRepository struct {
	pool *pgxpool.Pool
}

// NewPotRepository creates a new PotRepository
func NewPotRepository(pool *pgxpool.Pool) *PotRepository {
	return &PotRepository{pool: pool}
}

const potColumns = "owner_id, total, goal, notes, created_at, updated_at"

func scanPot(row pgx.Row) (*domain.Pot, error) {
	var p domain.Pot
	var total, goal pgtype.Numeric
	if err := row.Scan(&p.OwnerID, &total, &goal, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Total = pgNumericToDecimal(total)
	p.Goal = pgNumericToDecimal(goal)
	return &p, nil
}

// GetByOwner retrieves the pot for an owner
func (r *PotRepository) GetByOwner(ownerID uuid.UUID) (*domain.Pot, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+potColumns+" FROM pots WHERE owner_id = $1", ownerID)

	pot, err := scanPot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return pot, err
}

// Upsert creates or updates the pot for an owner
func (r *PotRepository) Upsert(p *domain.Pot) (*domain.Pot, error) {
	total, err := decimalToPgNumeric(p.Total)
	if err != nil {
		return nil, err
	}
	goal, err := decimalToPgNumeric(p.Goal)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO pots (owner_id, total, goal, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id) DO UPDATE SET
			total = EXCLUDED.total,
			goal = EXCLUDED.goal,
			notes = EXCLUDED.notes,
			updated_at = now()
		RETURNING `+potColumns,
		p.OwnerID, total, goal, p.Notes)

	return scanPot(row)
}

// AddEntry appends a deposit to the pot ledger
func (r *PotRepository) AddEntry(e *domain.PotEntry) (*domain.PotEntry, error) {
	amount, err := decimalToPgNumeric(e.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO pot_entries (owner_id, amount, description, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, amount, description, date, created_at`,
		e.OwnerID, amount, e.Description, e.Date)

	var entry domain.PotEntry
	var amt pgtype.Numeric
	if err := row.Scan(&entry.ID, &entry.OwnerID, &amt, &entry.Description, &entry.Date, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.Amount = pgNumericToDecimal(amt)
	return &entry, nil
}

// ListEntries retrieves the deposit ledger for an owner, newest first
func (r *PotRepository) ListEntries(ownerID uuid.UUID) ([]*domain.PotEntry, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT id, owner_id, amount, description, date, created_at FROM pot_entries WHERE owner_id = $1 ORDER BY id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.PotEntry
	for rows.Next() {
		var e domain.PotEntry
		var amt pgtype.Numeric
		if err := rows.Scan(&e.ID, &e.OwnerID, &amt, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Amount = pgNumericToDecimal(amt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
