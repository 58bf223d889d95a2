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

// CardRepository implements domain.CardRepository using PostgreSQL
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

const cardColumns = "id, owner_id, name, due_day, credit_limit, status, created_at, updated_at"

func scanCard(row pgx.Row) (*domain.Card, error) {
	var c domain.Card
	var limit pgtype.Numeric
	var status string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.DueDay, &limit, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreditLimit = pgNumericToDecimal(limit)
	c.Status = domain.TemplateStatus(status)
	return &c, nil
}

// Create creates a new card
func (r *CardRepository) Create(c *domain.Card) (*domain.Card, error) {
	limit, err := decimalToPgNumeric(c.CreditLimit)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO cards (owner_id, name, due_day, credit_limit, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+cardColumns,
		c.OwnerID, c.Name, c.DueDay, limit, string(c.Status))

	return scanCard(row)
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.Card, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+cardColumns+" FROM cards WHERE owner_id = $1 AND id = $2",
		ownerID, id)

	card, err := scanCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCardNotFound
	}
	return card, err
}

// ListByOwner retrieves all cards for an owner
func (r *CardRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.Card, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+cardColumns+" FROM cards WHERE owner_id = $1 ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// Update updates a card
func (r *CardRepository) Update(c *domain.Card) (*domain.Card, error) {
	limit, err := decimalToPgNumeric(c.CreditLimit)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE cards
		SET name = $3, due_day = $4, credit_limit = $5, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+cardColumns,
		c.OwnerID, c.ID, c.Name, c.DueDay, limit)

	updated, err := scanCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCardNotFound
	}
	return updated, err
}

// Deactivate sets a card's status to deactivated
func (r *CardRepository) Deactivate(ownerID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		UPDATE cards SET status = 'deactivated', updated_at = now()
		WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}
