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

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = "id, owner_id, amount, description, category, date, receipt_path, created_at"

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	var amount pgtype.Numeric
	var category string
	var receiptPath pgtype.Text
	if err := row.Scan(&e.ID, &e.OwnerID, &amount, &e.Description, &category, &e.Date, &receiptPath, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Amount = pgNumericToDecimal(amount)
	e.Category = domain.ExpenseCategory(category)
	e.ReceiptPath = textToStringPtr(receiptPath)
	return &e, nil
}

// Create creates a new expense
func (r *ExpenseRepository) Create(e *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(e.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO expenses (owner_id, amount, description, category, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+expenseColumns,
		e.OwnerID, amount, e.Description, string(e.Category), e.Date)

	return scanExpense(row)
}

// GetByID retrieves an expense by ID
func (r *ExpenseRepository) GetByID(ownerID uuid.UUID, id int32) (*domain.Expense, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+expenseColumns+" FROM expenses WHERE owner_id = $1 AND id = $2",
		ownerID, id)

	expense, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExpenseNotFound
	}
	return expense, err
}

// ListByOwner retrieves all expenses for an owner, newest first
func (r *ExpenseRepository) ListByOwner(ownerID uuid.UUID) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+expenseColumns+" FROM expenses WHERE owner_id = $1 ORDER BY date DESC, id DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Delete deletes an expense
func (r *ExpenseRepository) Delete(ownerID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM expenses WHERE owner_id = $1 AND id = $2", ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// UpdateReceipt sets or clears the receipt path of an expense
func (r *ExpenseRepository) UpdateReceipt(ownerID uuid.UUID, id int32, receiptPath *string) error {
	tag, err := r.pool.Exec(context.Background(),
		"UPDATE expenses SET receipt_path = $3 WHERE owner_id = $1 AND id = $2",
		ownerID, id, stringPtrToText(receiptPath))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}
