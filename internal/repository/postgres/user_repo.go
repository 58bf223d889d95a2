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

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "id, auth0_id, email, name, picture_url, created_at, updated_at"

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var name, pictureURL pgtype.Text
	if err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &name, &pictureURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = textToStringPtr(name)
	u.PictureURL = textToStringPtr(pictureURL)
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+userColumns+" FROM users WHERE auth0_id = $1", auth0ID)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

// CreateOrGetByAuth0ID provisions a user on first login. The upsert keeps
// profile fields fresh on subsequent logins.
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO users (auth0_id, email, name, picture_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth0_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = COALESCE(EXCLUDED.name, users.name),
			picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
			updated_at = now()
		RETURNING `+userColumns,
		auth0ID, email, stringPtrToText(name), stringPtrToText(pictureURL))

	return scanUser(row)
}
