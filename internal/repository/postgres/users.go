package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/farmsight/backend/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys
const uniqueViolation = "23505"

// CreateUser persists a new user account
func (r *PostgresRepository) CreateUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("postgres: failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email address
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `
		SELECT id, name, email, phone, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("postgres: failed to query user by email: %w", err)
	}

	return u, nil
}

// GetUserByID retrieves a user by primary key
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	query := `
		SELECT id, name, email, phone, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("postgres: failed to query user by id: %w", err)
	}

	return u, nil
}
