package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	user "storefront-backend/internal/domains/user"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns the pgx-backed user.Repository
func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, u.ID, u.Email, u.PasswordHash, u.Name, u.Role).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
