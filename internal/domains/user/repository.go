package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the data access contract for users
type Repository interface {
	// Create returns ErrEmailAlreadyExists when the email is taken
	Create(ctx context.Context, user *User) error

	// FindByID returns ErrUserNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail returns ErrUserNotFound when absent
	FindByEmail(ctx context.Context, email string) (*User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdatePassword returns ErrUserNotFound when absent
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// ResetTokenStore keeps password reset tokens, keyed by their hash
type ResetTokenStore interface {
	Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error

	// Consume returns the user of a live token and deletes it, so a token
	// works once. Unknown or expired tokens return ErrInvalidResetToken.
	Consume(ctx context.Context, tokenHash string) (uuid.UUID, error)
}
