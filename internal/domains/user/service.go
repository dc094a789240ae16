package user

import (
	"context"

	"github.com/google/uuid"
)

// Service is the business logic contract
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// Logout is stateless for the token; it may schedule the cart clear
	Logout(ctx context.Context, userID uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)

	// ForgotPassword mails a reset link; unknown emails succeed silently
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) error
}

// ResetMailer schedules the password reset email
type ResetMailer interface {
	EnqueuePasswordResetEmail(ctx context.Context, email PasswordResetEmail) error
}

// CartClearer schedules an account cart to be emptied in the background
type CartClearer interface {
	EnqueueClearCart(ctx context.Context, ownerID uuid.UUID, reason string) error
}
