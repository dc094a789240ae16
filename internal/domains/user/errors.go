package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("User already exists")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrInvalidResetToken  = errors.New("Invalid or expired token")
)
