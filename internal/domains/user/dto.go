package user

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// ========================================
// AUTH DTOs
// ========================================

// RegisterRequest - POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 72).Error("password must be 8-72 characters"),
		),
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 100),
		),
	)
}

// Normalize lowercases and trims the email so lookups are case-insensitive
func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

// LoginRequest - POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the access token
type LoginResponse struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserDTO   `json:"user"`
}

// ForgotPasswordRequest - POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
		),
	)
}

// ResetPasswordRequest - POST /auth/reset-password/:token
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 72).Error("password must be 8-72 characters"),
		),
	)
}

// PasswordResetEmail is the payload of the reset email task
type PasswordResetEmail struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	ResetURL  string `json:"reset_url"`
	ExpiresIn string `json:"expires_in"`
}

// ========================================
// USER DTOs
// ========================================

// UserDTO is the public view of a user
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail lowercases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
