package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/domains/user"
	"storefront-backend/pkg/logger"
)

const (
	defaultResetTTL = time.Hour
	resetTokenBytes = 32
)

// PasswordReset holds what the forgot/reset flow needs
type PasswordReset struct {
	Tokens user.ResetTokenStore
	Mailer user.ResetMailer

	// BaseURL is the page the emailed link points at; the token is appended
	BaseURL string
	TTL     time.Duration
}

// ForgotPassword stores a hashed one-time token and queues the email.
// Unknown emails return nil so the endpoint does not reveal accounts.
func (s *userService) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error {
	req.Email = user.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.reset.Tokens.Save(ctx, hashResetToken(token), u.ID, s.reset.TTL); err != nil {
		return err
	}

	err = s.reset.Mailer.EnqueuePasswordResetEmail(ctx, user.PasswordResetEmail{
		Email:     u.Email,
		Name:      u.Name,
		ResetURL:  strings.TrimRight(s.reset.BaseURL, "/") + "/" + token,
		ExpiresIn: humanizeTTL(s.reset.TTL),
	})
	if err != nil {
		return fmt.Errorf("enqueue reset email: %w", err)
	}

	logger.Info("password reset requested", map[string]interface{}{
		"user_id": u.ID.String(),
	})
	return nil
}

// ResetPassword consumes the token and stores the new bcrypt hash
func (s *userService) ResetPassword(ctx context.Context, token string, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return user.ErrInvalidResetToken
	}

	userID, err := s.reset.Tokens.Consume(ctx, hashResetToken(token))
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(passwordHash)); err != nil {
		// The account went away after the token was issued
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrInvalidResetToken
		}
		return fmt.Errorf("update password: %w", err)
	}

	logger.Info("password reset", map[string]interface{}{
		"user_id": userID.String(),
	})
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashResetToken is what gets stored; a leaked Redis dump holds no usable tokens
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func humanizeTTL(ttl time.Duration) string {
	if ttl >= time.Hour && ttl%time.Hour == 0 {
		if hours := int(ttl / time.Hour); hours > 1 {
			return fmt.Sprintf("%d hours", hours)
		}
		return "1 hour"
	}
	return fmt.Sprintf("%d minutes", int(ttl.Minutes()))
}
