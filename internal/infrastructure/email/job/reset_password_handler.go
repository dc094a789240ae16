package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/domains/user"
	"storefront-backend/internal/infrastructure/email"
	"storefront-backend/pkg/logger"
)

// ResetPasswordEmailHandler delivers email:password_reset tasks
type ResetPasswordEmailHandler struct {
	emailService email.EmailService
}

func NewResetPasswordEmailHandler(emailService email.EmailService) *ResetPasswordEmailHandler {
	return &ResetPasswordEmailHandler{
		emailService: emailService,
	}
}

func (h *ResetPasswordEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload user.PasswordResetEmail
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("failed to unmarshal reset password payload", err)
		return fmt.Errorf("unmarshal payload: %w", asynq.SkipRetry)
	}
	if payload.Email == "" || payload.ResetURL == "" {
		return fmt.Errorf("incomplete reset password payload: %w", asynq.SkipRetry)
	}

	// SMTP failures are returned so asynq retries them
	err := h.emailService.SendResetPasswordEmail(ctx, email.ResetPasswordData{
		Email:     payload.Email,
		Name:      payload.Name,
		ResetURL:  payload.ResetURL,
		ExpiresIn: payload.ExpiresIn,
	})
	if err != nil {
		return fmt.Errorf("send reset password email: %w", err)
	}

	logger.Info("reset password email sent", map[string]interface{}{
		"type": task.Type(),
	})
	return nil
}
