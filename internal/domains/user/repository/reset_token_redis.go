package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	user "storefront-backend/internal/domains/user"
)

const resetTokenKey = "password_reset:%s"

type resetTokenRedisStore struct {
	client *redis.Client
}

// NewResetTokenStore keeps reset tokens under "password_reset:{hash}"
func NewResetTokenStore(client *redis.Client) user.ResetTokenStore {
	return &resetTokenRedisStore{client: client}
}

func (s *resetTokenRedisStore) Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, fmt.Sprintf(resetTokenKey, tokenHash), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume uses GETDEL so two resets with one token cannot both succeed
func (s *resetTokenRedisStore) Consume(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	raw, err := s.client.GetDel(ctx, fmt.Sprintf(resetTokenKey, tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, user.ErrInvalidResetToken
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("consume reset token: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, user.ErrInvalidResetToken
	}
	return id, nil
}
