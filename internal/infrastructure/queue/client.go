package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	cartModel "storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/user"
	"storefront-backend/internal/shared"
	"storefront-backend/pkg/logger"
)

const (
	clearCartMaxRetry = 3
	clearCartTimeout  = 30 * time.Second

	resetEmailMaxRetry = 5
	resetEmailTimeout  = time.Minute
)

// enqueuer is the part of *asynq.Client the producer uses
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client publishes background tasks onto the shared Redis
type Client struct {
	asynq enqueuer
}

func NewClient(redisOpt asynq.RedisClientOpt) *Client {
	return &Client{asynq: asynq.NewClient(redisOpt)}
}

// EnqueueClearCart schedules an account cart to be emptied by the worker
func (c *Client) EnqueueClearCart(ctx context.Context, ownerID uuid.UUID, reason string) error {
	payload, err := json.Marshal(cartModel.ClearCartPayload{
		OwnerID: ownerID,
		Reason:  reason,
	})
	if err != nil {
		return fmt.Errorf("marshal clear cart payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeClearCart, payload)
	info, err := c.asynq.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(clearCartMaxRetry),
		asynq.Timeout(clearCartTimeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeClearCart, err)
	}

	logger.Info("task enqueued", map[string]interface{}{
		"task_id":  info.ID,
		"type":     shared.TypeClearCart,
		"owner_id": ownerID.String(),
		"reason":   reason,
	})
	return nil
}

// EnqueuePasswordResetEmail schedules the reset link email on the critical queue
func (c *Client) EnqueuePasswordResetEmail(ctx context.Context, email user.PasswordResetEmail) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal password reset payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeSendPasswordReset, payload)
	info, err := c.asynq.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(resetEmailMaxRetry),
		asynq.Timeout(resetEmailTimeout),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeSendPasswordReset, err)
	}

	logger.Info("task enqueued", map[string]interface{}{
		"task_id": info.ID,
		"type":    shared.TypeSendPasswordReset,
	})
	return nil
}

func (c *Client) Close() error {
	return c.asynq.Close()
}
