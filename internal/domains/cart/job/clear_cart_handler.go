package job

import (
	"context"
	"fmt"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/service"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ClearCartHandler empties an account cart in the background (cart:clear)
type ClearCartHandler struct {
	cartService service.ServiceInterface
}

func NewClearCartHandler(cartService service.ServiceInterface) *ClearCartHandler {
	return &ClearCartHandler{
		cartService: cartService,
	}
}

func (h *ClearCartHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.ClearCartPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.OwnerID == uuid.Nil {
		return fmt.Errorf("missing owner_id: %w", asynq.SkipRetry)
	}

	logger.Info("Processing clear cart task", map[string]interface{}{
		"owner_id": payload.OwnerID,
		"reason":   payload.Reason,
	})

	// Goes through the versioned save, so a concurrent request never loses
	// a write it made after the clear was scheduled
	_, err := h.cartService.ClearCart(ctx, service.Caller{UserID: &payload.OwnerID})
	if err != nil {
		// asynq retries with backoff
		logger.Error("Failed to clear cart", err)
		return fmt.Errorf("clear cart: %w", err)
	}

	logger.Info("Cleared cart successfully", map[string]interface{}{
		"owner_id": payload.OwnerID,
	})

	return nil
}
