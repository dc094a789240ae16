package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/service"
	"storefront-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCartService struct {
	service.ServiceInterface
	cleared []uuid.UUID
	err     error
}

func (f *fakeCartService) ClearCart(_ context.Context, caller service.Caller) (*model.CartResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.cleared = append(f.cleared, *caller.UserID)
	return &model.CartResponse{}, nil
}

func task(t *testing.T, payload interface{}) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeClearCart, raw)
}

func TestClearCartHandler(t *testing.T) {
	svc := &fakeCartService{}
	h := NewClearCartHandler(svc)
	ownerID := uuid.New()

	err := h.ProcessTask(context.Background(), task(t, model.ClearCartPayload{OwnerID: ownerID, Reason: "logout"}))

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ownerID}, svc.cleared)
}

func TestClearCartHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewClearCartHandler(&fakeCartService{})

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeClearCart, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h.ProcessTask(context.Background(), task(t, model.ClearCartPayload{}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClearCartHandler_ServiceErrorIsRetried(t *testing.T) {
	h := NewClearCartHandler(&fakeCartService{err: model.ErrConcurrentModification})

	err := h.ProcessTask(context.Background(), task(t, model.ClearCartPayload{OwnerID: uuid.New()}))

	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.ErrorIs(t, err, model.ErrConcurrentModification)
}
