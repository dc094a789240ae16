package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-backend/internal/domains/cart/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// maxGuestUpdateAttempts bounds the WATCH retry loop of Update
const maxGuestUpdateAttempts = 5

type guestRedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuestRedisRepository stores guest carts under "cart:session:{id}"
func NewGuestRedisRepository(client *redis.Client, ttl time.Duration) GuestRepositoryInterface {
	if ttl <= 0 {
		ttl = model.GuestCartTTL
	}
	return &guestRedisRepository{
		client: client,
		ttl:    ttl,
	}
}

func guestKey(sessionID string) string {
	return fmt.Sprintf(model.CacheKeyCartBySession, sessionID)
}

// Load implements GuestRepositoryInterface.Load
func (r *guestRedisRepository) Load(ctx context.Context, sessionID string) (*model.GuestCart, error) {
	return r.load(ctx, r.client, sessionID)
}

// Save implements GuestRepositoryInterface.Save
func (r *guestRedisRepository) Save(ctx context.Context, cart *model.GuestCart) error {
	raw, err := encodeGuestCart(cart)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, guestKey(cart.SessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to save guest cart: %w", model.ErrStorageUnavailable, err)
	}
	return nil
}

// Clear implements GuestRepositoryInterface.Clear
func (r *guestRedisRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, guestKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: failed to clear guest cart: %w", model.ErrStorageUnavailable, err)
	}
	return nil
}

// Claim implements GuestRepositoryInterface.Claim with GETDEL
func (r *guestRedisRepository) Claim(ctx context.Context, sessionID string) (*model.GuestCart, error) {
	raw, err := r.client.GetDel(ctx, guestKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewGuestCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to claim guest cart: %w", model.ErrStorageUnavailable, err)
	}
	return decodeGuestCart(sessionID, raw)
}

// Update implements GuestRepositoryInterface.Update using WATCH/MULTI.
// Errors returned by fn abort without writing.
func (r *guestRedisRepository) Update(
	ctx context.Context,
	sessionID string,
	fn func(cart *model.GuestCart) error,
) (*model.GuestCart, error) {
	key := guestKey(sessionID)
	var result *model.GuestCart

	txf := func(tx *redis.Tx) error {
		cart, err := r.load(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if err := fn(cart); err != nil {
			return &callbackError{err: err}
		}

		raw, err := encodeGuestCart(cart)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		result = cart
		return nil
	}

	for attempt := 1; attempt <= maxGuestUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Key changed between WATCH and EXEC, try again
			continue
		}

		var cbErr *callbackError
		if errors.As(err, &cbErr) {
			return nil, cbErr.err
		}
		if errors.Is(err, model.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to update guest cart: %w", model.ErrStorageUnavailable, err)
	}

	return nil, model.ErrConcurrentModification
}

func (r *guestRedisRepository) load(ctx context.Context, cmd redis.Cmdable, sessionID string) (*model.GuestCart, error) {
	raw, err := cmd.Get(ctx, guestKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewGuestCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load guest cart: %w", model.ErrStorageUnavailable, err)
	}
	return decodeGuestCart(sessionID, raw)
}

func decodeGuestCart(sessionID string, raw []byte) (*model.GuestCart, error) {
	var cart model.GuestCart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	cart.SessionID = sessionID
	if cart.Items == nil {
		cart.Items = []model.LineItem{}
	}
	return &cart, nil
}

func encodeGuestCart(cart *model.GuestCart) ([]byte, error) {
	doc := *cart
	if doc.Items == nil {
		doc.Items = []model.LineItem{}
	}
	if doc.DiscountCode == nil {
		doc.DiscountAmount = decimal.Zero
	}
	doc.UpdatedAt = time.Now()

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guest cart: %w", err)
	}
	return raw, nil
}

// callbackError marks errors produced by the Update callback so they are
// returned untouched instead of being reported as storage failures.
type callbackError struct {
	err error
}

func (e *callbackError) Error() string { return e.err.Error() }
