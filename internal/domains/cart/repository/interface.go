package repository

import (
	"context"

	"storefront-backend/internal/domains/cart/model"

	"github.com/google/uuid"
)

// RepositoryInterface defines data access methods for account carts
type RepositoryInterface interface {
	// FindByOwner retrieves the stored cart of an owner
	// Returns: nil if not exists (don't treat as error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Cart, error)

	// LoadOrCreate returns the stored cart, or a new empty one (Version 0)
	// that is only persisted by the first Save
	LoadOrCreate(ctx context.Context, ownerID uuid.UUID) (*model.Cart, error)

	// Save recomputes totals from prices and writes the whole document.
	// Fails with model.ErrConcurrentModification when the stored version
	// no longer matches cart.Version.
	Save(ctx context.Context, cart *model.Cart, prices model.PriceBook) error
}

// GuestRepositoryInterface stores carts of anonymous sessions
type GuestRepositoryInterface interface {
	// Load returns the session's cart, an empty one if none is stored
	Load(ctx context.Context, sessionID string) (*model.GuestCart, error)

	// Save replaces the session's cart and refreshes the TTL
	Save(ctx context.Context, cart *model.GuestCart) error

	// Clear drops the session's cart
	Clear(ctx context.Context, sessionID string) error

	// Claim atomically reads and deletes the session's cart. Two callers
	// never receive the same stored cart.
	Claim(ctx context.Context, sessionID string) (*model.GuestCart, error)

	// Update runs fn as an atomic read-modify-write on the session's cart.
	// fn may run more than once if another request races it.
	Update(ctx context.Context, sessionID string, fn func(cart *model.GuestCart) error) (*model.GuestCart, error)
}
