package service

import (
	"context"

	"storefront-backend/internal/domains/cart/model"

	"github.com/google/uuid"
)

// ProductCatalog is the read side of the product domain the cart depends on.
// Lookups must hit the source of truth so stock and price are current.
type ProductCatalog interface {
	// GetSnapshots returns snapshots for the ids that exist.
	// Unknown ids are simply absent from the map.
	GetSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.ProductSnapshot, error)
}

// Caller identifies whose cart a request operates on. An authenticated
// caller owns an account cart; everybody else gets the guest cart of their
// session.
type Caller struct {
	UserID    *uuid.UUID
	SessionID string
}

// IsGuest reports whether the caller is anonymous
func (c Caller) IsGuest() bool {
	return c.UserID == nil
}

type ServiceInterface interface {
	// GetCart returns the computed cart. A caller without a stored cart
	// gets an empty one; nothing is created.
	GetCart(ctx context.Context, caller Caller) (*model.CartResponse, error)

	// AddItem adds quantity of a product, merging with an existing line.
	// Validates: product exists, combined quantity within stock
	AddItem(ctx context.Context, caller Caller, req model.AddItemRequest) (*model.CartResponse, error)

	// RemoveItem drops a product line. Removing an absent product is a no-op.
	RemoveItem(ctx context.Context, caller Caller, productID uuid.UUID) (*model.CartResponse, error)

	// UpdateQuantity sets the absolute quantity of a line, 0 removes it
	UpdateQuantity(ctx context.Context, caller Caller, req model.UpdateQuantityRequest) (*model.CartResponse, error)

	// ApplyDiscount / RemoveDiscount manage the cart's discount, guest or account
	ApplyDiscount(ctx context.Context, caller Caller, req model.ApplyDiscountRequest) (*model.CartResponse, error)
	RemoveDiscount(ctx context.Context, caller Caller) (*model.CartResponse, error)

	// ClearCart empties the cart and drops its discount
	ClearCart(ctx context.Context, caller Caller) (*model.CartResponse, error)

	// SyncGuestCart merges guest items into the caller's account cart
	// all-or-nothing. Empty req.Items means the session's stored guest cart.
	SyncGuestCart(ctx context.Context, caller Caller, req model.SyncCartRequest) (*model.CartResponse, error)
}
