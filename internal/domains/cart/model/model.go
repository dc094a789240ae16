package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the durable shopping cart of an authenticated user.
// One document per owner; items are stored as a JSONB array.
type Cart struct {
	OwnerID        uuid.UUID       `json:"owner_id" db:"owner_id"`
	Items          []LineItem      `json:"items" db:"items"`
	DiscountCode   *string         `json:"discount_code" db:"discount_code"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`

	// Derived values, recomputed on every save
	Totals Totals `json:"totals"`

	// Version is the optimistic concurrency token. 0 means "never saved".
	Version       int64     `json:"version" db:"version"`
	SchemaVersion int       `json:"schema_version" db:"schema_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// LineItem is one (product, quantity) pair in a cart.
type LineItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Totals holds the computed money values of a cart.
type Totals struct {
	SubTotal       decimal.Decimal `json:"subTotal"`
	Tax            decimal.Decimal `json:"tax"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
}

// ProductSnapshot is the cart's read-only view of a catalog product,
// taken at the moment an operation runs.
type ProductSnapshot struct {
	ID    uuid.UUID
	Name  string
	Image string
	Price decimal.Decimal
	Stock int
}

// PriceBook maps product ids to their current unit price.
type PriceBook map[uuid.UUID]decimal.Decimal

// GuestCart is the session-held cart of an anonymous visitor.
type GuestCart struct {
	SessionID      string          `json:"session_id"`
	Items          []LineItem      `json:"items"`
	DiscountCode   *string         `json:"discount_code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
