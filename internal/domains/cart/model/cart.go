package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewCart returns an empty, not yet persisted cart for owner.
func NewCart(ownerID uuid.UUID) *Cart {
	now := time.Now()
	return &Cart{
		OwnerID:        ownerID,
		Items:          []LineItem{},
		DiscountAmount: decimal.Zero,
		Version:        0,
		SchemaVersion:  CurrentSchemaVersion,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsNew reports whether the cart has never been saved
func (c *Cart) IsNew() bool {
	return c.Version == 0
}

// IsEmpty checks if cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// HasDiscount checks if a discount code is applied
func (c *Cart) HasDiscount() bool {
	return c.DiscountCode != nil && *c.DiscountCode != ""
}

// Clone returns a deep copy so a mutation attempt can be thrown away.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	if c.DiscountCode != nil {
		code := *c.DiscountCode
		cp.DiscountCode = &code
	}
	return &cp
}

// NewGuestCart returns an empty guest cart for a session
func NewGuestCart(sessionID string) *GuestCart {
	return &GuestCart{
		SessionID:      sessionID,
		Items:          []LineItem{},
		DiscountAmount: decimal.Zero,
	}
}

// IsEmpty reports whether the guest cart holds nothing worth keeping
func (g *GuestCart) IsEmpty() bool {
	return len(g.Items) == 0 && g.DiscountCode == nil
}

// ClearDiscount drops the guest cart's discount
func (g *GuestCart) ClearDiscount() {
	g.DiscountCode = nil
	g.DiscountAmount = decimal.Zero
}

// CombineLines adds the quantities of extra into items, appending products
// items does not hold yet. No stock rules apply.
func CombineLines(items, extra []LineItem) []LineItem {
	out := slices.Clone(items)
	for _, line := range extra {
		idx := slices.IndexFunc(out, func(item LineItem) bool { return item.ProductID == line.ProductID })
		if idx >= 0 {
			out[idx].Quantity += line.Quantity
			continue
		}
		out = append(out, line)
	}
	return out
}

// ProductIDs returns the distinct product ids referenced by the cart
func (c *Cart) ProductIDs() []uuid.UUID {
	return ProductIDsOf(c.Items)
}

// ProductIDsOf returns the product ids of items in order.
func ProductIDsOf(items []LineItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// QuantityOf returns the quantity of productID in items, 0 if absent.
func QuantityOf(items []LineItem, productID uuid.UUID) int {
	for _, item := range items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// ItemCount returns the sum of all quantities
func ItemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// PriceBookFrom builds a price book from catalog snapshots
func PriceBookFrom(products map[uuid.UUID]ProductSnapshot) PriceBook {
	prices := make(PriceBook, len(products))
	for id, p := range products {
		prices[id] = p.Price
	}
	return prices
}
