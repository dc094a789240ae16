package model

import "time"

// Cart document format
const (
	// CurrentSchemaVersion is written into every saved cart row
	CurrentSchemaVersion = 1
)

// Pricing rules
const (
	// TaxRate applied to the subtotal
	TaxRate = "0.10"

	// MoneyPlaces is the number of decimal places used for tax and total
	MoneyPlaces = 2

	// DiscountCode20Off is the only discount code accepted
	DiscountCode20Off = "20 DOLLAR OFF"

	// DiscountAmount20Off is the fixed amount taken off by DiscountCode20Off
	DiscountAmount20Off = "20.00"
)

// Guest carts
const (
	// GuestCartTTL is how long an untouched guest cart is kept in Redis
	GuestCartTTL = 30 * 24 * time.Hour
)

// Cache keys
const (
	// CacheKeyCartBySession format: "cart:session:{sessionID}"
	CacheKeyCartBySession = "cart:session:%s"
)
