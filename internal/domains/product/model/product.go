package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Filter narrows the public listing
type Filter struct {
	Keyword string
	Offset  int
	Limit   int
}
