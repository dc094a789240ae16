package model

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// ===================================
// REQUESTS
// ===================================

// ListRequest represents GET /products?keyword=&pageNumber=
type ListRequest struct {
	Keyword string
	Page    int
}

// Normalize clamps paging values
func (r *ListRequest) Normalize() {
	r.Keyword = strings.TrimSpace(r.Keyword)
	if r.Page < 1 {
		r.Page = 1
	}
}

// CacheKey is stable for identical requests
func (r ListRequest) CacheKey() string {
	return fmt.Sprintf("%s:%d:%s", ListCachePrefix, r.Page, strings.ToLower(r.Keyword))
}

// ProductRequest is the body of POST /products and PUT /products/:id
type ProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
}

func (r ProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.By(nonNegativeDecimal)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.Image, validation.Length(0, 500)),
		validation.Field(&r.Brand, validation.Length(0, 100)),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.Stock, validation.Min(0).Error("stock cannot be negative")),
	)
}

func nonNegativeDecimal(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if d.IsNegative() {
		return validation.NewError("validation_min", "must not be negative")
	}
	if d.Exponent() < -2 {
		return validation.NewError("validation_precision", "must have at most 2 decimal places")
	}
	return nil
}

// ===================================
// RESPONSES
// ===================================

// ListResponse mirrors the storefront's paged listing
type ListResponse struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
}

// ImportResult summarizes a seed import
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
