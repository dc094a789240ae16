package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes returned to API clients
const (
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeItemNotFound           = "ITEM_NOT_FOUND"
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeInvalidDiscountCode    = "INVALID_DISCOUNT_CODE"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeCartNotFound           = "CART_NOT_FOUND"
	ErrCodeStorageUnavailable     = "STORAGE_UNAVAILABLE"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeNotAuthenticated       = "NOT_AUTHENTICATED"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
)

var (
	ErrProductNotFound        = errors.New("Product not found")
	ErrItemNotFound           = errors.New("Product not found in cart")
	ErrInsufficientStock      = errors.New("Not enough stock available")
	ErrInvalidDiscountCode    = errors.New("Invalid discount code")
	ErrInvalidQuantity        = errors.New("quantity must be a positive integer")
	ErrCartNotFound           = errors.New("Cart not found")
	ErrStorageUnavailable     = errors.New("cart storage unavailable")
	ErrConcurrentModification = errors.New("cart was modified concurrently")
	ErrNotAuthenticated       = errors.New("User not logged in")
)

// StockError reports a quantity that exceeds the product's stock.
type StockError struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Available   int       `json:"available"`
	Requested   int       `json:"requested"`
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Not enough stock available for product %s. Available stock: %d, requested: %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// ProductNotFoundError names the product id that could not be resolved.
type ProductNotFoundError struct {
	ProductID uuid.UUID `json:"productId"`
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product not found for ID: %s", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// NewStockError builds a StockError for product p
func NewStockError(p ProductSnapshot, requested int) *StockError {
	return &StockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   requested,
	}
}
