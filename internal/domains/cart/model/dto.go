package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================================
// REQUESTS
// ===================================

// AddItemRequest represents POST /cart/add
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

func (r AddItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.By(requiredUUID)),
		validation.Field(&r.Quantity,
			validation.Required.Error("quantity is required"),
			validation.Min(1).Error("quantity must be at least 1"),
		),
	)
}

// UpdateQuantityRequest represents PUT /cart/update.
// Quantity is absolute; 0 removes the line. It is a pointer so a body
// without it is rejected instead of read as 0.
type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  *int      `json:"quantity"`
}

func (r UpdateQuantityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.By(requiredUUID)),
		validation.Field(&r.Quantity,
			validation.NotNil.Error("quantity is required"),
			validation.Min(0).Error("quantity cannot be negative"),
		),
	)
}

// QuantityValue returns the requested quantity, 0 when unset
func (r UpdateQuantityRequest) QuantityValue() int {
	if r.Quantity == nil {
		return 0
	}
	return *r.Quantity
}

// ApplyDiscountRequest represents POST /cart/discount
type ApplyDiscountRequest struct {
	DiscountCode string `json:"discountCode"`
}

func (r ApplyDiscountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DiscountCode, validation.Required.Error("discountCode is required")),
	)
}

// SyncCartRequest represents POST /cart/sync. An empty item list means
// "use the guest cart held for my session".
type SyncCartRequest struct {
	Items []LineItem `json:"items"`
}

func (r SyncCartRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Each(validation.By(func(value interface{}) error {
			item, _ := value.(LineItem)
			if item.ProductID == uuid.Nil {
				return validation.NewError("validation_product_id", "productId is required")
			}
			if item.Quantity < 1 {
				return validation.NewError("validation_quantity", "quantity must be at least 1")
			}
			return nil
		}))),
	)
}

// uuid.UUID is an array, so validation.Required never sees it as empty
func requiredUUID(value interface{}) error {
	if id, _ := value.(uuid.UUID); id == uuid.Nil {
		return validation.NewError("validation_required", "productId is required")
	}
	return nil
}

// ===================================
// RESPONSES
// ===================================

// CartResponse is the computed cart returned by every cart endpoint
type CartResponse struct {
	OwnerID        *uuid.UUID         `json:"ownerId,omitempty"`
	IsGuest        bool               `json:"isGuest"`
	Items          []CartItemResponse `json:"items"`
	ItemsCount     int                `json:"itemsCount"`
	SubTotal       decimal.Decimal    `json:"subTotal"`
	Tax            decimal.Decimal    `json:"tax"`
	DiscountCode   *string            `json:"discountCode,omitempty"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	Total          decimal.Decimal    `json:"total"`

	// Set by sync: the client must drop its local guest cart
	GuestCartCleared bool `json:"guestCartCleared,omitempty"`
}

// CartItemResponse is one line with current product details
type CartItemResponse struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// NewCartItemResponse joins a line item with its product snapshot
func NewCartItemResponse(item LineItem, p ProductSnapshot) CartItemResponse {
	return CartItemResponse{
		ProductID: item.ProductID,
		Name:      p.Name,
		Image:     p.Image,
		Price:     p.Price,
		Stock:     p.Stock,
		Quantity:  item.Quantity,
		LineTotal: p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
	}
}
