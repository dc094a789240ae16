package handler

import (
	"errors"
	"net/http"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/service"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
	"storefront-backend/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for cart
type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates handler instance
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// ===================================
// API 1: GET /cart
// ===================================

// GetCart handles GET /cart
// @Summary Get the caller's cart with computed totals
// @Router /cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.service.GetCart(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// ===================================
// API 2: POST /cart/add
// ===================================

// AddItem handles POST /cart/add
// @Summary Add a product, merging with an existing line
// @Router /cart/add [post]
func (h *Handler) AddItem(c *gin.Context) {
	var req model.AddItemRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	cart, err := h.service.AddItem(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Item added to cart", cart)
}

// ===================================
// API 3: DELETE /cart/remove/:productId
// ===================================

// RemoveItem handles DELETE /cart/remove/:productId
// @Router /cart/remove/{productId} [delete]
func (h *Handler) RemoveItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.ErrorWithCode(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid product ID", nil)
		return
	}

	cart, err := h.service.RemoveItem(c.Request.Context(), callerFrom(c), productID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Item removed from cart", cart)
}

// ===================================
// API 4: PUT /cart/update
// ===================================

// UpdateQuantity handles PUT /cart/update
// @Summary Set the absolute quantity of a line (0 removes it)
// @Router /cart/update [put]
func (h *Handler) UpdateQuantity(c *gin.Context) {
	var req model.UpdateQuantityRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	cart, err := h.service.UpdateQuantity(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Cart updated", cart)
}

// ===================================
// API 5: POST /cart/discount
// ===================================

// ApplyDiscount handles POST /cart/discount
// @Router /cart/discount [post]
func (h *Handler) ApplyDiscount(c *gin.Context) {
	var req model.ApplyDiscountRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	cart, err := h.service.ApplyDiscount(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Discount applied", cart)
}

// ===================================
// API 6: DELETE /cart/discount
// ===================================

// RemoveDiscount handles DELETE /cart/discount
// @Router /cart/discount [delete]
func (h *Handler) RemoveDiscount(c *gin.Context) {
	cart, err := h.service.RemoveDiscount(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Discount removed", cart)
}

// ===================================
// API 7: DELETE /cart
// ===================================

// ClearCart handles DELETE /cart
// @Router /cart [delete]
func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.service.ClearCart(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Cart cleared", cart)
}

// ===================================
// API 8: POST /cart/sync
// ===================================

// SyncCart handles POST /cart/sync
// @Summary Merge the guest cart into the logged-in user's cart
// @Description All-or-nothing: the first unknown product or stock shortfall
// @Description rejects the whole sync and leaves the account cart untouched.
// @Router /cart/sync [post]
func (h *Handler) SyncCart(c *gin.Context) {
	var req model.SyncCartRequest
	// An empty body means "use the guest cart stored for my session"
	if c.Request.ContentLength != 0 {
		if err := h.bindAndValidate(c, &req); err != nil {
			return
		}
	}

	cart, err := h.service.SyncGuestCart(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Cart synced", cart)
}

// ===================================
// HELPERS
// ===================================

func callerFrom(c *gin.Context) service.Caller {
	userID, _ := middleware.GetAuthenticatedUserID(c)
	return service.Caller{
		UserID:    userID,
		SessionID: middleware.GetSessionID(c),
	}
}

func (h *Handler) bindAndValidate(c *gin.Context, req validation.Validatable) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithCode(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid request body", err.Error())
		return err
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithCode(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Validation failed", err)
		return err
	}
	return nil
}

// handleError maps cart errors to status codes
func (h *Handler) handleError(c *gin.Context, err error) {
	var stockErr *model.StockError
	var notFoundErr *model.ProductNotFoundError

	switch {
	// 400 - stock shortfall carries the numbers
	case errors.As(err, &stockErr):
		response.ErrorWithCode(c, http.StatusBadRequest, model.ErrCodeInsufficientStock, err.Error(), stockErr)

	case errors.Is(err, model.ErrInvalidQuantity):
		response.ErrorWithCode(c, http.StatusBadRequest, model.ErrCodeInvalidQuantity, err.Error(), nil)

	case errors.Is(err, model.ErrInvalidDiscountCode):
		response.ErrorWithCode(c, http.StatusBadRequest, model.ErrCodeInvalidDiscountCode, err.Error(), nil)

	// 401
	case errors.Is(err, model.ErrNotAuthenticated):
		response.ErrorWithCode(c, http.StatusUnauthorized, model.ErrCodeNotAuthenticated, err.Error(), nil)

	// 404
	case errors.As(err, &notFoundErr):
		response.ErrorWithCode(c, http.StatusNotFound, model.ErrCodeProductNotFound, err.Error(), notFoundErr)

	case errors.Is(err, model.ErrProductNotFound):
		response.ErrorWithCode(c, http.StatusNotFound, model.ErrCodeProductNotFound, err.Error(), nil)

	case errors.Is(err, model.ErrItemNotFound):
		response.ErrorWithCode(c, http.StatusNotFound, model.ErrCodeItemNotFound, err.Error(), nil)

	case errors.Is(err, model.ErrCartNotFound):
		response.ErrorWithCode(c, http.StatusNotFound, model.ErrCodeCartNotFound, err.Error(), nil)

	// 409 - lost every retry against concurrent writers
	case errors.Is(err, model.ErrConcurrentModification):
		response.ErrorWithCode(c, http.StatusConflict, model.ErrCodeConcurrentModification, "Cart was modified concurrently, please retry", nil)

	// 500
	case errors.Is(err, model.ErrStorageUnavailable):
		logger.Error("cart storage unavailable", err)
		response.ErrorWithCode(c, http.StatusInternalServerError, model.ErrCodeStorageUnavailable, "Cart storage unavailable", nil)

	default:
		logger.Error("unexpected cart error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
