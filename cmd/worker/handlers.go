package main

import (
	"github.com/hibiken/asynq"

	cartJob "storefront-backend/internal/domains/cart/job"
	emailJob "storefront-backend/internal/infrastructure/email/job"
	"storefront-backend/internal/shared"
	"storefront-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	clearCart  *cartJob.ClearCartHandler
	resetEmail *emailJob.ResetPasswordEmailHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		clearCart:  cartJob.NewClearCartHandler(c.CartService),
		resetEmail: emailJob.NewResetPasswordEmailHandler(c.Email),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Cart
	mux.HandleFunc(shared.TypeClearCart, h.clearCart.ProcessTask)

	// Email
	mux.HandleFunc(shared.TypeSendPasswordReset, h.resetEmail.ProcessTask)
}
