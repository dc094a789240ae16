package service

import (
	"context"

	"storefront-backend/internal/domains/cart/engine"
	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/pkg/logger"

	"github.com/google/uuid"
)

// SyncGuestCart implements ServiceInterface.SyncGuestCart
func (s *CartService) SyncGuestCart(ctx context.Context, caller Caller, req model.SyncCartRequest) (*model.CartResponse, error) {
	if caller.IsGuest() {
		syncTotal.WithLabelValues("unauthenticated").Inc()
		return nil, model.ErrNotAuthenticated
	}

	// Step 1: Pick the guest cart. Items in the body win; otherwise the
	// session's stored cart is claimed so a concurrent sync cannot merge it
	// a second time.
	source := &model.GuestCart{Items: req.Items}
	fromSession := len(req.Items) == 0
	if fromSession && caller.SessionID != "" {
		claimed, err := s.guests.Claim(ctx, caller.SessionID)
		if err != nil {
			syncTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		source = claimed
	}

	if len(source.Items) == 0 {
		syncTotal.WithLabelValues("noop").Inc()
		resp, err := s.GetCart(ctx, caller)
		if err != nil {
			return nil, err
		}
		resp.GuestCartCleared = true
		return resp, nil
	}

	// Step 2: Merge in memory and persist once. Any failure leaves the
	// account cart untouched.
	resp, err := s.mutateAccount(ctx, *caller.UserID, false, model.ProductIDsOf(source.Items),
		func(cart *model.Cart, products map[uuid.UUID]model.ProductSnapshot) error {
			merged, err := engine.Merge(cart.Items, source.Items, products)
			if err != nil {
				return err
			}
			cart.Items = merged
			carryDiscount(cart, source)
			return nil
		})
	if err != nil {
		syncTotal.WithLabelValues("rejected").Inc()
		if fromSession {
			s.restoreGuestCart(ctx, source)
		}
		return nil, err
	}

	// Step 3: The body carried the guest cart, drop the session copy too
	if !fromSession && caller.SessionID != "" {
		if err := s.guests.Clear(ctx, caller.SessionID); err != nil {
			logger.Error("failed to clear guest cart after sync", err)
		}
	}

	syncTotal.WithLabelValues("merged").Inc()
	logger.Info("guest cart synced", map[string]interface{}{
		"owner_id":     caller.UserID.String(),
		"lines":        len(source.Items),
		"from_session": fromSession,
	})

	resp.GuestCartCleared = true
	return resp, nil
}

// carryDiscount moves a guest discount onto an account cart that has none
func carryDiscount(cart *model.Cart, guest *model.GuestCart) {
	if cart.HasDiscount() || guest.DiscountCode == nil {
		return
	}
	amount, err := engine.ApplyDiscount(*guest.DiscountCode)
	if err != nil {
		return
	}
	code := *guest.DiscountCode
	cart.DiscountCode = &code
	cart.DiscountAmount = amount
}

// restoreGuestCart puts a claimed guest cart back after a failed sync,
// adding to anything the session stored in the meantime.
func (s *CartService) restoreGuestCart(ctx context.Context, claimed *model.GuestCart) {
	_, err := s.guests.Update(ctx, claimed.SessionID, func(cart *model.GuestCart) error {
		cart.Items = model.CombineLines(cart.Items, claimed.Items)
		if cart.DiscountCode == nil && claimed.DiscountCode != nil {
			cart.DiscountCode = claimed.DiscountCode
			cart.DiscountAmount = claimed.DiscountAmount
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to restore guest cart after rejected sync", err)
	}
}
