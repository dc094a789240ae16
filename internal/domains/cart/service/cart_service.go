package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-backend/internal/domains/cart/engine"
	"storefront-backend/internal/domains/cart/model"
	repo "storefront-backend/internal/domains/cart/repository"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// Options tunes the optimistic concurrency loop
type Options struct {
	MaxMutationAttempts int
	RetryBackoff        time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxMutationAttempts < 1 {
		o.MaxMutationAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 10 * time.Millisecond
	}
	return o
}

type CartService struct {
	repository repo.RepositoryInterface
	guests     repo.GuestRepositoryInterface
	catalog    ProductCatalog
	opts       Options
}

func NewCartService(
	r repo.RepositoryInterface,
	guests repo.GuestRepositoryInterface,
	catalog ProductCatalog,
	opts Options,
) ServiceInterface {
	return &CartService{
		repository: r,
		guests:     guests,
		catalog:    catalog,
		opts:       opts.withDefaults(),
	}
}

// =====================================================
// READ
// =====================================================

func (s *CartService) GetCart(ctx context.Context, caller Caller) (*model.CartResponse, error) {
	if caller.IsGuest() {
		cart, err := s.loadGuestCart(ctx, caller.SessionID)
		if err != nil {
			return nil, err
		}
		products, err := s.snapshots(ctx, model.ProductIDsOf(cart.Items))
		if err != nil {
			return nil, err
		}
		return guestView(cart, products), nil
	}

	cart, err := s.repository.FindByOwner(ctx, *caller.UserID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		// No cart yet: show an empty one without creating a row
		cart = model.NewCart(*caller.UserID)
	}

	products, err := s.snapshots(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	return cartView(cart, products), nil
}

// =====================================================
// MUTATIONS
// =====================================================

func (s *CartService) AddItem(ctx context.Context, caller Caller, req model.AddItemRequest) (*model.CartResponse, error) {
	apply := func(items []model.LineItem, products map[uuid.UUID]model.ProductSnapshot) ([]model.LineItem, error) {
		p, ok := products[req.ProductID]
		if !ok {
			return nil, &model.ProductNotFoundError{ProductID: req.ProductID}
		}
		return engine.AddItem(items, p, req.Quantity)
	}

	if caller.IsGuest() {
		return s.mutateGuest(ctx, caller.SessionID, []uuid.UUID{req.ProductID}, func(cart *model.GuestCart, products map[uuid.UUID]model.ProductSnapshot) error {
			items, err := apply(cart.Items, products)
			if err != nil {
				return err
			}
			cart.Items = items
			return nil
		})
	}
	return s.mutateAccount(ctx, *caller.UserID, false, []uuid.UUID{req.ProductID}, func(cart *model.Cart, products map[uuid.UUID]model.ProductSnapshot) error {
		items, err := apply(cart.Items, products)
		if err != nil {
			return err
		}
		cart.Items = items
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, caller Caller, productID uuid.UUID) (*model.CartResponse, error) {
	if caller.IsGuest() {
		return s.mutateGuest(ctx, caller.SessionID, nil, func(cart *model.GuestCart, _ map[uuid.UUID]model.ProductSnapshot) error {
			cart.Items = engine.RemoveItem(cart.Items, productID)
			return nil
		})
	}
	return s.mutateAccount(ctx, *caller.UserID, true, nil, func(cart *model.Cart, _ map[uuid.UUID]model.ProductSnapshot) error {
		cart.Items = engine.RemoveItem(cart.Items, productID)
		return nil
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, caller Caller, req model.UpdateQuantityRequest) (*model.CartResponse, error) {
	quantity := req.QuantityValue()
	apply := func(items []model.LineItem, products map[uuid.UUID]model.ProductSnapshot) ([]model.LineItem, error) {
		p, ok := products[req.ProductID]
		if !ok {
			return nil, &model.ProductNotFoundError{ProductID: req.ProductID}
		}
		return engine.UpdateQuantity(items, p, quantity)
	}

	if caller.IsGuest() {
		return s.mutateGuest(ctx, caller.SessionID, []uuid.UUID{req.ProductID}, func(cart *model.GuestCart, products map[uuid.UUID]model.ProductSnapshot) error {
			items, err := apply(cart.Items, products)
			if err != nil {
				return err
			}
			cart.Items = items
			return nil
		})
	}
	return s.mutateAccount(ctx, *caller.UserID, true, []uuid.UUID{req.ProductID}, func(cart *model.Cart, products map[uuid.UUID]model.ProductSnapshot) error {
		items, err := apply(cart.Items, products)
		if err != nil {
			return err
		}
		cart.Items = items
		return nil
	})
}

func (s *CartService) ApplyDiscount(ctx context.Context, caller Caller, req model.ApplyDiscountRequest) (*model.CartResponse, error) {
	// Reject a bad code before touching storage
	amount, err := engine.ApplyDiscount(req.DiscountCode)
	if err != nil {
		return nil, err
	}
	code := req.DiscountCode

	if caller.IsGuest() {
		return s.mutateGuest(ctx, caller.SessionID, nil, func(cart *model.GuestCart, _ map[uuid.UUID]model.ProductSnapshot) error {
			cart.DiscountCode = &code
			cart.DiscountAmount = amount
			return nil
		})
	}
	return s.mutateAccount(ctx, *caller.UserID, true, nil, func(cart *model.Cart, _ map[uuid.UUID]model.ProductSnapshot) error {
		cart.DiscountCode = &code
		cart.DiscountAmount = amount
		return nil
	})
}

func (s *CartService) RemoveDiscount(ctx context.Context, caller Caller) (*model.CartResponse, error) {
	if caller.IsGuest() {
		return s.mutateGuest(ctx, caller.SessionID, nil, func(cart *model.GuestCart, _ map[uuid.UUID]model.ProductSnapshot) error {
			cart.ClearDiscount()
			return nil
		})
	}
	return s.mutateAccount(ctx, *caller.UserID, true, nil, func(cart *model.Cart, _ map[uuid.UUID]model.ProductSnapshot) error {
		cart.DiscountCode = nil
		cart.DiscountAmount = decimal.Zero
		return nil
	})
}

func (s *CartService) ClearCart(ctx context.Context, caller Caller) (*model.CartResponse, error) {
	if caller.IsGuest() {
		if caller.SessionID != "" {
			if err := s.guests.Clear(ctx, caller.SessionID); err != nil {
				return nil, err
			}
		}
		return guestView(model.NewGuestCart(caller.SessionID), nil), nil
	}

	resp, err := s.mutateAccount(ctx, *caller.UserID, true, nil, func(cart *model.Cart, _ map[uuid.UUID]model.ProductSnapshot) error {
		cart.Items = []model.LineItem{}
		cart.DiscountCode = nil
		cart.DiscountAmount = decimal.Zero
		return nil
	})
	if errors.Is(err, model.ErrCartNotFound) {
		// Nothing stored, already clear
		return cartView(model.NewCart(*caller.UserID), nil), nil
	}
	return resp, err
}

// =====================================================
// HELPERS
// =====================================================

type accountMutation func(cart *model.Cart, products map[uuid.UUID]model.ProductSnapshot) error

// mutateAccount runs one load → apply → save attempt and re-runs it when the
// save loses the version race. Domain errors from fn end the loop at once.
func (s *CartService) mutateAccount(
	ctx context.Context,
	ownerID uuid.UUID,
	mustExist bool,
	extraIDs []uuid.UUID,
	fn accountMutation,
) (*model.CartResponse, error) {
	var (
		saved    *model.Cart
		products map[uuid.UUID]model.ProductSnapshot
	)

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(s.opts.MaxMutationAttempts-1), retry.NewConstant(s.opts.RetryBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		// Step 1: Load current state
		cart, err := s.loadAccountCart(ctx, ownerID, mustExist)
		if err != nil {
			return err
		}

		// Step 2: Re-read price and stock for everything involved
		products, err = s.snapshots(ctx, append(cart.ProductIDs(), extraIDs...))
		if err != nil {
			return err
		}
		cart.Items = engine.Prune(cart.Items, products)

		// Step 3: Apply
		if err := fn(cart, products); err != nil {
			return err
		}

		// Step 4: Save with version check
		if err := s.repository.Save(ctx, cart, model.PriceBookFrom(products)); err != nil {
			if errors.Is(err, model.ErrConcurrentModification) {
				conflictRetries.Inc()
				return retry.RetryableError(err)
			}
			return err
		}

		saved = cart
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrConcurrentModification) {
			conflictExhausted.Inc()
			return nil, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}
		return nil, err
	}

	return cartView(saved, products), nil
}

func (s *CartService) loadAccountCart(ctx context.Context, ownerID uuid.UUID, mustExist bool) (*model.Cart, error) {
	if !mustExist {
		return s.repository.LoadOrCreate(ctx, ownerID)
	}

	cart, err := s.repository.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}
	return cart, nil
}

type guestMutation func(cart *model.GuestCart, products map[uuid.UUID]model.ProductSnapshot) error

// mutateGuest applies fn to the session's guest cart inside the store's
// atomic update.
func (s *CartService) mutateGuest(
	ctx context.Context,
	sessionID string,
	extraIDs []uuid.UUID,
	fn guestMutation,
) (*model.CartResponse, error) {
	if sessionID == "" {
		return nil, model.ErrNotAuthenticated
	}

	var products map[uuid.UUID]model.ProductSnapshot
	cart, err := s.guests.Update(ctx, sessionID, func(cart *model.GuestCart) error {
		var err error
		products, err = s.snapshots(ctx, append(model.ProductIDsOf(cart.Items), extraIDs...))
		if err != nil {
			return err
		}
		cart.Items = engine.Prune(cart.Items, products)
		return fn(cart, products)
	})
	if err != nil {
		return nil, err
	}

	return guestView(cart, products), nil
}

func (s *CartService) loadGuestCart(ctx context.Context, sessionID string) (*model.GuestCart, error) {
	if sessionID == "" {
		return model.NewGuestCart(sessionID), nil
	}
	return s.guests.Load(ctx, sessionID)
}

func (s *CartService) snapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.ProductSnapshot, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]model.ProductSnapshot{}, nil
	}

	products, err := s.catalog.GetSnapshots(ctx, ids)
	if err != nil {
		if errors.Is(err, model.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to load products: %w", model.ErrStorageUnavailable, err)
	}
	return products, nil
}

func guestView(cart *model.GuestCart, products map[uuid.UUID]model.ProductSnapshot) *model.CartResponse {
	return buildView(nil, cart.Items, cart.DiscountCode, cart.DiscountAmount, products)
}

func cartView(cart *model.Cart, products map[uuid.UUID]model.ProductSnapshot) *model.CartResponse {
	ownerID := cart.OwnerID
	return buildView(&ownerID, cart.Items, cart.DiscountCode, cart.DiscountAmount, products)
}

// buildView joins items with current product data and recomputes totals.
// Lines whose product no longer exists are left out.
func buildView(
	ownerID *uuid.UUID,
	items []model.LineItem,
	discountCode *string,
	discountAmount decimal.Decimal,
	products map[uuid.UUID]model.ProductSnapshot,
) *model.CartResponse {
	items = engine.Prune(items, products)
	totals := engine.ComputeTotals(items, model.PriceBookFrom(products), discountAmount)

	lines := make([]model.CartItemResponse, 0, len(items))
	for _, item := range items {
		lines = append(lines, model.NewCartItemResponse(item, products[item.ProductID]))
	}

	return &model.CartResponse{
		OwnerID:        ownerID,
		IsGuest:        ownerID == nil,
		Items:          lines,
		ItemsCount:     model.ItemCount(items),
		SubTotal:       totals.SubTotal,
		Tax:            totals.Tax,
		DiscountCode:   discountCode,
		DiscountAmount: totals.DiscountAmount,
		Total:          totals.Total,
	}
}
