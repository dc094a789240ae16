package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-backend/internal/domains/cart/engine"
	"storefront-backend/internal/domains/cart/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- fakes ----------

type fakeRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*model.Cart
	saves int
	err   error

	// beforeSave runs inside Save before the version check; used to
	// simulate a concurrent writer.
	beforeSave func(r *fakeRepository, cart *model.Cart)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{carts: map[uuid.UUID]*model.Cart{}}
}

func (r *fakeRepository) FindByOwner(_ context.Context, ownerID uuid.UUID) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	cart, ok := r.carts[ownerID]
	if !ok {
		return nil, nil
	}
	return cart.Clone(), nil
}

func (r *fakeRepository) LoadOrCreate(ctx context.Context, ownerID uuid.UUID) (*model.Cart, error) {
	cart, err := r.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return model.NewCart(ownerID), nil
	}
	return cart, nil
}

func (r *fakeRepository) Save(_ context.Context, cart *model.Cart, prices model.PriceBook) error {
	if r.beforeSave != nil {
		r.beforeSave(r, cart)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.carts[cart.OwnerID]
	switch {
	case cart.IsNew() && exists:
		return model.ErrConcurrentModification
	case !cart.IsNew() && (!exists || stored.Version != cart.Version):
		return model.ErrConcurrentModification
	}

	cart.Totals = engine.ComputeTotals(cart.Items, prices, cart.DiscountAmount)
	cart.Version++
	r.carts[cart.OwnerID] = cart.Clone()
	r.saves++
	return nil
}

// put stores cart as if it had been saved version times
func (r *fakeRepository) put(cart *model.Cart, version int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := cart.Clone()
	cp.Version = version
	r.carts[cart.OwnerID] = cp
}

type fakeGuestRepository struct {
	mu    sync.Mutex
	carts map[string]model.GuestCart
}

func newFakeGuestRepository() *fakeGuestRepository {
	return &fakeGuestRepository{carts: map[string]model.GuestCart{}}
}

func copyGuestCart(cart model.GuestCart) *model.GuestCart {
	cp := cart
	cp.Items = append([]model.LineItem{}, cart.Items...)
	return &cp
}

func (r *fakeGuestRepository) Load(_ context.Context, sessionID string) (*model.GuestCart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[sessionID]
	if !ok {
		return model.NewGuestCart(sessionID), nil
	}
	return copyGuestCart(cart), nil
}

func (r *fakeGuestRepository) Save(_ context.Context, cart *model.GuestCart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.SessionID] = *copyGuestCart(*cart)
	return nil
}

func (r *fakeGuestRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

func (r *fakeGuestRepository) Claim(_ context.Context, sessionID string) (*model.GuestCart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[sessionID]
	if !ok {
		return model.NewGuestCart(sessionID), nil
	}
	delete(r.carts, sessionID)
	return copyGuestCart(cart), nil
}

func (r *fakeGuestRepository) Update(ctx context.Context, sessionID string, fn func(*model.GuestCart) error) (*model.GuestCart, error) {
	cart, _ := r.Load(ctx, sessionID)
	if err := fn(cart); err != nil {
		return nil, err
	}
	return cart, r.Save(ctx, cart)
}

// seedGuest stores items as the session's guest cart
func (r *fakeGuestRepository) seedGuest(sessionID string, items ...model.LineItem) {
	cart := model.NewGuestCart(sessionID)
	cart.Items = append(cart.Items, items...)
	_ = r.Save(context.Background(), cart)
}

type fakeCatalog struct {
	products map[uuid.UUID]model.ProductSnapshot
	err      error
}

func (c *fakeCatalog) GetSnapshots(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.ProductSnapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[uuid.UUID]model.ProductSnapshot, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// ---------- fixtures ----------

var (
	keyboardID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	mouseID    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	missingID  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

type fixture struct {
	svc     ServiceInterface
	repo    *fakeRepository
	guests  *fakeGuestRepository
	catalog *fakeCatalog
	user    Caller
	guest   Caller
}

func newFixture() *fixture {
	userID := uuid.New()
	f := &fixture{
		repo:   newFakeRepository(),
		guests: newFakeGuestRepository(),
		catalog: &fakeCatalog{products: map[uuid.UUID]model.ProductSnapshot{
			keyboardID: {ID: keyboardID, Name: "Keyboard", Price: decimal.RequireFromString("10.00"), Stock: 5},
			mouseID:    {ID: mouseID, Name: "Mouse", Price: decimal.RequireFromString("4.00"), Stock: 10},
		}},
		user:  Caller{UserID: &userID, SessionID: "sess-user"},
		guest: Caller{SessionID: "sess-guest"},
	}
	f.svc = NewCartService(f.repo, f.guests, f.catalog, Options{MaxMutationAttempts: 3, RetryBackoff: time.Millisecond})
	return f
}

func qty(n int) *int { return &n }

func money(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// ---------- tests ----------

func TestGetCart_NoCartReturnsEmptyWithoutCreating(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.GetCart(context.Background(), f.user)
	require.NoError(t, err)

	assert.Empty(t, resp.Items)
	assert.False(t, resp.IsGuest)
	money(t, "0", resp.Total)
	assert.Equal(t, 0, f.repo.saves)
}

func TestAddItem_Account(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Keyboard", resp.Items[0].Name)
	money(t, "20.00", resp.SubTotal)
	money(t, "2.00", resp.Tax)
	money(t, "22.00", resp.Total)

	stored, _ := f.repo.FindByOwner(ctx, *f.user.UserID)
	require.NotNil(t, stored)
	assert.Equal(t, int64(1), stored.Version)
}

func TestAddItem_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: missingID, Quantity: 1})
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	_, err = f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 6})
	assert.ErrorIs(t, err, model.ErrInsufficientStock)

	assert.Equal(t, 0, f.repo.saves)
}

func TestGuestAndAccountTotalsMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, caller := range []Caller{f.user, f.guest} {
		_, err := f.svc.AddItem(ctx, caller, model.AddItemRequest{ProductID: keyboardID, Quantity: 3})
		require.NoError(t, err)
		_, err = f.svc.AddItem(ctx, caller, model.AddItemRequest{ProductID: mouseID, Quantity: 2})
		require.NoError(t, err)
	}

	account, err := f.svc.GetCart(ctx, f.user)
	require.NoError(t, err)
	guest, err := f.svc.GetCart(ctx, f.guest)
	require.NoError(t, err)

	assert.True(t, guest.IsGuest)
	assert.Equal(t, account.SubTotal.String(), guest.SubTotal.String())
	assert.Equal(t, account.Tax.String(), guest.Tax.String())
	assert.Equal(t, account.Total.String(), guest.Total.String())
}

func TestUpdateQuantity_Account(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.UpdateQuantity(ctx, f.user, model.UpdateQuantityRequest{ProductID: keyboardID, Quantity: qty(1)})
	assert.ErrorIs(t, err, model.ErrCartNotFound)

	_, err = f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 2})
	require.NoError(t, err)

	resp, err := f.svc.UpdateQuantity(ctx, f.user, model.UpdateQuantityRequest{ProductID: keyboardID, Quantity: qty(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Items[0].Quantity)

	_, err = f.svc.UpdateQuantity(ctx, f.user, model.UpdateQuantityRequest{ProductID: mouseID, Quantity: qty(1)})
	assert.ErrorIs(t, err, model.ErrItemNotFound)

	resp, err = f.svc.UpdateQuantity(ctx, f.user, model.UpdateQuantityRequest{ProductID: keyboardID, Quantity: qty(0)})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.RemoveItem(ctx, f.user, keyboardID)
	assert.ErrorIs(t, err, model.ErrCartNotFound)

	_, err = f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 2})
	require.NoError(t, err)

	resp, err := f.svc.RemoveItem(ctx, f.user, keyboardID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	// guest removal of an absent product is a no-op
	resp, err = f.svc.RemoveItem(ctx, f.guest, keyboardID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ApplyDiscount(ctx, f.user, model.ApplyDiscountRequest{DiscountCode: "20 DOLLAR OFF"})
	assert.ErrorIs(t, err, model.ErrCartNotFound)

	_, err = f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 3})
	require.NoError(t, err)

	_, err = f.svc.ApplyDiscount(ctx, f.user, model.ApplyDiscountRequest{DiscountCode: "BOGUS"})
	assert.ErrorIs(t, err, model.ErrInvalidDiscountCode)

	resp, err := f.svc.ApplyDiscount(ctx, f.user, model.ApplyDiscountRequest{DiscountCode: "20 DOLLAR OFF"})
	require.NoError(t, err)
	require.NotNil(t, resp.DiscountCode)
	money(t, "20.00", resp.DiscountAmount)
	money(t, "13.00", resp.Total) // 30 + 3 - 20

	resp, err = f.svc.RemoveDiscount(ctx, f.user)
	require.NoError(t, err)
	assert.Nil(t, resp.DiscountCode)
	money(t, "33.00", resp.Total)
}

func TestDiscount_GuestMatchesAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ApplyDiscount(ctx, f.guest, model.ApplyDiscountRequest{DiscountCode: "BOGUS"})
	assert.ErrorIs(t, err, model.ErrInvalidDiscountCode)

	var views []*model.CartResponse
	for _, caller := range []Caller{f.user, f.guest} {
		_, err := f.svc.AddItem(ctx, caller, model.AddItemRequest{ProductID: keyboardID, Quantity: 3})
		require.NoError(t, err)
		resp, err := f.svc.ApplyDiscount(ctx, caller, model.ApplyDiscountRequest{DiscountCode: "20 DOLLAR OFF"})
		require.NoError(t, err)
		views = append(views, resp)
	}

	account, guest := views[0], views[1]
	require.NotNil(t, guest.DiscountCode)
	assert.Equal(t, account.DiscountAmount.String(), guest.DiscountAmount.String())
	assert.Equal(t, account.Total.String(), guest.Total.String())
	money(t, "13.00", guest.Total)

	// the discount is stored with the guest cart
	again, err := f.svc.GetCart(ctx, f.guest)
	require.NoError(t, err)
	money(t, "13.00", again.Total)

	resp, err := f.svc.RemoveDiscount(ctx, f.guest)
	require.NoError(t, err)
	assert.Nil(t, resp.DiscountCode)
	money(t, "33.00", resp.Total)
}

func TestDiscount_GuestWithoutSession(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ApplyDiscount(context.Background(), Caller{}, model.ApplyDiscountRequest{DiscountCode: "20 DOLLAR OFF"})
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
}

func TestClearCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// clearing a cart that was never stored is fine
	resp, err := f.svc.ClearCart(ctx, f.user)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	_, err = f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.ApplyDiscount(ctx, f.user, model.ApplyDiscountRequest{DiscountCode: "20 DOLLAR OFF"})
	require.NoError(t, err)

	resp, err = f.svc.ClearCart(ctx, f.user)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Nil(t, resp.DiscountCode)

	stored, _ := f.repo.FindByOwner(ctx, *f.user.UserID)
	require.NotNil(t, stored)
	assert.Equal(t, int64(3), stored.Version, "clear keeps the row and bumps the version")

	_, err = f.svc.AddItem(ctx, f.guest, model.AddItemRequest{ProductID: mouseID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.ClearCart(ctx, f.guest)
	require.NoError(t, err)
	left, _ := f.guests.Load(ctx, f.guest.SessionID)
	assert.True(t, left.IsEmpty())
}

func TestMutation_RetriesAfterLostRace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: mouseID, Quantity: 1})
	require.NoError(t, err)

	// A concurrent writer bumps the version once, right before our first save
	raced := false
	f.repo.beforeSave = func(r *fakeRepository, cart *model.Cart) {
		if raced {
			return
		}
		raced = true
		stored := r.carts[cart.OwnerID]
		stored.Items = append(stored.Items, model.LineItem{ProductID: keyboardID, Quantity: 1})
		stored.Version++
	}

	resp, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: mouseID, Quantity: 2})
	require.NoError(t, err)

	// both writes survive
	assert.Equal(t, 3, model.QuantityOf(itemsOf(resp), mouseID))
	assert.Equal(t, 1, model.QuantityOf(itemsOf(resp), keyboardID))
}

func TestMutation_ExhaustedRetriesReportConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: mouseID, Quantity: 1})
	require.NoError(t, err)

	attempts := 0
	f.repo.beforeSave = func(r *fakeRepository, cart *model.Cart) {
		attempts++
		r.carts[cart.OwnerID].Version++
	}

	_, err = f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: mouseID, Quantity: 1})
	assert.ErrorIs(t, err, model.ErrConcurrentModification)
	assert.Equal(t, 3, attempts)
}

func TestStorageErrorsAreNotRetried(t *testing.T) {
	f := newFixture()
	f.catalog.err = errors.New("connection refused")

	_, err := f.svc.AddItem(context.Background(), f.user, model.AddItemRequest{ProductID: mouseID, Quantity: 1})
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}

func TestDeletedProductsArePruned(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: mouseID, Quantity: 1})
	require.NoError(t, err)

	delete(f.catalog.products, keyboardID)

	resp, err := f.svc.GetCart(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	money(t, "4.00", resp.SubTotal)
}

func itemsOf(resp *model.CartResponse) []model.LineItem {
	items := make([]model.LineItem, 0, len(resp.Items))
	for _, line := range resp.Items {
		items = append(items, model.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items
}
