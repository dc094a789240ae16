package service

import (
	"context"
	"testing"

	"storefront-backend/internal/domains/cart/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncGuestCart_RequiresLogin(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SyncGuestCart(context.Background(), f.guest, model.SyncCartRequest{
		Items: []model.LineItem{{ProductID: mouseID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
}

func TestSyncGuestCart_MergesRequestItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 2})
	require.NoError(t, err)
	f.guests.seedGuest(f.user.SessionID, model.LineItem{ProductID: mouseID, Quantity: 5})

	resp, err := f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{Items: []model.LineItem{
		{ProductID: keyboardID, Quantity: 1},
		{ProductID: mouseID, Quantity: 3},
	}})
	require.NoError(t, err)

	assert.True(t, resp.GuestCartCleared)
	assert.Equal(t, 3, model.QuantityOf(itemsOf(resp), keyboardID))
	assert.Equal(t, 3, model.QuantityOf(itemsOf(resp), mouseID), "the session copy is not merged on top of the body")
	money(t, "42.00", resp.SubTotal)

	left, _ := f.guests.Load(ctx, f.user.SessionID)
	assert.True(t, left.IsEmpty())
}

func TestSyncGuestCart_UsesSessionCartAndClearsIt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.guests.seedGuest(f.user.SessionID, model.LineItem{ProductID: mouseID, Quantity: 2})

	resp, err := f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, model.QuantityOf(itemsOf(resp), mouseID))

	left, _ := f.guests.Load(ctx, f.user.SessionID)
	assert.True(t, left.IsEmpty())
}

func TestSyncGuestCart_ConcurrentSessionSyncMergesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.guests.seedGuest(f.user.SessionID, model.LineItem{ProductID: mouseID, Quantity: 2})

	// A second sync of the same session lands while the first is saving
	nested := false
	f.repo.beforeSave = func(_ *fakeRepository, _ *model.Cart) {
		if nested {
			return
		}
		nested = true
		_, err := f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{})
		require.NoError(t, err)
	}

	resp, err := f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, model.QuantityOf(itemsOf(resp), mouseID))

	stored, _ := f.repo.FindByOwner(ctx, *f.user.UserID)
	require.NotNil(t, stored)
	assert.Equal(t, 2, model.QuantityOf(stored.Items, mouseID))
}

func TestSyncGuestCart_RetryAfterLostRaceMergesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 1})
	require.NoError(t, err)
	f.guests.seedGuest(f.user.SessionID, model.LineItem{ProductID: mouseID, Quantity: 2})

	// Another request writes the account cart once, before the first save
	raced := false
	f.repo.beforeSave = func(r *fakeRepository, cart *model.Cart) {
		if raced {
			return
		}
		raced = true
		r.carts[cart.OwnerID].Version++
	}

	resp, err := f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, model.QuantityOf(itemsOf(resp), mouseID))
	assert.Equal(t, 1, model.QuantityOf(itemsOf(resp), keyboardID))
}

func TestSyncGuestCart_CarriesGuestDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session := Caller{SessionID: f.user.SessionID}
	_, err := f.svc.AddItem(ctx, session, model.AddItemRequest{ProductID: keyboardID, Quantity: 3})
	require.NoError(t, err)
	_, err = f.svc.ApplyDiscount(ctx, session, model.ApplyDiscountRequest{DiscountCode: model.DiscountCode20Off})
	require.NoError(t, err)

	resp, err := f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{})
	require.NoError(t, err)

	require.NotNil(t, resp.DiscountCode)
	assert.Equal(t, model.DiscountCode20Off, *resp.DiscountCode)
	money(t, "13.00", resp.Total)
}

func TestSyncGuestCart_IsAllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 4})
	require.NoError(t, err)

	_, err = f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{Items: []model.LineItem{
		{ProductID: mouseID, Quantity: 1},
		{ProductID: keyboardID, Quantity: 2},
	}})
	require.Error(t, err)
	assert.Equal(t, "Not enough stock available for product Keyboard. Available stock: 5, requested: 6", err.Error())

	stored, _ := f.repo.FindByOwner(ctx, *f.user.UserID)
	assert.Equal(t, []model.LineItem{{ProductID: keyboardID, Quantity: 4}}, stored.Items)
	assert.Equal(t, int64(1), stored.Version)
}

func TestSyncGuestCart_RejectedSessionCartIsRestored(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user, model.AddItemRequest{ProductID: keyboardID, Quantity: 4})
	require.NoError(t, err)
	f.guests.seedGuest(f.user.SessionID,
		model.LineItem{ProductID: mouseID, Quantity: 1},
		model.LineItem{ProductID: keyboardID, Quantity: 2},
	)

	_, err = f.svc.SyncGuestCart(ctx, f.user, model.SyncCartRequest{})
	require.ErrorIs(t, err, model.ErrInsufficientStock)

	left, _ := f.guests.Load(ctx, f.user.SessionID)
	assert.Equal(t, 1, model.QuantityOf(left.Items, mouseID))
	assert.Equal(t, 2, model.QuantityOf(left.Items, keyboardID))
}

func TestSyncGuestCart_UnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SyncGuestCart(context.Background(), f.user, model.SyncCartRequest{Items: []model.LineItem{
		{ProductID: missingID, Quantity: 1},
	}})
	require.ErrorIs(t, err, model.ErrProductNotFound)
	assert.Equal(t, "Product not found for ID: 33333333-3333-3333-3333-333333333333", err.Error())
	assert.Equal(t, 0, f.repo.saves)
}

func TestSyncGuestCart_NothingToMerge(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.SyncGuestCart(context.Background(), f.user, model.SyncCartRequest{})
	require.NoError(t, err)
	assert.True(t, resp.GuestCartCleared)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, f.repo.saves)
}
