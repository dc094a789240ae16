// Package engine holds the cart arithmetic and stock rules. Every function
// is pure: inputs are never mutated and no I/O happens here, so the account
// cart and the guest cart produce identical numbers for identical input.
package engine

import (
	"slices"

	"storefront-backend/internal/domains/cart/model"

	"github.com/google/uuid"
)

// AddItem adds quantity of product p to items. If the product is already in
// the cart its quantity is incremented, otherwise a new line is appended.
// The combined quantity may not exceed the product's stock.
func AddItem(items []model.LineItem, p model.ProductSnapshot, quantity int) ([]model.LineItem, error) {
	if quantity < 1 {
		return items, model.ErrInvalidQuantity
	}

	existing := model.QuantityOf(items, p.ID)
	requested := existing + quantity
	if p.Stock < requested {
		return items, model.NewStockError(p, requested)
	}

	out := slices.Clone(items)
	if idx := indexOf(out, p.ID); idx >= 0 {
		out[idx].Quantity = requested
		return out, nil
	}

	return append(out, model.LineItem{ProductID: p.ID, Quantity: quantity}), nil
}

// RemoveItem drops the line for productID. Removing an absent product is a no-op.
func RemoveItem(items []model.LineItem, productID uuid.UUID) []model.LineItem {
	return slices.DeleteFunc(slices.Clone(items), func(item model.LineItem) bool {
		return item.ProductID == productID
	})
}

// UpdateQuantity sets the absolute quantity of an existing line.
// A quantity of 0 removes the line.
func UpdateQuantity(items []model.LineItem, p model.ProductSnapshot, newQuantity int) ([]model.LineItem, error) {
	if newQuantity < 0 {
		return items, model.ErrInvalidQuantity
	}

	if p.Stock < newQuantity {
		return items, model.NewStockError(p, newQuantity)
	}

	idx := indexOf(items, p.ID)
	if idx < 0 {
		return items, model.ErrItemNotFound
	}

	if newQuantity == 0 {
		return RemoveItem(items, p.ID), nil
	}

	out := slices.Clone(items)
	out[idx].Quantity = newQuantity
	return out, nil
}

// Merge folds guest items into the account items in the order given.
// products must hold a snapshot for every guest product that exists;
// the first unresolved product or stock shortfall aborts the whole merge.
func Merge(accountItems, guestItems []model.LineItem, products map[uuid.UUID]model.ProductSnapshot) ([]model.LineItem, error) {
	out := slices.Clone(accountItems)

	for _, guest := range guestItems {
		if guest.Quantity < 1 {
			return accountItems, model.ErrInvalidQuantity
		}

		p, ok := products[guest.ProductID]
		if !ok {
			return accountItems, &model.ProductNotFoundError{ProductID: guest.ProductID}
		}

		requested := guest.Quantity + model.QuantityOf(out, guest.ProductID)
		if p.Stock < requested {
			return accountItems, model.NewStockError(p, requested)
		}

		if idx := indexOf(out, guest.ProductID); idx >= 0 {
			out[idx].Quantity = requested
		} else {
			out = append(out, model.LineItem{ProductID: guest.ProductID, Quantity: guest.Quantity})
		}
	}

	return out, nil
}

// Prune drops lines whose product is no longer in the catalog.
func Prune(items []model.LineItem, products map[uuid.UUID]model.ProductSnapshot) []model.LineItem {
	return slices.DeleteFunc(slices.Clone(items), func(item model.LineItem) bool {
		_, ok := products[item.ProductID]
		return !ok
	})
}

func indexOf(items []model.LineItem, productID uuid.UUID) int {
	return slices.IndexFunc(items, func(item model.LineItem) bool {
		return item.ProductID == productID
	})
}
