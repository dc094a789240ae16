package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-backend/internal/domains/cart/engine"
	"storefront-backend/internal/domains/cart/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
	}
}

// FindByOwner implements RepositoryInterface.FindByOwner
func (r *postgresRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT
			owner_id, items, discount_code, discount_amount,
			sub_total, tax, total, version, schema_version,
			created_at, updated_at
		FROM carts
		WHERE owner_id = $1
	`

	var (
		cart     model.Cart
		rawItems []byte
	)
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&cart.OwnerID,
		&rawItems,
		&cart.DiscountCode,
		&cart.DiscountAmount,
		&cart.Totals.SubTotal,
		&cart.Totals.Tax,
		&cart.Totals.Total,
		&cart.Version,
		&cart.SchemaVersion,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - return nil, not error
		}
		return nil, fmt.Errorf("%w: failed to get cart: %w", model.ErrStorageUnavailable, err)
	}

	if err := json.Unmarshal(rawItems, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart items (schema v%d): %w", cart.SchemaVersion, err)
	}
	if cart.Items == nil {
		cart.Items = []model.LineItem{}
	}
	cart.Totals.DiscountAmount = cart.DiscountAmount

	return &cart, nil
}

// LoadOrCreate implements RepositoryInterface.LoadOrCreate
func (r *postgresRepository) LoadOrCreate(ctx context.Context, ownerID uuid.UUID) (*model.Cart, error) {
	cart, err := r.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return model.NewCart(ownerID), nil
	}
	return cart, nil
}

// Save implements RepositoryInterface.Save
func (r *postgresRepository) Save(ctx context.Context, cart *model.Cart, prices model.PriceBook) error {
	totals := engine.ComputeTotals(cart.Items, prices, cart.DiscountAmount)

	items := cart.Items
	if items == nil {
		items = []model.LineItem{}
	}
	rawItems, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart items: %w", err)
	}

	now := time.Now()
	var tag pgconn.CommandTag

	if cart.IsNew() {
		// First write for this owner. A concurrent first write wins the
		// primary key and this one reports a conflict.
		query := `
			INSERT INTO carts (
				owner_id, items, discount_code, discount_amount,
				sub_total, tax, total, version, schema_version,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9, $9)
			ON CONFLICT (owner_id) DO NOTHING
		`
		tag, err = r.pool.Exec(ctx, query,
			cart.OwnerID, rawItems, cart.DiscountCode, cart.DiscountAmount,
			totals.SubTotal, totals.Tax, totals.Total, model.CurrentSchemaVersion, now,
		)
	} else {
		query := `
			UPDATE carts
			SET items = $2,
			    discount_code = $3,
			    discount_amount = $4,
			    sub_total = $5,
			    tax = $6,
			    total = $7,
			    schema_version = $8,
			    version = version + 1,
			    updated_at = $9
			WHERE owner_id = $1 AND version = $10
		`
		tag, err = r.pool.Exec(ctx, query,
			cart.OwnerID, rawItems, cart.DiscountCode, cart.DiscountAmount,
			totals.SubTotal, totals.Tax, totals.Total, model.CurrentSchemaVersion, now,
			cart.Version,
		)
	}

	if err != nil {
		return fmt.Errorf("%w: failed to save cart: %w", model.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrConcurrentModification
	}

	if cart.IsNew() {
		cart.CreatedAt = now
	}
	cart.Version++
	cart.SchemaVersion = model.CurrentSchemaVersion
	cart.UpdatedAt = now
	cart.Totals = totals

	return nil
}
