package repository

import (
	"context"

	"storefront-backend/internal/domains/product/model"

	"github.com/google/uuid"
)

// RepositoryInterface defines data access methods for products
type RepositoryInterface interface {
	// List returns one page matching filter plus the total match count
	List(ctx context.Context, filter model.Filter) ([]model.Product, int, error)

	// GetByID returns nil, nil when the product does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs returns the products that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	Create(ctx context.Context, p *model.Product) error

	// CreateBatch inserts all products in one transaction. Products whose
	// slug already exists are skipped; it returns how many rows were inserted.
	CreateBatch(ctx context.Context, products []*model.Product) (int, error)

	// Update returns model.ErrProductNotFound when nothing matched
	Update(ctx context.Context, p *model.Product) error

	// Delete returns model.ErrProductNotFound when nothing matched
	Delete(ctx context.Context, id uuid.UUID) error
}
