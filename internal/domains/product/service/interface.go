package service

import (
	"context"
	"io"

	cartModel "storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/product/model"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type ServiceInterface interface {
	// List returns the public, cached listing
	List(ctx context.Context, req model.ListRequest) (*model.ListResponse, error)

	// GetByID always reads the database
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetSnapshots serves the cart: current price and stock, never cached
	GetSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]cartModel.ProductSnapshot, error)

	Create(ctx context.Context, req model.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, req model.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ExportExcel writes the whole catalog into one sheet
	ExportExcel(ctx context.Context) (*excelize.File, error)

	// ImportExcel creates products from a sheet laid out like the export
	ImportExcel(ctx context.Context, r io.Reader) (*model.ImportResult, error)
}
