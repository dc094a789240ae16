package service

import (
	"context"
	"fmt"

	cartModel "storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"

	"github.com/google/uuid"
)

// ProductService implements ServiceInterface
type ProductService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

// NewService - Constructor with DI
func NewService(repo repository.RepositoryInterface, cache cache.Cache) ServiceInterface {
	return &ProductService{
		repo:  repo,
		cache: cache,
	}
}

// List - public listing, cached per page and keyword
func (s *ProductService) List(ctx context.Context, req model.ListRequest) (*model.ListResponse, error) {
	req.Normalize()

	// Try cache first. A cache failure is not fatal.
	cacheKey := req.CacheKey()
	var cached model.ListResponse
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warn("product list cache read failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}
	if found {
		logger.Debug("product list cache hit: " + cacheKey)
		return &cached, nil
	}

	// Cache MISS - query database
	products, total, err := s.repo.List(ctx, model.Filter{
		Keyword: req.Keyword,
		Offset:  (req.Page - 1) * model.PageSize,
		Limit:   model.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list products error: %w", err)
	}

	result := &model.ListResponse{
		Products: products,
		Page:     req.Page,
		Pages:    (total + model.PageSize - 1) / model.PageSize,
		Total:    total,
	}

	if err := s.cache.Set(ctx, cacheKey, result, model.ListCacheTTL); err != nil {
		logger.Warn("product list cache write failed", map[string]interface{}{"key": cacheKey, "error": err.Error()})
	}

	return result, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) GetSnapshots(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]cartModel.ProductSnapshot, error) {
	products, err := s.repo.GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}

	snapshots := make(map[uuid.UUID]cartModel.ProductSnapshot, len(products))
	for _, p := range products {
		snapshots[p.ID] = cartModel.ProductSnapshot{
			ID:    p.ID,
			Name:  p.Name,
			Image: p.Image,
			Price: p.Price,
			Stock: p.Stock,
		}
	}
	return snapshots, nil
}

func (s *ProductService) Create(ctx context.Context, req model.ProductRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &model.Product{ID: uuid.New()}
	applyRequest(p, req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	logger.Info("product created", map[string]interface{}{
		"product_id": p.ID.String(),
		"slug":       p.Slug,
	})
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req model.ProductRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyRequest(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Carts still referencing the product prune it on their next read
	s.invalidateList(ctx)
	logger.Info("product deleted", map[string]interface{}{
		"product_id": id.String(),
	})
	return nil
}

func (s *ProductService) invalidateList(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, model.ListCachePrefix+":*"); err != nil {
		logger.Error("failed to invalidate product list cache", err)
	}
}

func applyRequest(p *model.Product, req model.ProductRequest) {
	p.Name = req.Name
	p.Slug = utils.GenerateSlug(req.Name)
	if p.Slug == "" {
		p.Slug = "product-" + p.ID.String()[:8]
	}
	p.Price = req.Price
	p.Description = req.Description
	p.Image = req.Image
	p.Brand = req.Brand
	p.Category = req.Category
	p.Stock = req.Stock
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
