package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-gstbill/internal/common"
	"github.com/noah-isme/backend-gstbill/internal/gst"
)

// Store abstracts product persistence for the service.
type Store interface {
	Create(ctx context.Context, in ProductInput) (Product, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	List(ctx context.Context, limit, offset int32) ([]Product, int64, error)
	Update(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListResult is the cacheable shape of one product page.
type ListResult struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
}

// Service orchestrates product management and list caching.
type Service struct {
	store Store
	cache *Cache
}

// NewService constructs the product service.
func NewService(store Store, cache *Cache) *Service {
	return &Service{store: store, cache: cache}
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := s.validate(in); err != nil {
		return Product{}, err
	}
	p, err := s.store.Create(ctx, in)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Invalidate(ctx)
	return p, nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Product{}, notFound()
	}
	p, err := s.store.Get(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return Product{}, notFound()
	}
	return p, err
}

// List returns a product page, serving from cache when possible.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	limit := int32(perPage)
	offset := int32((page - 1) * perPage)

	key := listKey(limit, offset)
	var cached ListResult
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached.Products, cached.Total, nil
	}

	products, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	_ = s.cache.SetJSON(ctx, key, ListResult{Products: products, Total: total})
	return products, total, nil
}

// Update validates and replaces a product.
func (s *Service) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Product{}, notFound()
	}
	if err := s.validate(in); err != nil {
		return Product{}, err
	}
	p, err := s.store.Update(ctx, uid, in)
	if errors.Is(err, ErrNotFound) {
		return Product{}, notFound()
	}
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Invalidate(ctx)
	return p, nil
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return notFound()
	}
	if err := s.store.Delete(ctx, uid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound()
		}
		return err
	}
	_ = s.cache.Invalidate(ctx)
	return nil
}

func (s *Service) validate(in ProductInput) error {
	if err := common.Validator().Struct(in); err != nil {
		return common.NewAppError(
			"VALIDATION_ERROR", "invalid product", http.StatusUnprocessableEntity, err,
		).WithDetails(common.ValidationDetails(err))
	}
	if !gst.ValidRate(gst.PercentToBps(int(in.GSTRate))) {
		return common.NewAppError(
			"INVALID_GST_RATE",
			fmt.Sprintf("gst rate must be one of %v", gst.AllowedRates),
			http.StatusUnprocessableEntity, nil,
		)
	}
	return nil
}

func notFound() error {
	return common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, nil)
}
