package party

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-gstbill/internal/common"
)

// Store abstracts customer persistence for the service.
type Store interface {
	Create(ctx context.Context, in CustomerInput) (Customer, error)
	Get(ctx context.Context, id uuid.UUID) (Customer, error)
	List(ctx context.Context, limit, offset int32) ([]Customer, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates customer management.
type Service struct {
	store Store
}

// NewService constructs the customer service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and stores a new customer.
func (s *Service) Create(ctx context.Context, in CustomerInput) (Customer, error) {
	if err := common.Validator().Struct(in); err != nil {
		return Customer{}, common.NewAppError(
			"VALIDATION_ERROR", "invalid customer", http.StatusUnprocessableEntity, err,
		).WithDetails(common.ValidationDetails(err))
	}
	return s.store.Create(ctx, in)
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Customer{}, notFound()
	}
	c, err := s.store.Get(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return Customer{}, notFound()
	}
	return c, err
}

// List returns a customer page.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Customer, int64, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return s.store.List(ctx, int32(perPage), int32((page-1)*perPage))
}

// Delete removes a customer from the live list.
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
	return nil
}

func notFound() error {
	return common.NewAppError("NOT_FOUND", "customer not found", http.StatusNotFound, nil)
}
