package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-gstbill/internal/common"
)

// Store abstracts profile persistence for the service.
type Store interface {
	Get(ctx context.Context) (BusinessProfile, error)
	Replace(ctx context.Context, p BusinessProfile) (BusinessProfile, error)
}

// Service orchestrates business profile reads and replacement.
type Service struct {
	store        Store
	defaultState string
}

// NewService constructs the profile service. defaultState seeds the
// jurisdiction when no profile has been saved yet.
func NewService(store Store, defaultState string) *Service {
	return &Service{store: store, defaultState: defaultState}
}

// Get returns the saved profile, or a minimal default when none exists.
func (s *Service) Get(ctx context.Context) (BusinessProfile, error) {
	p, err := s.store.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return BusinessProfile{State: s.defaultState}, nil
	}
	return p, err
}

// Replace validates and stores the full profile.
func (s *Service) Replace(ctx context.Context, p BusinessProfile) (BusinessProfile, error) {
	if err := common.Validator().Struct(p); err != nil {
		return BusinessProfile{}, common.NewAppError(
			"VALIDATION_ERROR", "invalid business profile", http.StatusUnprocessableEntity, err,
		).WithDetails(common.ValidationDetails(err))
	}
	return s.store.Replace(ctx, p)
}
