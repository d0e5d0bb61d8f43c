package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-gstbill/internal/common"
	"github.com/noah-isme/backend-gstbill/internal/profile"
)

type stubStore struct {
	saved   *profile.BusinessProfile
	current *profile.BusinessProfile
}

func (s *stubStore) Get(ctx context.Context) (profile.BusinessProfile, error) {
	if s.current == nil {
		return profile.BusinessProfile{}, profile.ErrNotFound
	}
	return *s.current, nil
}

func (s *stubStore) Replace(ctx context.Context, p profile.BusinessProfile) (profile.BusinessProfile, error) {
	s.saved = &p
	s.current = &p
	return p, nil
}

func TestGetFallsBackToDefaultState(t *testing.T) {
	svc := profile.NewService(&stubStore{}, "Maharashtra")
	p, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Maharashtra", p.State)
}

func TestReplaceValidates(t *testing.T) {
	store := &stubStore{}
	svc := profile.NewService(store, "Maharashtra")

	_, err := svc.Replace(context.Background(), profile.BusinessProfile{
		Name:    "My Business",
		Address: "123 Business Street",
		State:   "Atlantis",
	})
	require.Error(t, err)
	require.True(t, common.IsAppError(err))
	require.Nil(t, store.saved)

	saved, err := svc.Replace(context.Background(), profile.BusinessProfile{
		Name:    "My Business",
		Address: "123 Business Street",
		City:    "Mumbai",
		State:   "Maharashtra",
		GSTIN:   "27ABCDE1234F1Z5",
		Email:   "billing@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Maharashtra", saved.State)
	require.NotNil(t, store.saved)
}
