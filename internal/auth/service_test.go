package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-gstbill/internal/auth"
	"github.com/noah-isme/backend-gstbill/internal/common"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	hash, err := argon2id.CreateHash("hunter2!!", argon2id.DefaultParams)
	require.NoError(t, err)
	svc, err := auth.NewService(auth.Config{
		Secret:            "test-secret",
		AdminEmail:        "billing@example.com",
		AdminPasswordHash: hash,
		AccessTokenTTL:    time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestLoginAndParse(t *testing.T) {
	svc := newService(t)

	result, err := svc.Login("Billing@Example.com", "hunter2!!")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)

	subject, err := svc.ParseAccessToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "billing@example.com", subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(t)

	_, err := svc.Login("billing@example.com", "wrong")
	require.Error(t, err)

	_, err = svc.Login("other@example.com", "hunter2!!")
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	svc := newService(t)
	_, err := svc.ParseAccessToken("not-a-token")
	require.Error(t, err)
}

func TestRequireAuthMiddleware(t *testing.T) {
	svc := newService(t)
	result, err := svc.Login("billing@example.com", "hunter2!!")
	require.NoError(t, err)

	var sawSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSubject, _ = common.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := auth.Middleware{Service: svc}.RequireAuth(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "billing@example.com", sawSubject)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
