package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-gstbill/internal/common"
)

const defaultAccessTTL = 12 * time.Hour

// Service issues and validates access tokens for the single billing operator.
// The operator's credentials come from configuration, not a user table: this
// deployment model is one business, one login.
type Service struct {
	secret    []byte
	email     string
	hash      string
	accessTTL time.Duration
	now       func() time.Time
}

// Config configures the auth service.
type Config struct {
	Secret            string
	AdminEmail        string
	AdminPasswordHash string
	AccessTokenTTL    time.Duration
}

// NewService constructs the auth service.
func NewService(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, common.NewAppError("CONFIG", "auth secret is required", http.StatusInternalServerError, nil)
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	return &Service{
		secret:    []byte(cfg.Secret),
		email:     strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		hash:      cfg.AdminPasswordHash,
		accessTTL: ttl,
		now:       time.Now,
	}, nil
}

// LoginResult bundles token material returned after a successful login.
type LoginResult struct {
	AccessToken  string    `json:"access_token"`
	AccessExpiry time.Time `json:"access_expires_at"`
}

// Login verifies the operator credentials and mints an access token.
func (s *Service) Login(email, password string) (LoginResult, error) {
	if s.email == "" || s.hash == "" {
		return LoginResult{}, common.NewAppError("AUTH_DISABLED", "admin credentials not configured", http.StatusServiceUnavailable, nil)
	}
	if strings.ToLower(strings.TrimSpace(email)) != s.email {
		return LoginResult{}, invalidCredentials()
	}
	match, err := argon2id.ComparePasswordAndHash(password, s.hash)
	if err != nil || !match {
		return LoginResult{}, invalidCredentials()
	}
	now := s.now()
	expiry := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(s.email).
		IssuedAt(now).
		Expiration(expiry).
		Build()
	if err != nil {
		return LoginResult{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{AccessToken: string(signed), AccessExpiry: expiry}, nil
}

// ParseAccessToken validates a signed token and returns its subject.
func (s *Service) ParseAccessToken(raw string) (string, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid or expired token", http.StatusUnauthorized, err)
	}
	return token.Subject(), nil
}

func invalidCredentials() error {
	return common.NewAppError("INVALID_CREDENTIALS", "email or password incorrect", http.StatusUnauthorized, nil)
}
