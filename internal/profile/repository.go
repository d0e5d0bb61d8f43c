package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the profile row has not been seeded yet.
var ErrNotFound = errors.New("profile: not found")

// Repository provides PostgreSQL backed persistence for the business profile.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the business profile.
func (r *Repository) Get(ctx context.Context) (BusinessProfile, error) {
	query := `
		SELECT name, address, city, state, pincode, gstin, phone, email,
			bank_name, account_number, ifsc, terms, updated_at
		FROM business_profile
		WHERE id = 1`

	var p BusinessProfile
	err := r.pool.QueryRow(ctx, query).Scan(
		&p.Name, &p.Address, &p.City, &p.State, &p.Pincode, &p.GSTIN,
		&p.Phone, &p.Email, &p.BankName, &p.AccountNumber, &p.IFSC,
		&p.Terms, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return BusinessProfile{}, ErrNotFound
	}
	if err != nil {
		return BusinessProfile{}, err
	}
	return p, nil
}

// Replace upserts the single profile row.
func (r *Repository) Replace(ctx context.Context, p BusinessProfile) (BusinessProfile, error) {
	query := `
		INSERT INTO business_profile (
			id, name, address, city, state, pincode, gstin, phone, email,
			bank_name, account_number, ifsc, terms, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			pincode = EXCLUDED.pincode,
			gstin = EXCLUDED.gstin,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			bank_name = EXCLUDED.bank_name,
			account_number = EXCLUDED.account_number,
			ifsc = EXCLUDED.ifsc,
			terms = EXCLUDED.terms,
			updated_at = NOW()
		RETURNING updated_at`

	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, query,
		p.Name, p.Address, p.City, p.State, p.Pincode, p.GSTIN,
		p.Phone, p.Email, p.BankName, p.AccountNumber, p.IFSC, p.Terms,
	).Scan(&updatedAt)
	if err != nil {
		return BusinessProfile{}, err
	}
	p.UpdatedAt = updatedAt
	return p, nil
}
