package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the webhook endpoint does not exist.
var ErrNotFound = errors.New("notify: endpoint not found")

// Store provides PostgreSQL backed persistence for webhook endpoints.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const endpointColumns = `id, url, secret, topics, active, created_at, updated_at`

func scanEndpoint(row pgx.Row) (Endpoint, error) {
	var ep Endpoint
	err := row.Scan(&ep.ID, &ep.URL, &ep.Secret, &ep.Topics, &ep.Active, &ep.CreatedAt, &ep.UpdatedAt)
	return ep, err
}

// Create registers a webhook endpoint.
func (s *Store) Create(ctx context.Context, in EndpointInput) (Endpoint, error) {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return scanEndpoint(s.pool.QueryRow(ctx, `
		INSERT INTO webhook_endpoints (url, secret, topics, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING `+endpointColumns,
		in.URL, in.Secret, in.Topics, active))
}

// Get returns one endpoint.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Endpoint, error) {
	ep, err := scanEndpoint(s.pool.QueryRow(ctx,
		`SELECT `+endpointColumns+` FROM webhook_endpoints WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Endpoint{}, ErrNotFound
	}
	return ep, err
}

// List returns all endpoints, newest first.
func (s *Store) List(ctx context.Context) ([]Endpoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+endpointColumns+` FROM webhook_endpoints ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Endpoint
	for rows.Next() {
		ep, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}

// ListActiveForTopic returns active endpoints subscribed to the topic.
func (s *Store) ListActiveForTopic(ctx context.Context, topic string) ([]Endpoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+endpointColumns+` FROM webhook_endpoints
		WHERE active AND $1 = ANY(topics)
		ORDER BY created_at, id`, topic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Endpoint
	for rows.Next() {
		ep, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}

// Update replaces an endpoint's settings.
func (s *Store) Update(ctx context.Context, id uuid.UUID, in EndpointInput) (Endpoint, error) {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	ep, err := scanEndpoint(s.pool.QueryRow(ctx, `
		UPDATE webhook_endpoints
		SET url = $2, secret = $3, topics = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+endpointColumns,
		id, in.URL, in.Secret, in.Topics, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return Endpoint{}, ErrNotFound
	}
	return ep, err
}

// Delete removes an endpoint.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM webhook_endpoints WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
