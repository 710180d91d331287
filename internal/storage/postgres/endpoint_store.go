package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/storage"
)

// EndpointStore implements storage.EndpointStore using PostgreSQL.
type EndpointStore struct {
	pool *Pool
}

// NewEndpointStore creates a new EndpointStore.
func NewEndpointStore(pool *Pool) *EndpointStore {
	return &EndpointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EndpointStore = (*EndpointStore)(nil)

// SaveCustomEndpoints replaces the persisted custom endpoint list.
// The replacement is transactional: readers never observe a partial list.
func (s *EndpointStore) SaveCustomEndpoints(ctx context.Context, endpoints []domain.Endpoint) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "save_custom_endpoints", time.Since(start).Seconds(), err)
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save endpoints: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM custom_endpoints`); err != nil {
		return fmt.Errorf("clear custom endpoints: %w", err)
	}

	query := `
		INSERT INTO custom_endpoints (position, name, url, ws_url)
		VALUES ($1, $2, $3, $4)
	`
	for i, e := range endpoints {
		if _, err := tx.Exec(ctx, query, i, e.Name, e.URL, e.WSURL); err != nil {
			return fmt.Errorf("insert custom endpoint %s: %w", e.URL, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save endpoints: %w", err)
	}
	return nil
}

// LoadCustomEndpoints returns the persisted custom endpoint list in saved order.
func (s *EndpointStore) LoadCustomEndpoints(ctx context.Context) (_ []domain.Endpoint, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "load_custom_endpoints", time.Since(start).Seconds(), err)
	}()

	query := `
		SELECT name, url, ws_url
		FROM custom_endpoints
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load custom endpoints: %w", err)
	}
	defer rows.Close()

	var out []domain.Endpoint
	for rows.Next() {
		var e domain.Endpoint
		if err := rows.Scan(&e.Name, &e.URL, &e.WSURL); err != nil {
			return nil, fmt.Errorf("scan custom endpoint: %w", err)
		}
		e.Custom = true
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom endpoints: %w", err)
	}
	return out, nil
}
