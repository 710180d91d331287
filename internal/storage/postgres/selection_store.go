package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/storage"
)

// selectionKeyActiveMarket is the row key for the active market selection.
// Selections are keyed independently so clearing one never touches another.
const selectionKeyActiveMarket = "active_market"

// SelectionStore implements storage.SelectionStore using PostgreSQL.
type SelectionStore struct {
	pool *Pool
}

// NewSelectionStore creates a new SelectionStore.
func NewSelectionStore(pool *Pool) *SelectionStore {
	return &SelectionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SelectionStore = (*SelectionStore)(nil)

// SaveActiveMarket persists the active market address.
func (s *SelectionStore) SaveActiveMarket(ctx context.Context, address string) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "save_active_market", time.Since(start).Seconds(), err)
	}()

	if address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO selections (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := s.pool.Exec(ctx, query, selectionKeyActiveMarket, address); err != nil {
		return fmt.Errorf("save active market: %w", err)
	}
	return nil
}

// LoadActiveMarket returns the persisted address, or ErrNotFound when unset.
func (s *SelectionStore) LoadActiveMarket(ctx context.Context) (string, error) {
	start := time.Now()
	query := `SELECT value FROM selections WHERE key = $1`

	var address string
	err := s.pool.QueryRow(ctx, query, selectionKeyActiveMarket).Scan(&address)
	if err != nil {
		if isNotFoundError(err) {
			// An unset selection is a normal state, not a query error.
			observability.RecordDBQuery("postgres", "load_active_market", time.Since(start).Seconds(), nil)
			return "", storage.ErrNotFound
		}
		observability.RecordDBQuery("postgres", "load_active_market", time.Since(start).Seconds(), err)
		return "", fmt.Errorf("load active market: %w", err)
	}
	observability.RecordDBQuery("postgres", "load_active_market", time.Since(start).Seconds(), nil)
	return address, nil
}

// ClearActiveMarket removes the persisted selection.
func (s *SelectionStore) ClearActiveMarket(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "clear_active_market", time.Since(start).Seconds(), err)
	}()

	if _, err := s.pool.Exec(ctx, `DELETE FROM selections WHERE key = $1`, selectionKeyActiveMarket); err != nil {
		return fmt.Errorf("clear active market: %w", err)
	}
	return nil
}
