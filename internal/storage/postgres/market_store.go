package postgres

import (
	"context"
	"fmt"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/storage"
)

// MarketStore implements storage.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *Pool
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(pool *Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketStore = (*MarketStore)(nil)

// SaveCustomMarkets replaces the persisted custom market list.
func (s *MarketStore) SaveCustomMarkets(ctx context.Context, markets []domain.MarketDescriptor) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "save_custom_markets", time.Since(start).Seconds(), err)
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save markets: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM custom_markets`); err != nil {
		return fmt.Errorf("clear custom markets: %w", err)
	}

	query := `
		INSERT INTO custom_markets (
			position, address, name, base_currency, quote_currency, program_version, deprecated
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, m := range markets {
		_, err := tx.Exec(ctx, query,
			i,
			m.Address,
			m.Name,
			m.BaseCurrency,
			m.QuoteCurrency,
			m.ProgramVersion,
			m.Deprecated,
		)
		if err != nil {
			return fmt.Errorf("insert custom market %s: %w", m.Address, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save markets: %w", err)
	}
	return nil
}

// LoadCustomMarkets returns the persisted custom market list in saved order.
func (s *MarketStore) LoadCustomMarkets(ctx context.Context) (_ []domain.MarketDescriptor, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "load_custom_markets", time.Since(start).Seconds(), err)
	}()

	query := `
		SELECT address, name, base_currency, quote_currency, program_version, deprecated
		FROM custom_markets
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load custom markets: %w", err)
	}
	defer rows.Close()

	var out []domain.MarketDescriptor
	for rows.Next() {
		var m domain.MarketDescriptor
		if err := rows.Scan(&m.Address, &m.Name, &m.BaseCurrency, &m.QuoteCurrency, &m.ProgramVersion, &m.Deprecated); err != nil {
			return nil, fmt.Errorf("scan custom market: %w", err)
		}
		m.Custom = true
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom markets: %w", err)
	}
	return out, nil
}
