package storage

import (
	"context"

	"solana-dex-desk/internal/domain"
)

// EndpointStore persists the user-added RPC endpoint list.
// The list is replaced wholesale on every save.
type EndpointStore interface {
	// SaveCustomEndpoints replaces the persisted custom endpoint list.
	SaveCustomEndpoints(ctx context.Context, endpoints []domain.Endpoint) error

	// LoadCustomEndpoints returns the persisted custom endpoint list.
	// A missing entry yields an empty list, not an error.
	LoadCustomEndpoints(ctx context.Context) ([]domain.Endpoint, error)
}

// MarketStore persists the user-added market list.
// The list is replaced wholesale on every save.
type MarketStore interface {
	// SaveCustomMarkets replaces the persisted custom market list.
	SaveCustomMarkets(ctx context.Context, markets []domain.MarketDescriptor) error

	// LoadCustomMarkets returns the persisted custom market list.
	// A missing entry yields an empty list, not an error.
	LoadCustomMarkets(ctx context.Context) ([]domain.MarketDescriptor, error)
}

// SelectionStore persists the active market selection across restarts.
// It is keyed independently from EndpointStore and MarketStore so that
// clearing one never affects the others.
type SelectionStore interface {
	// SaveActiveMarket persists the active market address.
	SaveActiveMarket(ctx context.Context, address string) error

	// LoadActiveMarket returns the persisted address.
	// Returns ErrNotFound when no selection has been saved.
	LoadActiveMarket(ctx context.Context) (string, error)

	// ClearActiveMarket removes the persisted selection.
	ClearActiveMarket(ctx context.Context) error
}

// TradeArchiveStore records polled trade batches for offline analysis.
// Writes are best-effort from the aggregator's point of view.
type TradeArchiveStore interface {
	// InsertBatch appends one poll's trades for a market. polledAt is the
	// poll timestamp in unix milliseconds.
	InsertBatch(ctx context.Context, market string, polledAt int64, trades []domain.Trade) error

	// GetByMarket retrieves archived trades for a market, newest poll
	// first, up to limit rows (0 means no limit).
	GetByMarket(ctx context.Context, market string, limit int) ([]domain.Trade, error)
}
