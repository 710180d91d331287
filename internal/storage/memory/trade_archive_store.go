package memory

import (
	"context"
	"sync"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/storage"
)

type archivedBatch struct {
	polledAt int64
	trades   []domain.Trade
}

// TradeArchiveStore is an in-memory implementation of storage.TradeArchiveStore.
type TradeArchiveStore struct {
	mu      sync.RWMutex
	batches map[string][]archivedBatch // keyed by market address
}

// NewTradeArchiveStore creates a new in-memory trade archive.
func NewTradeArchiveStore() *TradeArchiveStore {
	return &TradeArchiveStore{
		batches: make(map[string][]archivedBatch),
	}
}

// InsertBatch appends one poll's trades for a market.
func (s *TradeArchiveStore) InsertBatch(_ context.Context, market string, polledAt int64, trades []domain.Trade) error {
	if market == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := archivedBatch{polledAt: polledAt, trades: make([]domain.Trade, len(trades))}
	copy(batch.trades, trades)
	s.batches[market] = append(s.batches[market], batch)
	return nil
}

// GetByMarket retrieves archived trades for a market, newest poll first.
func (s *TradeArchiveStore) GetByMarket(_ context.Context, market string, limit int) ([]domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Trade
	batches := s.batches[market]
	for i := len(batches) - 1; i >= 0; i-- {
		out = append(out, batches[i].trades...)
		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
	}
	return out, nil
}
