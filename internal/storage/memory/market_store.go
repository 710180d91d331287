package memory

import (
	"context"
	"sync"

	"solana-dex-desk/internal/domain"
)

// MarketStore is an in-memory implementation of storage.MarketStore.
type MarketStore struct {
	mu   sync.RWMutex
	list []domain.MarketDescriptor
}

// NewMarketStore creates a new in-memory market store.
func NewMarketStore() *MarketStore {
	return &MarketStore{}
}

// SaveCustomMarkets replaces the persisted custom market list.
func (s *MarketStore) SaveCustomMarkets(_ context.Context, markets []domain.MarketDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = make([]domain.MarketDescriptor, len(markets))
	copy(s.list, markets)
	return nil
}

// LoadCustomMarkets returns the persisted custom market list.
func (s *MarketStore) LoadCustomMarkets(_ context.Context) ([]domain.MarketDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MarketDescriptor, len(s.list))
	copy(out, s.list)
	return out, nil
}
