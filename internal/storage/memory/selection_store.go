package memory

import (
	"context"
	"sync"

	"solana-dex-desk/internal/storage"
)

// SelectionStore is an in-memory implementation of storage.SelectionStore.
type SelectionStore struct {
	mu      sync.RWMutex
	address string
	set     bool
}

// NewSelectionStore creates a new in-memory selection store.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{}
}

// SaveActiveMarket persists the active market address.
func (s *SelectionStore) SaveActiveMarket(_ context.Context, address string) error {
	if address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	s.set = true
	return nil
}

// LoadActiveMarket returns the persisted address, or ErrNotFound when unset.
func (s *SelectionStore) LoadActiveMarket(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return "", storage.ErrNotFound
	}
	return s.address, nil
}

// ClearActiveMarket removes the persisted selection.
func (s *SelectionStore) ClearActiveMarket(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = ""
	s.set = false
	return nil
}
