package memory

import (
	"context"
	"sync"

	"solana-dex-desk/internal/domain"
)

// EndpointStore is an in-memory implementation of storage.EndpointStore.
type EndpointStore struct {
	mu   sync.RWMutex
	list []domain.Endpoint
}

// NewEndpointStore creates a new in-memory endpoint store.
func NewEndpointStore() *EndpointStore {
	return &EndpointStore{}
}

// SaveCustomEndpoints replaces the persisted custom endpoint list.
func (s *EndpointStore) SaveCustomEndpoints(_ context.Context, endpoints []domain.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	s.list = make([]domain.Endpoint, len(endpoints))
	copy(s.list, endpoints)
	return nil
}

// LoadCustomEndpoints returns the persisted custom endpoint list.
func (s *EndpointStore) LoadCustomEndpoints(_ context.Context) ([]domain.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Endpoint, len(s.list))
	copy(out, s.list)
	return out, nil
}
