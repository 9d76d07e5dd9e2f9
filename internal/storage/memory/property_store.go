// Package memory provides in-memory implementations of the index
// stores, used in tests and index-less deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// PropertyStore is an in-memory implementation of storage.PropertyIndexStore.
type PropertyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Property // keyed by PDA
}

// NewPropertyStore creates a new in-memory property store.
func NewPropertyStore() *PropertyStore {
	return &PropertyStore{
		data: make(map[string]*domain.Property),
	}
}

// Upsert inserts or replaces a property keyed by its PDA.
func (s *PropertyStore) Upsert(_ context.Context, p *domain.Property) error {
	if p == nil || p.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	propertyCopy := *p
	s.data[p.PublicKey] = &propertyCopy
	return nil
}

// GetByPDA retrieves a property. Returns ErrNotFound if not exists.
func (s *PropertyStore) GetByPDA(_ context.Context, pda string) (*domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[pda]
	if !exists {
		return nil, storage.ErrNotFound
	}

	propertyCopy := *p
	return &propertyCopy, nil
}

// GetByAdmin retrieves all properties created by an administrator.
func (s *PropertyStore) GetByAdmin(_ context.Context, admin string) ([]*domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Property
	for _, p := range s.data {
		if p.Admin == admin {
			propertyCopy := *p
			result = append(result, &propertyCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// List retrieves all indexed properties, ordered by name ASC.
func (s *PropertyStore) List(_ context.Context) ([]*domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Property, 0, len(s.data))
	for _, p := range s.data {
		propertyCopy := *p
		result = append(result, &propertyCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.PropertyIndexStore = (*PropertyStore)(nil)
