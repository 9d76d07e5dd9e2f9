package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// InvestmentStore is an in-memory implementation of storage.InvestmentIndexStore.
type InvestmentStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Investment // keyed by PDA
}

// NewInvestmentStore creates a new in-memory investment store.
func NewInvestmentStore() *InvestmentStore {
	return &InvestmentStore{
		data: make(map[string]*domain.Investment),
	}
}

// Upsert inserts or replaces an investment keyed by its PDA.
func (s *InvestmentStore) Upsert(_ context.Context, inv *domain.Investment) error {
	if inv == nil || inv.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	investmentCopy := *inv
	s.data[inv.PublicKey] = &investmentCopy
	return nil
}

// Delete removes an investment. Missing records are not an error.
func (s *InvestmentStore) Delete(_ context.Context, pda string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, pda)
	return nil
}

// GetByInvestor retrieves an investor's positions, ordered by property
// PDA ASC.
func (s *InvestmentStore) GetByInvestor(_ context.Context, investor string) ([]*domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Investment
	for _, inv := range s.data {
		if inv.Investor == investor {
			investmentCopy := *inv
			result = append(result, &investmentCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Property < result[j].Property
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.InvestmentIndexStore = (*InvestmentStore)(nil)
