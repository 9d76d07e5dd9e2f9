package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// StatsHistoryStore is an in-memory implementation of storage.StatsHistoryStore.
type StatsHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.PlatformStats
}

// NewStatsHistoryStore creates a new in-memory stats history store.
func NewStatsHistoryStore() *StatsHistoryStore {
	return &StatsHistoryStore{}
}

// Insert appends a snapshot.
func (s *StatsHistoryStore) Insert(_ context.Context, stats *domain.PlatformStats) error {
	if stats == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	statsCopy := *stats
	s.data = append(s.data, &statsCopy)
	return nil
}

// GetRange retrieves snapshots collected within [start, end] (inclusive),
// ordered by collection time ASC.
func (s *StatsHistoryStore) GetRange(_ context.Context, start, end int64) ([]*domain.PlatformStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PlatformStats
	for _, stats := range s.data {
		if stats.CollectedAtUnix >= start && stats.CollectedAtUnix <= end {
			statsCopy := *stats
			result = append(result, &statsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CollectedAtUnix < result[j].CollectedAtUnix
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.StatsHistoryStore = (*StatsHistoryStore)(nil)
