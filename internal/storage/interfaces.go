// Package storage defines the off-chain index stores. The index mirrors
// confirmed ledger state for queries the RPC endpoint cannot serve
// (joins, history); the ledger stays authoritative and index writes are
// best effort.
package storage

import (
	"context"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
)

// PropertyIndexStore mirrors confirmed property accounts.
type PropertyIndexStore interface {
	// Upsert inserts or replaces a property keyed by its PDA.
	Upsert(ctx context.Context, p *domain.Property) error

	// GetByPDA retrieves a property. Returns ErrNotFound if not exists.
	GetByPDA(ctx context.Context, pda string) (*domain.Property, error)

	// GetByAdmin retrieves all properties created by an administrator.
	GetByAdmin(ctx context.Context, admin string) ([]*domain.Property, error)

	// List retrieves all indexed properties, ordered by name ASC.
	List(ctx context.Context) ([]*domain.Property, error)
}

// InvestmentIndexStore mirrors confirmed investment accounts.
type InvestmentIndexStore interface {
	// Upsert inserts or replaces an investment keyed by its PDA. A
	// second upsert for the same (investor, property) pair overwrites
	// the first; the ledger guarantees a single live account per pair.
	Upsert(ctx context.Context, inv *domain.Investment) error

	// Delete removes an investment after a full withdrawal. Missing
	// records are not an error.
	Delete(ctx context.Context, pda string) error

	// GetByInvestor retrieves an investor's positions, ordered by
	// property PDA ASC.
	GetByInvestor(ctx context.Context, investor string) ([]*domain.Investment, error)
}

// StatsHistoryStore records periodic platform stats snapshots.
type StatsHistoryStore interface {
	// Insert appends a snapshot.
	Insert(ctx context.Context, s *domain.PlatformStats) error

	// GetRange retrieves snapshots collected within [start, end]
	// (inclusive unix seconds), ordered by collection time ASC.
	GetRange(ctx context.Context, start, end int64) ([]*domain.PlatformStats, error)
}
