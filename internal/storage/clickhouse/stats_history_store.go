package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// StatsHistoryStore implements storage.StatsHistoryStore using ClickHouse.
type StatsHistoryStore struct {
	conn *Conn
}

// NewStatsHistoryStore creates a new StatsHistoryStore.
func NewStatsHistoryStore(conn *Conn) *StatsHistoryStore {
	return &StatsHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StatsHistoryStore = (*StatsHistoryStore)(nil)

// Insert appends a snapshot.
func (s *StatsHistoryStore) Insert(ctx context.Context, stats *domain.PlatformStats) error {
	if stats == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO platform_stats_history (
			collected_at, properties, open_properties, investors,
			total_invested, total_value, dividends_paid
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		time.Unix(stats.CollectedAtUnix, 0).UTC(),
		uint32(stats.Properties),
		uint32(stats.OpenProperties),
		uint32(stats.Investors),
		stats.TotalInvested,
		stats.TotalValue,
		stats.DividendsPaid,
	)
	if err != nil {
		return fmt.Errorf("insert stats snapshot: %w", err)
	}
	return nil
}

// GetRange retrieves snapshots collected within [start, end] (inclusive
// unix seconds), ordered by collection time ASC.
func (s *StatsHistoryStore) GetRange(ctx context.Context, start, end int64) ([]*domain.PlatformStats, error) {
	query := `
		SELECT collected_at, properties, open_properties, investors,
		       total_invested, total_value, dividends_paid
		FROM platform_stats_history
		WHERE collected_at >= ? AND collected_at <= ?
		ORDER BY collected_at ASC
	`

	rows, err := s.conn.Query(ctx, query,
		time.Unix(start, 0).UTC(),
		time.Unix(end, 0).UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("get stats range: %w", err)
	}
	defer rows.Close()

	var result []*domain.PlatformStats
	for rows.Next() {
		var (
			collectedAt                              time.Time
			properties, openProperties, investors    uint32
			totalInvested, totalValue, dividendsPaid float64
		)
		if err := rows.Scan(
			&collectedAt,
			&properties,
			&openProperties,
			&investors,
			&totalInvested,
			&totalValue,
			&dividendsPaid,
		); err != nil {
			return nil, fmt.Errorf("scan stats snapshot: %w", err)
		}
		result = append(result, &domain.PlatformStats{
			Properties:      int(properties),
			OpenProperties:  int(openProperties),
			Investors:       int(investors),
			TotalInvested:   totalInvested,
			TotalValue:      totalValue,
			DividendsPaid:   dividendsPaid,
			CollectedAtUnix: collectedAt.Unix(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats snapshots: %w", err)
	}
	return result, nil
}
