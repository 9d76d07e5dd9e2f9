package clickhouse

import (
	"context"
	"errors"
	"testing"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

func TestStatsHistoryStore_InsertAndRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStatsHistoryStore(conn)
	ctx := context.Background()

	snapshots := []*domain.PlatformStats{
		{Properties: 3, OpenProperties: 2, Investors: 5, TotalInvested: 100.5, TotalValue: 550, DividendsPaid: 12.5, CollectedAtUnix: 1700000000},
		{Properties: 4, OpenProperties: 2, Investors: 6, TotalInvested: 120, TotalValue: 600, DividendsPaid: 15, CollectedAtUnix: 1700003600},
		{Properties: 4, OpenProperties: 1, Investors: 6, TotalInvested: 130, TotalValue: 600, DividendsPaid: 20, CollectedAtUnix: 1700007200},
	}
	for _, s := range snapshots {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetRange(ctx, 1700000000, 1700003600)
	if err != nil {
		t.Fatalf("GetRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(got))
	}
	if got[0].CollectedAtUnix != 1700000000 || got[1].CollectedAtUnix != 1700003600 {
		t.Errorf("Range order wrong: %d, %d", got[0].CollectedAtUnix, got[1].CollectedAtUnix)
	}
	if got[0].TotalInvested != 100.5 || got[0].Investors != 5 {
		t.Errorf("Snapshot fields wrong: %+v", got[0])
	}
}

func TestStatsHistoryStore_EmptyRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStatsHistoryStore(conn)

	got, err := store.GetRange(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("GetRange failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty range, got %d", len(got))
	}
}

func TestStatsHistoryStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStatsHistoryStore(conn)

	if err := store.Insert(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
