package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// InvestmentStore implements storage.InvestmentIndexStore using PostgreSQL.
type InvestmentStore struct {
	pool *Pool
}

// NewInvestmentStore creates a new InvestmentStore.
func NewInvestmentStore(pool *Pool) *InvestmentStore {
	return &InvestmentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InvestmentIndexStore = (*InvestmentStore)(nil)

// Upsert inserts or replaces an investment keyed by its PDA.
func (s *InvestmentStore) Upsert(ctx context.Context, inv *domain.Investment) error {
	if inv == nil || inv.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO investments (
			public_key, investor, property, amount, dividends_claimed, updated_at
		) VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (public_key) DO UPDATE SET
			investor          = EXCLUDED.investor,
			property          = EXCLUDED.property,
			amount            = EXCLUDED.amount,
			dividends_claimed = EXCLUDED.dividends_claimed,
			updated_at        = now()
	`

	_, err := s.pool.Exec(ctx, query,
		inv.PublicKey,
		inv.Investor,
		inv.Property,
		int64(inv.Amount),
		inv.DividendsClaimed,
	)
	if err != nil {
		return fmt.Errorf("upsert investment: %w", err)
	}
	return nil
}

// Delete removes an investment. Missing records are not an error.
func (s *InvestmentStore) Delete(ctx context.Context, pda string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM investments WHERE public_key = $1`, pda)
	if err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	return nil
}

// GetByInvestor retrieves an investor's positions, ordered by property
// PDA ASC.
func (s *InvestmentStore) GetByInvestor(ctx context.Context, investor string) ([]*domain.Investment, error) {
	query := `
		SELECT public_key, investor, property, amount, dividends_claimed
		FROM investments
		WHERE investor = $1
		ORDER BY property ASC
	`

	rows, err := s.pool.Query(ctx, query, investor)
	if err != nil {
		return nil, fmt.Errorf("get investments by investor: %w", err)
	}
	defer rows.Close()

	var result []*domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate investments: %w", err)
	}
	return result, nil
}

func scanInvestment(row pgx.Row) (*domain.Investment, error) {
	var inv domain.Investment
	var amount int64

	err := row.Scan(
		&inv.PublicKey,
		&inv.Investor,
		&inv.Property,
		&amount,
		&inv.DividendsClaimed,
	)
	if err != nil {
		return nil, err
	}

	inv.Amount = uint64(amount)
	return &inv, nil
}
