package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
)

// PropertyStore implements storage.PropertyIndexStore using PostgreSQL.
type PropertyStore struct {
	pool *Pool
}

// NewPropertyStore creates a new PropertyStore.
func NewPropertyStore(pool *Pool) *PropertyStore {
	return &PropertyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PropertyIndexStore = (*PropertyStore)(nil)

// Upsert inserts or replaces a property keyed by its PDA.
func (s *PropertyStore) Upsert(ctx context.Context, p *domain.Property) error {
	if p == nil || p.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO properties (
			public_key, property_name, total_tokens, available_tokens,
			token_price_usdc, token_symbol, admin, mint, bump,
			dividends_total, is_closed, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (public_key) DO UPDATE SET
			property_name    = EXCLUDED.property_name,
			total_tokens     = EXCLUDED.total_tokens,
			available_tokens = EXCLUDED.available_tokens,
			token_price_usdc = EXCLUDED.token_price_usdc,
			token_symbol     = EXCLUDED.token_symbol,
			admin            = EXCLUDED.admin,
			mint             = EXCLUDED.mint,
			bump             = EXCLUDED.bump,
			dividends_total  = EXCLUDED.dividends_total,
			is_closed        = EXCLUDED.is_closed,
			updated_at       = now()
	`

	_, err := s.pool.Exec(ctx, query,
		p.PublicKey,
		p.Name,
		int64(p.TotalTokens),
		int64(p.AvailableTokens),
		p.TokenPriceUSDC,
		p.TokenSymbol,
		p.Admin,
		p.Mint,
		int16(p.Bump),
		p.DividendsTotal,
		p.IsClosed,
	)
	if err != nil {
		return fmt.Errorf("upsert property: %w", err)
	}
	return nil
}

// GetByPDA retrieves a property. Returns ErrNotFound if not exists.
func (s *PropertyStore) GetByPDA(ctx context.Context, pda string) (*domain.Property, error) {
	query := `
		SELECT public_key, property_name, total_tokens, available_tokens,
		       token_price_usdc, token_symbol, admin, mint, bump,
		       dividends_total, is_closed
		FROM properties
		WHERE public_key = $1
	`

	row := s.pool.QueryRow(ctx, query, pda)
	p, err := scanProperty(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get property by pda: %w", err)
	}
	return p, nil
}

// GetByAdmin retrieves all properties created by an administrator.
func (s *PropertyStore) GetByAdmin(ctx context.Context, admin string) ([]*domain.Property, error) {
	query := `
		SELECT public_key, property_name, total_tokens, available_tokens,
		       token_price_usdc, token_symbol, admin, mint, bump,
		       dividends_total, is_closed
		FROM properties
		WHERE admin = $1
		ORDER BY property_name ASC
	`

	rows, err := s.pool.Query(ctx, query, admin)
	if err != nil {
		return nil, fmt.Errorf("get properties by admin: %w", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

// List retrieves all indexed properties, ordered by name ASC.
func (s *PropertyStore) List(ctx context.Context) ([]*domain.Property, error) {
	query := `
		SELECT public_key, property_name, total_tokens, available_tokens,
		       token_price_usdc, token_symbol, admin, mint, bump,
		       dividends_total, is_closed
		FROM properties
		ORDER BY property_name ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	var totalTokens, availableTokens int64
	var bump int16

	err := row.Scan(
		&p.PublicKey,
		&p.Name,
		&totalTokens,
		&availableTokens,
		&p.TokenPriceUSDC,
		&p.TokenSymbol,
		&p.Admin,
		&p.Mint,
		&bump,
		&p.DividendsTotal,
		&p.IsClosed,
	)
	if err != nil {
		return nil, err
	}

	p.TotalTokens = uint64(totalTokens)
	p.AvailableTokens = uint64(availableTokens)
	p.Bump = uint8(bump)
	return &p, nil
}

func scanProperties(rows pgx.Rows) ([]*domain.Property, error) {
	var result []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return result, nil
}
