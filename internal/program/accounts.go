// Package program wraps access to the crowd-estate on-chain program: it
// fetches and decodes its accounts and submits signed transactions. The
// program logic itself (minting, escrow, dividend math) runs on the
// ledger and is never reimplemented here.
package program

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
	"github.com/marcelofeitoza/crowd-estate/internal/projection"
	"github.com/marcelofeitoza/crowd-estate/internal/solana"
)

// DefaultProgramID is the devnet deployment of the crowd-estate program.
const DefaultProgramID = "7JA2mxcVkWwJ6ccfD5rf5K979kSprp1drhG6LcjrwZCf"

// ErrAccountNotFound is returned when a requested account does not exist
// on the ledger.
var ErrAccountNotFound = errors.New("account not found")

// AccountFetcher retrieves crowd-estate accounts from the ledger.
type AccountFetcher interface {
	// FetchProperties retrieves all property accounts.
	FetchProperties(ctx context.Context) ([]domain.Property, error)

	// FetchInvestments retrieves all investment accounts.
	FetchInvestments(ctx context.Context) ([]domain.Investment, error)

	// FetchProperty retrieves one property by PDA. Returns
	// ErrAccountNotFound if it does not exist.
	FetchProperty(ctx context.Context, pda string) (*domain.Property, error)

	// FetchInvestment retrieves one investment by PDA. Returns
	// ErrAccountNotFound if it does not exist.
	FetchInvestment(ctx context.Context, pda string) (*domain.Investment, error)
}

// Client implements AccountFetcher over a Solana RPC client.
type Client struct {
	rpc       solana.RPCClient
	programID string
}

// NewClient creates a ledger accessor for the given program.
func NewClient(rpc solana.RPCClient, programID string) *Client {
	if programID == "" {
		programID = DefaultProgramID
	}
	return &Client{rpc: rpc, programID: programID}
}

// ProgramID returns the program address this client reads.
func (c *Client) ProgramID() string {
	return c.programID
}

// FetchProperties retrieves and decodes all property accounts.
func (c *Client) FetchProperties(ctx context.Context) ([]domain.Property, error) {
	opts := &solana.ProgramAccountsOpts{
		Filters: []solana.AccountFilter{
			{Memcmp: &solana.MemcmpFilter{Offset: 0, Bytes: projection.PropertyDiscriminator()}},
		},
	}

	raw, err := c.rpc.GetProgramAccounts(ctx, c.programID, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch property accounts: %w", err)
	}

	properties := make([]domain.Property, 0, len(raw))
	for _, acc := range raw {
		data, err := base64.StdEncoding.DecodeString(acc.Account.Data)
		if err != nil {
			return nil, fmt.Errorf("decode account %s data: %w", acc.Pubkey, err)
		}
		p, err := projection.DecodeProperty(acc.Pubkey, data)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}

	return properties, nil
}

// FetchInvestments retrieves and decodes all investment accounts.
func (c *Client) FetchInvestments(ctx context.Context) ([]domain.Investment, error) {
	opts := &solana.ProgramAccountsOpts{
		Filters: []solana.AccountFilter{
			{Memcmp: &solana.MemcmpFilter{Offset: 0, Bytes: projection.InvestmentDiscriminator()}},
		},
	}

	raw, err := c.rpc.GetProgramAccounts(ctx, c.programID, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch investment accounts: %w", err)
	}

	investments := make([]domain.Investment, 0, len(raw))
	for _, acc := range raw {
		data, err := base64.StdEncoding.DecodeString(acc.Account.Data)
		if err != nil {
			return nil, fmt.Errorf("decode account %s data: %w", acc.Pubkey, err)
		}
		inv, err := projection.DecodeInvestment(acc.Pubkey, data)
		if err != nil {
			return nil, err
		}
		investments = append(investments, *inv)
	}

	return investments, nil
}

// FetchProperty retrieves one property account by PDA.
func (c *Client) FetchProperty(ctx context.Context, pda string) (*domain.Property, error) {
	info, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("fetch property %s: %w", pda, err)
	}
	if info == nil {
		return nil, fmt.Errorf("property %s: %w", pda, ErrAccountNotFound)
	}

	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode property %s data: %w", pda, err)
	}
	return projection.DecodeProperty(pda, data)
}

// FetchInvestment retrieves one investment account by PDA.
func (c *Client) FetchInvestment(ctx context.Context, pda string) (*domain.Investment, error) {
	info, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("fetch investment %s: %w", pda, err)
	}
	if info == nil {
		return nil, fmt.Errorf("investment %s: %w", pda, ErrAccountNotFound)
	}

	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode investment %s data: %w", pda, err)
	}
	return projection.DecodeInvestment(pda, data)
}

var _ AccountFetcher = (*Client)(nil)
