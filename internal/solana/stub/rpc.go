// Package stub provides scripted test doubles for the solana package.
package stub

import (
	"context"
	"errors"
	"sync"

	"github.com/marcelofeitoza/crowd-estate/internal/solana"
)

// ErrUnavailable simulates an unreachable RPC endpoint.
var ErrUnavailable = errors.New("rpc unavailable")

// RPCClient implements solana.RPCClient for testing. Accounts are keyed
// by owning program; statuses by signature. Set Err to fail every call.
type RPCClient struct {
	mu sync.Mutex

	ProgramAccounts map[string][]solana.ProgramAccount
	Accounts        map[string]*solana.AccountInfo
	Statuses        map[string]*solana.SignatureStatus
	Slot            int64
	Err             error

	// call counters for asserting fetch behavior
	GetProgramAccountsCalls int
	GetAccountInfoCalls     int
	SendTransactionCalls    int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		ProgramAccounts: make(map[string][]solana.ProgramAccount),
		Accounts:        make(map[string]*solana.AccountInfo),
		Statuses:        make(map[string]*solana.SignatureStatus),
	}
}

// GetProgramAccounts returns the scripted accounts for the program.
// Filters are not interpreted; script only the accounts the filter
// would match.
func (c *RPCClient) GetProgramAccounts(_ context.Context, programID string, _ *solana.ProgramAccountsOpts) ([]solana.ProgramAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetProgramAccountsCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.ProgramAccounts[programID], nil
}

// GetAccountInfo returns a scripted account, or (nil, nil) if absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetAccountInfoCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Accounts[pubkey], nil
}

// SendTransaction records the submission and returns a fixed signature.
func (c *RPCClient) SendTransaction(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SendTransactionCalls++
	if c.Err != nil {
		return "", c.Err
	}
	return "stub-signature", nil
}

// GetSignatureStatuses returns scripted statuses, nil for unknown.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	statuses := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		statuses[i] = c.Statuses[sig]
	}
	return statuses, nil
}

// GetSlot returns the scripted slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Slot, nil
}

var _ solana.RPCClient = (*RPCClient)(nil)
