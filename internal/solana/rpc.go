package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface the service depends on.
type RPCClient interface {
	// GetProgramAccounts retrieves all accounts owned by a program,
	// optionally narrowed by memcmp/dataSize filters.
	GetProgramAccounts(ctx context.Context, programID string, opts *ProgramAccountsOpts) ([]ProgramAccount, error)

	// GetAccountInfo retrieves a single account. Returns (nil, nil) if the
	// account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// SendTransaction submits a signed, serialized transaction and returns
	// its signature.
	SendTransaction(ctx context.Context, signedTxBase64 string) (string, error)

	// GetSignatureStatuses retrieves confirmation status for signatures.
	// Result entries are nil for unknown signatures, positionally matching
	// the input slice.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)
}
