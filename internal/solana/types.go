package solana

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// ProgramAccount is one entry from getProgramAccounts.
type ProgramAccount struct {
	Pubkey  string
	Account AccountInfo
}

// ProgramAccountsOpts defines optional filters for getProgramAccounts.
type ProgramAccountsOpts struct {
	Filters []AccountFilter
}

// AccountFilter narrows getProgramAccounts results. Exactly one of
// DataSize or Memcmp should be set.
type AccountFilter struct {
	DataSize uint64
	Memcmp   *MemcmpFilter
}

// MemcmpFilter matches account data bytes at an offset.
type MemcmpFilter struct {
	Offset uint64
	Bytes  string // base58 encoded
}

// SignatureStatus from getSignatureStatuses.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *int
	ConfirmationStatus string // processed | confirmed | finalized
	Err                interface{}
}

// Confirmed reports whether the transaction reached at least the
// confirmed commitment level.
func (s *SignatureStatus) Confirmed() bool {
	return s != nil && (s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized")
}
