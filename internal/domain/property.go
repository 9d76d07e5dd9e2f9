package domain

// Property is the projection of an on-chain crowd-estate property account.
// The ledger is the source of truth; this record is a cached read model.
type Property struct {
	PublicKey       string  `json:"publicKey"`        // property PDA, base58
	Name            string  `json:"property_name"`    // decoded from padded bytes
	TotalTokens     uint64  `json:"total_tokens"`     // total token supply
	AvailableTokens uint64  `json:"available_tokens"` // unsold tokens, 0 <= available <= total
	TokenPriceUSDC  float64 `json:"token_price_usdc"` // decimal USDC, normalized from 1e6 fixed point
	TokenSymbol     string  `json:"token_symbol"`
	Admin           string  `json:"admin"` // creator public key, base58
	Mint            string  `json:"mint"`  // property token mint, base58
	Bump            uint8   `json:"bump"`
	DividendsTotal  float64 `json:"dividends_total"` // cumulative dividends distributed, decimal USDC
	IsClosed        bool    `json:"is_closed"`
}

// Open reports whether the property still accepts investment.
func (p *Property) Open() bool {
	return !p.IsClosed
}
