package domain

// Investment is the projection of an on-chain investment account.
// The ledger enforces exactly one live account per (investor, property)
// pair through deterministic address derivation.
type Investment struct {
	PublicKey        string  `json:"publicKey"`        // investment PDA, base58
	Investor         string  `json:"investor"`         // investor public key, base58
	Property         string  `json:"property"`         // property PDA, base58
	Amount           uint64  `json:"amount"`           // tokens owned
	DividendsClaimed float64 `json:"dividendsClaimed"` // decimal USDC, normalized from 1e6 fixed point
}

// Withdrawn reports whether the position has been fully exited. A
// zero-amount account appears transiently between withdrawal and account
// closure; list read paths treat it as absent.
func (i *Investment) Withdrawn() bool {
	return i.Amount == 0
}

// InvestmentSummary is the result of an investor portfolio read: the
// positions plus aggregates recomputed from current property prices.
type InvestmentSummary struct {
	Investments   []Investment `json:"investments"`
	TotalInvested float64      `json:"totalInvested"` // sum of amount * token price
	TotalReturns  float64      `json:"totalReturns"`  // sum of dividends claimed
	Skipped       int          `json:"skipped"`       // positions whose property was not resolvable
}
