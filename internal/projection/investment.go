package projection

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
)

// InvestmentAccountName is the Anchor account name for investment
// positions ("Investor" on chain).
const InvestmentAccountName = "Investor"

// InvestmentDiscriminator returns the base58 discriminator prefix used to
// filter investment accounts in getProgramAccounts.
func InvestmentDiscriminator() string {
	return base58.Encode(accountDiscriminator(InvestmentAccountName))
}

// DecodeInvestment maps a raw investment account to its domain projection.
//
// Layout after the discriminator: investor pubkey, property pubkey,
// tokens owned u64, dividends claimed u64 (1e6 USDC).
func DecodeInvestment(pubkey string, data []byte) (*domain.Investment, error) {
	r := &reader{data: data}
	if err := checkDiscriminator(r, InvestmentAccountName); err != nil {
		return nil, fmt.Errorf("investment %s: %w", pubkey, err)
	}

	var (
		inv = domain.Investment{PublicKey: pubkey}
		err error
	)

	if inv.Investor, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("investment %s: investor: %w", pubkey, err)
	}
	if inv.Property, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("investment %s: property: %w", pubkey, err)
	}
	if inv.Amount, err = r.u64(); err != nil {
		return nil, fmt.Errorf("investment %s: amount: %w", pubkey, err)
	}
	claimed, err := r.u64()
	if err != nil {
		return nil, fmt.Errorf("investment %s: dividends claimed: %w", pubkey, err)
	}
	inv.DividendsClaimed = normalizeUSDC(claimed)

	return &inv, nil
}
