package projection

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/marcelofeitoza/crowd-estate/internal/domain"
)

// PropertyAccountName is the Anchor account name for properties.
const PropertyAccountName = "Property"

// PropertyDiscriminator returns the base58 discriminator prefix used to
// filter property accounts in getProgramAccounts.
func PropertyDiscriminator() string {
	return base58.Encode(accountDiscriminator(PropertyAccountName))
}

// DecodeProperty maps a raw property account to its domain projection.
//
// Layout after the discriminator: admin pubkey, name vec<u8>, total
// tokens u64, available tokens u64, token price u64 (1e6 USDC), mint
// pubkey, symbol vec<u8>, bump u8, dividends total u64 (1e6 USDC),
// is_closed bool. Trailing bytes are account space padding.
func DecodeProperty(pubkey string, data []byte) (*domain.Property, error) {
	r := &reader{data: data}
	if err := checkDiscriminator(r, PropertyAccountName); err != nil {
		return nil, fmt.Errorf("property %s: %w", pubkey, err)
	}

	var (
		p   = domain.Property{PublicKey: pubkey}
		err error
	)

	if p.Admin, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("property %s: admin: %w", pubkey, err)
	}
	name, err := r.byteVec()
	if err != nil {
		return nil, fmt.Errorf("property %s: name: %w", pubkey, err)
	}
	p.Name = decodeText(name)
	if p.TotalTokens, err = r.u64(); err != nil {
		return nil, fmt.Errorf("property %s: total tokens: %w", pubkey, err)
	}
	if p.AvailableTokens, err = r.u64(); err != nil {
		return nil, fmt.Errorf("property %s: available tokens: %w", pubkey, err)
	}
	price, err := r.u64()
	if err != nil {
		return nil, fmt.Errorf("property %s: token price: %w", pubkey, err)
	}
	p.TokenPriceUSDC = normalizeUSDC(price)
	if p.Mint, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("property %s: mint: %w", pubkey, err)
	}
	symbol, err := r.byteVec()
	if err != nil {
		return nil, fmt.Errorf("property %s: symbol: %w", pubkey, err)
	}
	p.TokenSymbol = decodeText(symbol)
	if p.Bump, err = r.u8(); err != nil {
		return nil, fmt.Errorf("property %s: bump: %w", pubkey, err)
	}
	dividends, err := r.u64()
	if err != nil {
		return nil, fmt.Errorf("property %s: dividends: %w", pubkey, err)
	}
	p.DividendsTotal = normalizeUSDC(dividends)
	if p.IsClosed, err = r.boolean(); err != nil {
		return nil, fmt.Errorf("property %s: is_closed: %w", pubkey, err)
	}

	return &p, nil
}
