package program

import (
	"fmt"

	"github.com/marcelofeitoza/crowd-estate/internal/solana"
)

// PDA seed prefixes used by the on-chain program.
const (
	propertySeed   = "property"
	investmentSeed = "investment"
)

// PropertyPDA derives the canonical property address for an admin and
// property name.
func (c *Client) PropertyPDA(admin, name string) (string, uint8, error) {
	adminBytes, err := solana.DecodePublicKey(admin)
	if err != nil {
		return "", 0, fmt.Errorf("admin key: %w", err)
	}
	return solana.FindProgramAddress(
		[][]byte{[]byte(propertySeed), adminBytes, []byte(name)},
		c.programID,
	)
}

// InvestmentPDA derives the canonical investment address for an investor
// and property. The ledger guarantees at most one investment account per
// pair through this derivation.
func (c *Client) InvestmentPDA(investor, property string) (string, uint8, error) {
	investorBytes, err := solana.DecodePublicKey(investor)
	if err != nil {
		return "", 0, fmt.Errorf("investor key: %w", err)
	}
	propertyBytes, err := solana.DecodePublicKey(property)
	if err != nil {
		return "", 0, fmt.Errorf("property key: %w", err)
	}
	return solana.FindProgramAddress(
		[][]byte{[]byte(investmentSeed), investorBytes, propertyBytes},
		c.programID,
	)
}
