package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the byte length of an ed25519 public key.
const PublicKeyLength = 32

// ErrInvalidPublicKey is returned for strings that are not a base58
// encoding of 32 bytes.
var ErrInvalidPublicKey = errors.New("invalid public key")

// DecodePublicKey decodes a base58 public key string into its 32 bytes.
func DecodePublicKey(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != PublicKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPublicKey, len(raw))
	}
	return raw, nil
}

// ValidatePublicKey reports whether s is a well-formed account address.
// Both wallet keys and PDAs pass; use IsOnCurve to distinguish.
func ValidatePublicKey(s string) error {
	_, err := DecodePublicKey(s)
	return err
}

// IsOnCurve reports whether the 32 bytes decode to a valid ed25519 curve
// point. Wallet public keys are on the curve; program-derived addresses
// are deliberately off it.
func IsOnCurve(point []byte) bool {
	if len(point) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// FindProgramAddress derives the canonical PDA for the given seeds and
// program, searching bump values downward from 255 until the candidate
// falls off the curve.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	program, err := DecodePublicKey(programID)
	if err != nil {
		return "", 0, fmt.Errorf("program id: %w", err)
	}

	for bump := 255; bump >= 0; bump-- {
		var data []byte
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, byte(bump))
		data = append(data, program...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !IsOnCurve(hash[:]) {
			return base58.Encode(hash[:]), uint8(bump), nil
		}
	}

	return "", 0, errors.New("no viable bump seed found")
}
