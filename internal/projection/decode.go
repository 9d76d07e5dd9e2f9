// Package projection converts raw crowd-estate ledger accounts into
// domain records. Decoding is pure: malformed input is an error, never a
// silently zeroed record.
package projection

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrMalformedAccount is returned when account data does not match the
// expected layout.
var ErrMalformedAccount = errors.New("malformed account data")

// usdcScale is the fixed-point scale of on-chain USDC amounts (6 implied
// decimal places).
const usdcScale = 1_000_000

// discriminatorLen is the Anchor account discriminator size.
const discriminatorLen = 8

// accountDiscriminator returns the 8-byte Anchor discriminator for the
// named account type.
func accountDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:discriminatorLen]
}

// reader walks borsh-encoded account data.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedAccount, n, r.pos, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) boolean() (bool, error) {
	b, err := r.u8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid bool byte %d", ErrMalformedAccount, b)
	}
}

func (r *reader) pubkey() (string, error) {
	b, err := r.take(32)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// byteVec reads a borsh Vec<u8>: u32 little-endian length prefix then bytes.
func (r *reader) byteVec() ([]byte, error) {
	b, err := r.take(4)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(b)
	if int(n) > len(r.data)-r.pos {
		return nil, fmt.Errorf("%w: vec length %d exceeds remaining %d bytes", ErrMalformedAccount, n, len(r.data)-r.pos)
	}
	return r.take(int(n))
}

// normalizeUSDC converts a 1e6 fixed-point amount to decimal currency.
func normalizeUSDC(raw uint64) float64 {
	return float64(raw) / usdcScale
}

// decodeText renders a byte field as text, dropping trailing NUL padding
// and surrounding whitespace.
func decodeText(b []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
}

// checkDiscriminator consumes and verifies the account discriminator.
func checkDiscriminator(r *reader, name string) error {
	got, err := r.take(discriminatorLen)
	if err != nil {
		return err
	}
	want := accountDiscriminator(name)
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: not a %s account", ErrMalformedAccount, name)
		}
	}
	return nil
}
