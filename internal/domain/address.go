package domain

import (
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// Address is a canonical Algorand account address.
// The zero value is the empty address and is never valid on the ledger.
type Address string

// ParseAddress validates and normalizes an address string.
// Surrounding whitespace is trimmed; the checksum is verified.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("address is required")
	}

	decoded, err := types.DecodeAddress(s)
	if err != nil {
		return "", fmt.Errorf("invalid Algorand address: %w", err)
	}

	return Address(decoded.String()), nil
}

// AddressFromBytes builds an address from a 32-byte public key
func AddressFromBytes(pk []byte) (Address, error) {
	if len(pk) != len(types.Address{}) {
		return "", fmt.Errorf("invalid public key length: %d", len(pk))
	}

	var a types.Address
	copy(a[:], pk)
	return Address(a.String()), nil
}

// MustParseAddress is like ParseAddress but panics on error. Intended for tests and constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the base32 form of the address
func (a Address) String() string {
	return string(a)
}

// Bytes returns the 32-byte public key, or nil if the address is malformed
func (a Address) Bytes() []byte {
	decoded, err := types.DecodeAddress(string(a))
	if err != nil {
		return nil
	}
	return decoded[:]
}

// IsZero reports whether the address is empty
func (a Address) IsZero() bool {
	return a == ""
}

// Valid reports whether the address decodes with a correct checksum
func (a Address) Valid() bool {
	_, err := types.DecodeAddress(string(a))
	return err == nil
}

// Keypair is a freshly generated account. Secret is the 25-word mnemonic.
type Keypair struct {
	Address Address
	Secret  string
}
