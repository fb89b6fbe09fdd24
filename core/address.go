// Package core holds the primitives shared by every liquidity-network
// component: addresses, tagged errors, fractions, events, clocks, and
// role-based access control.
package core

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 20-byte account or token identifier.
type Address [20]byte

// AddressZero is the sentinel for "no address" / burn target.
var AddressZero = Address{}

// NativeTokenSentinel represents the host chain's native token, which is
// moved with value-carrying calls instead of TransferFrom.
var NativeTokenSentinel = Address{
	0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE,
	0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE, 0xEE,
}

// Hex returns the 0x-prefixed lowercase hex encoding of the address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string { return a.Hex() }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == AddressZero }

// IsNative reports whether a is the native-token sentinel.
func (a Address) IsNative() bool { return a == NativeTokenSentinel }

// ParseAddress decodes a 0x-prefixed 20-byte hex string, as found in
// configuration files and CLI arguments.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("parse address %q: %w", s, err)
	}
	if len(b) != len(a) {
		return a, fmt.Errorf("parse address %q: want %d bytes, got %d", s, len(a), len(b))
	}
	copy(a[:], b)
	return a, nil
}
