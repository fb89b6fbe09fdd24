package core

import "github.com/holiman/uint256"

// ParseUint256 decodes a base-10 integer string, as found in configuration
// files where amounts are too large for any native integer type.
func ParseUint256(s string) (*uint256.Int, bool) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, false
	}
	return v, true
}
