package core

import "github.com/holiman/uint256"

// Fraction is a num/den pair used for rates: initial_rate, average_rate,
// and virtual rates passed to EnableTrading. Den is never zero for a
// validly constructed Fraction.
type Fraction struct {
	Num *uint256.Int
	Den *uint256.Int
}

// NewFraction builds a Fraction from plain uint64 values, convenient for
// literals in call sites and tests.
func NewFraction(num, den uint64) Fraction {
	return Fraction{Num: uint256.NewInt(num), Den: uint256.NewInt(den)}
}

// IsValid reports whether the fraction has a non-zero denominator.
func (f Fraction) IsValid() bool {
	return f.Den != nil && !f.Den.IsZero()
}

// Clone returns a deep copy so callers never alias a stored Fraction's
// uint256 values.
func (f Fraction) Clone() Fraction {
	return Fraction{Num: new(uint256.Int).Set(f.Num), Den: new(uint256.Int).Set(f.Den)}
}
