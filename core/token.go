package core

import "github.com/holiman/uint256"

// Token is the boundary collaborator spec §6 describes: an ERC-20-style
// asset. The core never restates transfer mechanics; it only consumes
// this interface. NativeTokenSentinel implementations move value via
// value-carrying calls instead of TransferFrom — left to the concrete
// implementation, which the core does not need to know about.
type Token interface {
	Transfer(to Address, amount *uint256.Int) error
	TransferFrom(from, to Address, amount *uint256.Int) error
	BalanceOf(addr Address) *uint256.Int
	TotalSupply() *uint256.Int
	Approve(spender Address, amount *uint256.Int) error
}

// Signature is an ECDSA-style (v, r, s) signature bundle for Permit.
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// Permittable is consumed only by the *_permitted Network entry points.
// PermitUnsupported is returned for the native token and for NT.
type Permittable interface {
	Permit(owner, spender Address, value *uint256.Int, deadline uint32, sig Signature) error
}
