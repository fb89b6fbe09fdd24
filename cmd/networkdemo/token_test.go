package main

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"liquiditynet/core"
)

func TestDemoTokenTransferFromRequiresBalance(t *testing.T) {
	tok := newDemoToken()
	var from, to core.Address
	from[0], to[0] = 1, 2

	err := tok.TransferFrom(from, to, uint256.NewInt(10))
	require.ErrorIs(t, err, core.ErrInvalidToken)

	tok.credit(from, uint256.NewInt(10))
	require.NoError(t, tok.TransferFrom(from, to, uint256.NewInt(10)))
	require.Equal(t, uint64(0), tok.BalanceOf(from).Uint64())
	require.Equal(t, uint64(10), tok.BalanceOf(to).Uint64())
}

func TestDemoNTMintAndBurn(t *testing.T) {
	nt := newDemoNT()
	var addr core.Address
	addr[0] = 1

	require.NoError(t, nt.Mint(addr, uint256.NewInt(100)))
	require.Equal(t, uint64(100), nt.BalanceOf(addr).Uint64())
	require.Equal(t, uint64(100), nt.TotalSupply().Uint64())

	require.NoError(t, nt.Burn(addr, uint256.NewInt(40)))
	require.Equal(t, uint64(60), nt.BalanceOf(addr).Uint64())
	require.Equal(t, uint64(60), nt.TotalSupply().Uint64())

	require.ErrorIs(t, nt.Burn(addr, uint256.NewInt(1000)), core.ErrInvalidToken)
}
