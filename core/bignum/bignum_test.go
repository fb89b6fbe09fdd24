package bignum

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestMulDivFloor(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c uint64
		want    uint64
		wantErr bool
	}{
		{"basic", 10, 3, 2, 15, false},
		{"floor rounds down", 10, 3, 4, 7, false},
		{"zero denominator", 10, 3, 0, 0, true},
		{"zero numerator", 0, 5, 5, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MulDivFloor(u(tc.a), u(tc.b), u(tc.c))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got.Uint64())
		})
	}
}

func TestMulDivFloorLargeNoOverflow(t *testing.T) {
	max := new(uint256.Int).Not(uint256.NewInt(0)) // 2^256-1
	got, err := MulDivFloor(max, max, max)
	require.NoError(t, err)
	require.Equal(t, max, got)
}

func TestTradeOutputMonotonicInAmountIn(t *testing.T) {
	x, y := u(1_000_000), u(1_000_000)
	prevOut := u(0)
	for _, amt := range []uint64{100, 1_000, 10_000, 100_000} {
		res, err := TradeOutput(x, y, u(amt), 3_000) // 0.3%
		require.NoError(t, err)
		require.True(t, res.AmountOut.Cmp(prevOut) > 0, "amountOut must strictly increase with amountIn")
		prevOut = res.AmountOut
	}
}

func TestTradeOutputZeroFeeRoundTripNoLoss(t *testing.T) {
	x, y := u(1_000_000), u(1_000_000)
	amtIn := u(1_000)
	out1, err := TradeOutput(x, y, amtIn, 0)
	require.NoError(t, err)
	// BT->NT->BT with zero fee and no average-rate update returns exactly
	// amtIn back (up to floor rounding), never more.
	out2, err := TradeOutput(out1.NewY, out1.NewX, out1.AmountOut, 0)
	require.NoError(t, err)
	require.True(t, out2.AmountOut.Cmp(amtIn) <= 0)
	require.True(t, out2.AmountOut.Cmp(new(uint256.Int).Sub(amtIn, u(1))) >= 0, "floor rounding costs at most one unit")
}

func TestTradeOutputWithFeeRoundTripLosesValue(t *testing.T) {
	x, y := u(1_000_000), u(1_000_000)
	amtIn := u(1_000)
	out1, err := TradeOutput(x, y, amtIn, 10_000) // 1%
	require.NoError(t, err)
	out2, err := TradeOutput(out1.NewY, out1.NewX, out1.AmountOut, 10_000)
	require.NoError(t, err)
	require.True(t, out2.AmountOut.Cmp(amtIn) < 0, "round trip with fee must strictly lose value")
}

func TestSolveWithdrawalNoShortfallPreservesPrice(t *testing.T) {
	in := WithdrawalInputs{
		B:                u(500_000),
		N:                u(500_000),
		S:                u(1_000_000),
		PoolTokenSupply:  u(1_000_000),
		PoolTokenAmount:  u(100_000),
		VaultBT:          u(10_000_000),
		ExternalBT:       u(0),
		WithdrawalFeePPM: 0,
		MaxDeviationPPM:  10_000,
	}
	out, err := SolveWithdrawal(in)
	require.NoError(t, err)
	require.Equal(t, uint64(100_000), out.BTFromVault.Uint64())
	require.True(t, out.NTToMintForLP.IsZero())
	require.False(t, out.DisableTrading)
	require.Equal(t, uint64(900_000), out.NewS.Uint64())
}

func TestSolveWithdrawalVaultShortfallMintsNT(t *testing.T) {
	in := WithdrawalInputs{
		B:                u(500_000),
		N:                u(1_000_000),
		S:                u(1_000_000),
		PoolTokenSupply:  u(1_000_000),
		PoolTokenAmount:  u(800_000),
		VaultBT:          u(100_000),
		ExternalBT:       u(50_000),
		WithdrawalFeePPM: 0,
		MaxDeviationPPM:  1_000_000,
	}
	out, err := SolveWithdrawal(in)
	require.NoError(t, err)
	require.Equal(t, uint64(100_000), out.BTFromVault.Uint64())
	require.Equal(t, uint64(50_000), out.BTFromExternal.Uint64())
	require.False(t, out.NTToMintForLP.IsZero(), "remaining shortfall must be minted as NT")
}

func TestSolveWithdrawalWithdrawalFeeDeposit(t *testing.T) {
	// deposit/withdraw symmetry law: depositing x then immediately
	// withdrawing all minted pool tokens returns x*(1-fee), exactly.
	s := u(10_000)
	ptSupply := u(10_000)
	in := WithdrawalInputs{
		B:                u(0),
		N:                u(0),
		S:                s,
		PoolTokenSupply:  ptSupply,
		PoolTokenAmount:  u(10_000),
		VaultBT:          u(10_000),
		ExternalBT:       u(0),
		WithdrawalFeePPM: 5_000, // 0.5%
		MaxDeviationPPM:  10_000,
	}
	out, err := SolveWithdrawal(in)
	require.NoError(t, err)
	require.Equal(t, uint64(50), out.BTFee.Uint64())
	require.Equal(t, uint64(9_950), out.BTFromVault.Uint64())
}
