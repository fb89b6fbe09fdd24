// Package bignum is the math kernel (spec §4.1): fixed-point arithmetic
// on unsigned 256-bit integers, the constant-product trade formula, and
// the withdrawal-payout solver. No floating point anywhere.
package bignum

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a computation would exceed 2^256-1, or
// when a division by zero is requested.
var ErrOverflow = errors.New("overflow")

const PPM = 1_000_000

// MulDivFloor computes floor(a*b/c) using a 512-bit intermediate product
// so a*b never silently overflows 256 bits, failing with ErrOverflow when
// c is zero or the floor(a*b/c) result itself does not fit in 256 bits.
func MulDivFloor(a, b, c *uint256.Int) (*uint256.Int, error) {
	if c == nil || c.IsZero() {
		return nil, ErrOverflow
	}
	z := new(uint256.Int)
	_, overflow := z.MulDivOverflow(a, b, c)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// mul computes a*b, failing with ErrOverflow if the product does not fit
// in 256 bits. Used for the cross-multiplications the deviation checks
// below use to avoid division.
func mul(a, b *uint256.Int) (*uint256.Int, error) {
	z := new(uint256.Int)
	_, overflow := z.MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// TradeResult is the output of a single constant-product hop (spec
// §4.1): fee accrues to staked balance on the appropriate side, amount
// out is computed net of fee, and new reserves are returned for the
// caller to commit.
type TradeResult struct {
	Fee       *uint256.Int
	AmountOut *uint256.Int
	NewX      *uint256.Int
	NewY      *uint256.Int
}

// TradeOutput implements: fee = mulDivFloor(a, f, PPM); amountOut =
// mulDivFloor(y, a-fee, x+a-fee); newX = x+(a-fee); newY = y-amountOut.
// The fee is deliberately excluded from newX: it is not added to trading
// liquidity on this side of the hop (spec §4.1) — the caller credits it
// to whichever staked balance the hop direction designates instead.
func TradeOutput(x, y, a *uint256.Int, feePPM uint32) (*TradeResult, error) {
	if x.IsZero() || y.IsZero() || a.IsZero() {
		return nil, errors.New("zero reserve or amount")
	}
	fee, err := MulDivFloor(a, uint256.NewInt(uint64(feePPM)), uint256.NewInt(PPM))
	if err != nil {
		return nil, err
	}
	if fee.Cmp(a) > 0 {
		return nil, errors.New("fee exceeds amount")
	}
	aMinusFee := new(uint256.Int).Sub(a, fee)
	denom := new(uint256.Int).Add(x, aMinusFee)
	amountOut, err := MulDivFloor(y, aMinusFee, denom)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(y) >= 0 {
		return nil, errors.New("amount out exceeds reserve")
	}
	newX := new(uint256.Int).Add(x, aMinusFee)
	newY := new(uint256.Int).Sub(y, amountOut)
	return &TradeResult{Fee: fee, AmountOut: amountOut, NewX: newX, NewY: newY}, nil
}

// WithdrawalPayout is the nine-field result of the withdrawal solver
// (spec §4.1).
type WithdrawalPayout struct {
	BTFromVault      *uint256.Int
	BTFromExternal   *uint256.Int
	NTToMintForLP    *uint256.Int
	BTFee            *uint256.Int
	NewB             *uint256.Int
	NewN             *uint256.Int
	NewS             *uint256.Int
	NTToBurnFromPool *uint256.Int
	DisableTrading   bool
}

// WithdrawalInputs bundles the solver's arguments (spec §4.1).
type WithdrawalInputs struct {
	B, N, S          *uint256.Int
	PoolTokenSupply  *uint256.Int
	PoolTokenAmount  *uint256.Int
	VaultBT          *uint256.Int
	ExternalBT       *uint256.Int
	WithdrawalFeePPM uint32
	MaxDeviationPPM  uint32
}

// SolveWithdrawal returns the provider's pro-rata share of staked
// balance s, minus the withdrawal fee, preferring BT from the vault;
// topping up from the external protection vault if the vault is short;
// minting NT to the provider at current spot rate if still short;
// rebalancing (b, n) to preserve the pre-withdraw spot price within
// maxDeviationPPM, or disabling trading if the price cannot be
// preserved (spec §4.1).
func SolveWithdrawal(in WithdrawalInputs) (*WithdrawalPayout, error) {
	if in.PoolTokenSupply.IsZero() {
		return nil, errors.New("zero pool token supply")
	}

	// pro-rata share of staked balance, before fee.
	owedGross, err := MulDivFloor(in.S, in.PoolTokenAmount, in.PoolTokenSupply)
	if err != nil {
		return nil, err
	}
	fee, err := MulDivFloor(owedGross, uint256.NewInt(uint64(in.WithdrawalFeePPM)), uint256.NewInt(PPM))
	if err != nil {
		return nil, err
	}
	owedNet := new(uint256.Int).Sub(owedGross, fee)

	ntBurn, err := MulDivFloor(burnableNT(in), in.PoolTokenAmount, in.PoolTokenSupply)
	if err != nil {
		return nil, err
	}

	payout := &WithdrawalPayout{
		BTFromVault:     uint256.NewInt(0),
		BTFromExternal:  uint256.NewInt(0),
		NTToMintForLP:   uint256.NewInt(0),
		BTFee:           fee,
		NTToBurnFromPool: ntBurn,
	}

	remaining := new(uint256.Int).Set(owedNet)
	if in.VaultBT.Cmp(remaining) >= 0 {
		payout.BTFromVault.Set(remaining)
		remaining.Clear()
	} else {
		payout.BTFromVault.Set(in.VaultBT)
		remaining.Sub(remaining, in.VaultBT)
	}

	if !remaining.IsZero() && !in.ExternalBT.IsZero() {
		if in.ExternalBT.Cmp(remaining) >= 0 {
			payout.BTFromExternal.Set(remaining)
			remaining.Clear()
		} else {
			payout.BTFromExternal.Set(in.ExternalBT)
			remaining.Sub(remaining, in.ExternalBT)
		}
	}

	if !remaining.IsZero() {
		// mint NT to the provider at current spot rate n/b.
		if in.B.IsZero() {
			return nil, errors.New("cannot price NT top-up: empty trading liquidity")
		}
		ntOwed, err := MulDivFloor(remaining, in.N, in.B)
		if err != nil {
			return nil, err
		}
		payout.NTToMintForLP.Set(ntOwed)
	}

	// Rebalance (b, n) to preserve the pre-withdraw price b/n within
	// maxDeviationPPM: shrink both reserves by the BT actually paid out
	// of trading liquidity (owedNet capped at b), proportionally.
	btFromTradingLiquidity := new(uint256.Int).Set(owedNet)
	if btFromTradingLiquidity.Cmp(in.B) > 0 {
		btFromTradingLiquidity.Set(in.B)
	}
	newB := new(uint256.Int).Sub(in.B, btFromTradingLiquidity)
	var newN *uint256.Int
	disable := false
	if in.B.IsZero() || newB.IsZero() {
		newN = new(uint256.Int).Set(in.N)
		if !in.B.IsZero() {
			disable = true
		}
	} else {
		n, err := MulDivFloor(in.N, newB, in.B)
		if err != nil {
			return nil, err
		}
		newN = n
		if !withinDeviation(in.B, in.N, newB, newN, in.MaxDeviationPPM) {
			disable = true
		}
	}
	payout.NewB = newB
	payout.NewN = newN
	payout.NewS = new(uint256.Int).Sub(in.S, owedGross)
	payout.DisableTrading = disable
	return payout, nil
}

func burnableNT(in WithdrawalInputs) *uint256.Int {
	return in.N
}

// withinDeviation reports whether the post-withdraw spot rate newB/newN
// stays within maxDeviationPPM of the pre-withdraw rate b/n. Compares
// cross products to avoid division.
func withinDeviation(b, n, newB, newN *uint256.Int, maxDeviationPPM uint32) bool {
	if n.IsZero() || newN.IsZero() {
		return newB.IsZero() && b.IsZero()
	}
	return ratiosWithinDeviation(b, n, newB, newN, maxDeviationPPM)
}

// SpotWithinDeviation reports whether spot rate x/y is within
// maxDeviationPPM of reference rate refNum/refDen, used by PoolCollection
// trade/deposit checks against the average rate.
func SpotWithinDeviation(x, y, refNum, refDen *uint256.Int, maxDeviationPPM uint32) bool {
	if refDen.IsZero() || y.IsZero() {
		return false
	}
	return ratiosWithinDeviation(x, y, refNum, refDen, maxDeviationPPM)
}

// ratiosWithinDeviation reports whether |p/q - r/s| / (r/s) <= dev/PPM,
// equivalently |p*s - r*q| * PPM <= dev * r * q, computed entirely with
// cross-multiplication to avoid any division before the final compare.
func ratiosWithinDeviation(p, q, r, s *uint256.Int, maxDeviationPPM uint32) bool {
	ps, err := mul(p, s)
	if err != nil {
		return false
	}
	rq, err := mul(r, q)
	if err != nil {
		return false
	}
	var diff uint256.Int
	if ps.Cmp(rq) >= 0 {
		diff.Sub(ps, rq)
	} else {
		diff.Sub(rq, ps)
	}
	if rq.IsZero() {
		return diff.IsZero()
	}
	diffPPM, err := MulDivFloor(&diff, uint256.NewInt(PPM), rq)
	if err != nil {
		return false
	}
	return diffPPM.CmpUint64(uint64(maxDeviationPPM)) <= 0
}
