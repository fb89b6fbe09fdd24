// Package poolcollection implements the per-curve engine of spec §4.5:
// it owns one Pool record per whitelisted BT and implements create_pool,
// deposit, withdraw, trade, enable_trading, and the migrate_in/migrate_out
// pair the upgrader uses. Generalized from the teacher's
// core/liquidity_pools.go ledger-of-pools idiom (a map keyed by token
// identity, mutated under one component-owned lock) to the bonding-curve
// accounting this spec requires.
package poolcollection

import (
	"github.com/holiman/uint256"
	"liquiditynet/core"
	"liquiditynet/core/pooltoken"
)

// AverageRate is the time-weighted reference rate spec §3 describes,
// sampled periodically rather than blended continuously — see the
// comment on AverageRateUpdateIntervalSeconds in collection.go for why.
type AverageRate struct {
	Rate   core.Fraction
	Time   uint32
	Sampled bool
}

// Pool is one BT's trading-liquidity and staked-balance record (spec §3).
type Pool struct {
	BT                core.Address
	Token             *pooltoken.PoolToken
	TradingFeePPM     uint32
	TradingEnabled    bool
	DepositingEnabled bool

	B *uint256.Int // base_trading_liquidity
	N *uint256.Int // nt_trading_liquidity

	TradingLiquidityProduct *uint256.Int
	StakedBalance           *uint256.Int

	InitialRate  core.Fraction
	DepositLimit *uint256.Int
	AverageRate  AverageRate
}

// Snapshot is an immutable value copy of a Pool's fields, used to verify
// the upgrade-preservation law (spec §8) and by read-only callers that
// must not see the mutable record (Design Notes §9's dump/restore
// primitive for the upgradeability gap).
type Snapshot struct {
	BT                      core.Address
	TokenName, TokenSymbol  string
	TradingFeePPM           uint32
	TradingEnabled          bool
	DepositingEnabled       bool
	B, N                    *uint256.Int
	TradingLiquidityProduct *uint256.Int
	StakedBalance           *uint256.Int
	InitialRate             core.Fraction
	DepositLimit            *uint256.Int
	AverageRate             AverageRate
	PoolTokenTotalSupply    *uint256.Int
}

// Snapshot returns a deep, immutable copy of p's fields.
func (p *Pool) Snapshot() Snapshot {
	return Snapshot{
		BT:                      p.BT,
		TokenName:               p.Token.Name(),
		TokenSymbol:             p.Token.Symbol(),
		TradingFeePPM:           p.TradingFeePPM,
		TradingEnabled:          p.TradingEnabled,
		DepositingEnabled:       p.DepositingEnabled,
		B:                       new(uint256.Int).Set(p.B),
		N:                       new(uint256.Int).Set(p.N),
		TradingLiquidityProduct: new(uint256.Int).Set(p.TradingLiquidityProduct),
		StakedBalance:           new(uint256.Int).Set(p.StakedBalance),
		InitialRate:             p.InitialRate.Clone(),
		DepositLimit:            new(uint256.Int).Set(p.DepositLimit),
		AverageRate:             AverageRate{Rate: p.AverageRate.Rate.Clone(), Time: p.AverageRate.Time, Sampled: p.AverageRate.Sampled},
		PoolTokenTotalSupply:    p.Token.TotalSupply(),
	}
}
