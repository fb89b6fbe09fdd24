package poolcollection

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"liquiditynet/core"
	"liquiditynet/core/bignum"
	"liquiditynet/core/pooltoken"
)

// AverageRateUpdateIntervalSeconds bounds how often the average rate is
// re-sampled from spot. Trading's deviation check (spec §3 invariant 3)
// compares the current spot against the last sample, not a continuous
// blend — a sampled reference rate is simpler to reason about than a
// weighted EMA over fractions with differing denominators and is what
// this package implements; Trade re-samples it after each committed hop.
const AverageRateUpdateIntervalSeconds = 300

// DefaultTradingFeePPM seeds every newly created pool; admins adjust it
// per pool afterward (not modeled here — the spec names no such setter,
// so trading_fee_ppm is fixed at creation for this implementation).
const DefaultTradingFeePPM = 2_000

// SettingsHandle is the slice of NetworkSettings (spec §4.4) a
// PoolCollection reads.
type SettingsHandle interface {
	IsWhitelisted(bt core.Address) bool
	FundingLimit(bt core.Address) *uint256.Int
	MinLiquidityForTrading() *uint256.Int
	AvgRateMaxDeviationPPM() uint32
	WithdrawalFeePPM() uint32
}

// VaultHandle is the read-only slice of vault.Vault a PoolCollection
// needs to solve a withdrawal; the actual fund movement is executed by
// the Network facade after Withdraw returns a payout (spec §4.5: "instruct
// Network to move funds via the vaults").
type VaultHandle interface {
	BalanceOf(token core.Address) *uint256.Int
}

// MasterPoolHandle is the slice of MasterPool (spec §4.6) a
// PoolCollection calls directly, for the deposit-time NT top-up and for
// crediting BT→NT hop fees.
type MasterPoolHandle interface {
	RequestLiquidity(caller, bt core.Address, amount *uint256.Int) (*uint256.Int, error)
	RenounceLiquidity(caller, bt core.Address, amount *uint256.Int) error
	CreditTradingFee(caller core.Address, amount *uint256.Int) error
}

// PoolCollection owns every Pool keyed by BT address (spec §4.5).
type PoolCollection struct {
	mu sync.RWMutex

	id       core.Address // used as the PoolToken owner and as masterPool/vault caller identity
	poolType uint16

	access     *core.AccessController
	settings   SettingsHandle
	vault      VaultHandle
	external   VaultHandle
	masterPool MasterPoolHandle
	clock      core.Clock
	nt         core.Address
	logger     *logrus.Logger

	pools map[core.Address]*Pool
}

// New constructs a PoolCollection. id identifies this collection instance
// to its collaborators (PoolToken ownership, vault/masterPool role
// checks); nt is the network-token address used to determine trade
// direction.
func New(id core.Address, poolType uint16, nt core.Address, access *core.AccessController, settings SettingsHandle, vault, external VaultHandle, masterPool MasterPoolHandle, clock core.Clock, logger *logrus.Logger) *PoolCollection {
	return &PoolCollection{
		id:         id,
		poolType:   poolType,
		nt:         nt,
		access:     access,
		settings:   settings,
		vault:      vault,
		external:   external,
		masterPool: masterPool,
		clock:      clock,
		logger:     logger,
		pools:      make(map[core.Address]*Pool),
	}
}

// PoolType reports the tag distinguishing pool engine generations
// (Design Notes §9), consumed by the Upgrader to find the latest
// registered collection of the same type as a pool's migration target.
func (pc *PoolCollection) PoolType() uint16 { return pc.poolType }

// Identity returns the address this collection uses as its PoolToken
// ownership and collaborator-facing caller id, needed by the Upgrader to
// hand pool-token ownership to a migration destination.
func (pc *PoolCollection) Identity() core.Address { return pc.id }

func unboundedLimit() *uint256.Int {
	max := new(uint256.Int)
	return max.Not(max) // all-ones: 2^256-1
}

// CreatePool fails NotWhitelisted if bt isn't whitelisted, AlreadyExists
// if a pool for bt is already defined; otherwise creates it with a fresh
// PoolToken, default fee, depositing enabled, trading disabled, zero
// liquidity (spec §4.5).
func (pc *PoolCollection) CreatePool(caller, bt core.Address, initialRate core.Fraction) error {
	if err := pc.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return err
	}
	if !pc.settings.IsWhitelisted(bt) {
		return core.ErrNotWhitelisted
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if _, exists := pc.pools[bt]; exists {
		return core.ErrAlreadyExists
	}
	pc.pools[bt] = &Pool{
		BT:                      bt,
		Token:                   pooltoken.New("LiquidityNet Pool Token "+bt.Hex(), "lnPT", pc.id),
		TradingFeePPM:           DefaultTradingFeePPM,
		TradingEnabled:          false,
		DepositingEnabled:       true,
		B:                       uint256.NewInt(0),
		N:                       uint256.NewInt(0),
		TradingLiquidityProduct: uint256.NewInt(0),
		StakedBalance:           uint256.NewInt(0),
		InitialRate:             initialRate.Clone(),
		DepositLimit:            unboundedLimit(),
		AverageRate:             AverageRate{Rate: core.NewFraction(0, 1), Time: 0},
	}
	return nil
}

// SetDepositLimit is an administrative setter for Pool.DepositLimit; the
// spec names the field as part of invariant 1 but assigns no explicit
// operation, so this package exposes the minimal setter an admin needs.
func (pc *PoolCollection) SetDepositLimit(caller, bt core.Address, limit *uint256.Int) error {
	if err := pc.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return err
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pool, ok := pc.pools[bt]
	if !ok {
		return core.ErrInvalidPool
	}
	pool.DepositLimit = new(uint256.Int).Set(limit)
	return nil
}

// Pool returns a snapshot of bt's pool, or an error if none exists.
func (pc *PoolCollection) Pool(bt core.Address) (Snapshot, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	pool, ok := pc.pools[bt]
	if !ok {
		return Snapshot{}, core.ErrInvalidPool
	}
	return pool.Snapshot(), nil
}

// PoolToken returns bt's pool token, used by the Network facade to lock
// LP shares into custody at withdrawal-init time and return them on
// cancellation, the same Transfer privilege any LP holds.
func (pc *PoolCollection) PoolToken(bt core.Address) (*pooltoken.PoolToken, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	pool, ok := pc.pools[bt]
	if !ok {
		return nil, core.ErrInvalidPool
	}
	return pool.Token, nil
}

// CreditFlashLoanFee adds amount directly to bt's staked balance: the
// flash-loan fee credit spec §4.9's protocol step 6 calls for when the
// borrowed token is a BT rather than NT.
func (pc *PoolCollection) CreditFlashLoanFee(caller, bt core.Address, amount *uint256.Int) error {
	if err := pc.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pool, ok := pc.pools[bt]
	if !ok {
		return core.ErrInvalidPool
	}
	pool.StakedBalance = new(uint256.Int).Add(pool.StakedBalance, amount)
	return nil
}

// DepositResult is the outcome of Deposit.
type DepositResult struct {
	PoolTokenAmount *uint256.Int
	ToppedUp        bool
	NTRequested     *uint256.Int
}

// Deposit credits amount BT to bt's staked balance and mints pool tokens
// to provider pro-rata. If the pool is trading and a proportional NT
// top-up keeps the spot rate within the deviation bound, requests that
// NT from MasterPool; otherwise the top-up is skipped and trading is
// never disabled as a side effect of a deposit (Open Question 2, spec
// §9: "this spec prescribes skip top-up and leave trading enabled").
func (pc *PoolCollection) Deposit(caller, provider, bt core.Address, amount *uint256.Int) (*DepositResult, error) {
	if err := pc.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, core.ErrZeroValue
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pool, ok := pc.pools[bt]
	if !ok {
		return nil, core.ErrInvalidPool
	}
	if !pool.DepositingEnabled {
		return nil, core.ErrDepositingDisabled
	}
	newS := new(uint256.Int).Add(pool.StakedBalance, amount)
	if newS.Cmp(pool.DepositLimit) > 0 {
		return nil, core.ErrDepositLimitExceeded
	}

	supply := pool.Token.TotalSupply()
	var poolTokenAmount *uint256.Int
	if supply.IsZero() {
		poolTokenAmount = new(uint256.Int).Set(amount)
	} else {
		pta, err := bignum.MulDivFloor(amount, supply, pool.StakedBalance)
		if err != nil {
			return nil, err
		}
		poolTokenAmount = pta
	}

	result := &DepositResult{PoolTokenAmount: poolTokenAmount, NTRequested: uint256.NewInt(0)}

	var newB, newN *uint256.Int
	toppedUp := false
	if pool.TradingEnabled && !pool.B.IsZero() {
		ntToAdd, err := bignum.MulDivFloor(amount, pool.N, pool.B)
		if err == nil && !ntToAdd.IsZero() {
			// funding-limit headroom is enforced inside MasterPool itself.
			granted, reqErr := pc.masterPool.RequestLiquidity(pc.id, bt, ntToAdd)
			if reqErr == nil && granted.Cmp(ntToAdd) == 0 {
				trialB := new(uint256.Int).Add(pool.B, amount)
				trialN := new(uint256.Int).Add(pool.N, granted)
				if !pool.AverageRate.Sampled || bignum.SpotWithinDeviation(trialB, trialN, pool.AverageRate.Rate.Num, pool.AverageRate.Rate.Den, pc.settings.AvgRateMaxDeviationPPM()) {
					newB, newN = trialB, trialN
					toppedUp = true
					result.NTRequested = granted
				} else if rerr := pc.masterPool.RenounceLiquidity(pc.id, bt, granted); rerr != nil {
					return nil, rerr
				}
			} else if granted != nil && !granted.IsZero() {
				if rerr := pc.masterPool.RenounceLiquidity(pc.id, bt, granted); rerr != nil {
					return nil, rerr
				}
			}
		}
	}

	pool.StakedBalance = newS
	if err := pool.Token.Mint(pc.id, provider, poolTokenAmount); err != nil {
		return nil, err
	}
	if toppedUp {
		pool.B = newB
		pool.N = newN
		pool.TradingLiquidityProduct = new(uint256.Int).Mul(newB, newN)
	}
	result.ToppedUp = toppedUp
	return result, nil
}

// Withdraw burns poolTokenAmount from provider's balance, runs the
// withdrawal solver, and updates (b, n, s). It does not itself move
// vault funds or mint NT — the Network facade executes the returned
// payout (spec §4.5).
func (pc *PoolCollection) Withdraw(caller, provider, bt core.Address, poolTokenAmount *uint256.Int) (*bignum.WithdrawalPayout, error) {
	if err := pc.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return nil, err
	}
	if poolTokenAmount.IsZero() {
		return nil, core.ErrZeroValue
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pool, ok := pc.pools[bt]
	if !ok {
		return nil, core.ErrInvalidPool
	}
	supply := pool.Token.TotalSupply()
	if poolTokenAmount.Cmp(pool.Token.BalanceOf(provider)) > 0 {
		return nil, core.ErrInvalidToken
	}

	payout, err := bignum.SolveWithdrawal(bignum.WithdrawalInputs{
		B:                pool.B,
		N:                pool.N,
		S:                pool.StakedBalance,
		PoolTokenSupply:  supply,
		PoolTokenAmount:  poolTokenAmount,
		VaultBT:          pc.vault.BalanceOf(bt),
		ExternalBT:       pc.external.BalanceOf(bt),
		WithdrawalFeePPM: pc.settings.WithdrawalFeePPM(),
		MaxDeviationPPM:  pc.settings.AvgRateMaxDeviationPPM(),
	})
	if err != nil {
		return nil, err
	}

	if err := pool.Token.Burn(pc.id, provider, poolTokenAmount); err != nil {
		return nil, err
	}
	pool.B = payout.NewB
	pool.N = payout.NewN
	pool.StakedBalance = payout.NewS
	pool.TradingLiquidityProduct = new(uint256.Int).Mul(payout.NewB, payout.NewN)
	if payout.DisableTrading {
		pool.TradingEnabled = false
	}
	return payout, nil
}

// TradeResult is the outcome of Trade.
type TradeResult struct {
	AmountOut *uint256.Int
	Fee       *uint256.Int
	NewB      *uint256.Int
	NewN      *uint256.Int
}

// Trade executes one constant-product hop through bt's pool. Exactly one
// of source/target must be the network token. Fails TradingDisabled,
// ReturnAmountTooLow, or RateUnstable; all three are checked against a
// trial post-state before any field is mutated (spec §7's "commit
// nothing on error").
//
// Fee routing: the spec states the fee "accrues to the BT pool's staked
// balance when the hop moves NT→BT, to MasterPool when the hop moves
// BT→NT" (§4.1), but the fee is computed in the amount-in token's
// denomination. This implementation converts it to the destination's
// denomination at the post-trade spot rate before crediting — an
// explicit interpretation, not literally spelled out by the spec.
func (pc *PoolCollection) Trade(caller, source, target, bt core.Address, amountIn, minOut *uint256.Int) (*TradeResult, error) {
	if err := pc.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return nil, err
	}
	ntIsSource := source == pc.nt
	ntIsTarget := target == pc.nt
	if ntIsSource == ntIsTarget {
		return nil, core.ErrInvalidType
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	pool, ok := pc.pools[bt]
	if !ok {
		return nil, core.ErrInvalidPool
	}
	if !pool.TradingEnabled {
		return nil, core.ErrTradingDisabled
	}

	var x, y *uint256.Int
	if ntIsSource {
		x, y = pool.N, pool.B
	} else {
		x, y = pool.B, pool.N
	}
	out, err := bignum.TradeOutput(x, y, amountIn, pool.TradingFeePPM)
	if err != nil {
		return nil, err
	}
	if out.AmountOut.Cmp(minOut) < 0 {
		return nil, core.ErrReturnAmountTooLow
	}

	var newB, newN *uint256.Int
	if ntIsSource {
		newN, newB = out.NewX, out.NewY
	} else {
		newB, newN = out.NewX, out.NewY
	}

	if pool.AverageRate.Sampled {
		stable := bignum.SpotWithinDeviation(newB, newN, pool.AverageRate.Rate.Num, pool.AverageRate.Rate.Den, pc.settings.AvgRateMaxDeviationPPM())
		if !stable {
			return nil, core.ErrRateUnstable
		}
	}

	// credit the fee, converted to the crediting side's denomination at
	// the post-trade spot rate.
	if ntIsSource {
		// NT→BT hop: fee is NT-denominated; convert to BT and add to s.
		feeBT, cerr := bignum.MulDivFloor(out.Fee, newB, newN)
		if cerr != nil {
			return nil, cerr
		}
		pool.StakedBalance = new(uint256.Int).Add(pool.StakedBalance, feeBT)
	} else {
		// BT→NT hop: fee is BT-denominated; convert to NT and credit MasterPool.
		feeNT, cerr := bignum.MulDivFloor(out.Fee, newN, newB)
		if cerr != nil {
			return nil, cerr
		}
		if !feeNT.IsZero() {
			if err := pc.masterPool.CreditTradingFee(pc.id, feeNT); err != nil {
				return nil, err
			}
		}
	}

	pool.B = newB
	pool.N = newN
	pool.TradingLiquidityProduct = new(uint256.Int).Mul(newB, newN)

	if !pool.AverageRate.Sampled || pc.clock.NowUnix()-pool.AverageRate.Time >= AverageRateUpdateIntervalSeconds {
		pool.AverageRate = AverageRate{Rate: core.Fraction{Num: new(uint256.Int).Set(newB), Den: new(uint256.Int).Set(newN)}, Time: pc.clock.NowUnix(), Sampled: true}
	}

	if newN.Cmp(pc.settings.MinLiquidityForTrading()) < 0 {
		pool.TradingEnabled = false
	}

	return &TradeResult{AmountOut: out.AmountOut, Fee: out.Fee, NewB: newB, NewN: newN}, nil
}

// EnableTrading initializes (b, n) at the given virtual rate seeded off
// the minimum-liquidity floor, and enables trading (spec §4.5). Fails
// AlreadyExists if trading is already enabled.
func (pc *PoolCollection) EnableTrading(caller, bt core.Address, bntVirtualRate, tknVirtualRate core.Fraction) error {
	if err := pc.access.Require(caller, core.RolePoolCollectionManager); err != nil {
		return err
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pool, ok := pc.pools[bt]
	if !ok {
		return core.ErrInvalidPool
	}
	if pool.TradingEnabled {
		return core.ErrAlreadyExists
	}

	n := pc.settings.MinLiquidityForTrading()
	if n.IsZero() {
		return core.ErrZeroValue
	}
	step, err := bignum.MulDivFloor(n, tknVirtualRate.Num, bntVirtualRate.Num)
	if err != nil {
		return err
	}
	b, err := bignum.MulDivFloor(step, bntVirtualRate.Den, tknVirtualRate.Den)
	if err != nil {
		return err
	}

	pool.B = b
	pool.N = n
	pool.TradingLiquidityProduct = new(uint256.Int).Mul(b, n)
	pool.TradingEnabled = true
	pool.AverageRate = AverageRate{Rate: core.Fraction{Num: new(uint256.Int).Set(b), Den: new(uint256.Int).Set(n)}, Time: pc.clock.NowUnix(), Sampled: true}
	return nil
}

// MigrateOut removes bt's pool from this collection and transfers its
// PoolToken's owner to newOwner (the destination collection's identity),
// so pool-token identity and LP balances survive the move unchanged
// (spec §4.8, §8's upgrade-preservation law). Used only by the Upgrader.
func (pc *PoolCollection) MigrateOut(caller, bt, newOwner core.Address) (*Pool, error) {
	if err := pc.access.Require(caller, core.RoleMigrationManager); err != nil {
		return nil, err
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pool, ok := pc.pools[bt]
	if !ok {
		return nil, core.ErrInvalidPool
	}
	if err := pool.Token.TransferOwnership(pc.id, newOwner); err != nil {
		return nil, err
	}
	delete(pc.pools, bt)
	return pool, nil
}

// MigrateIn inserts a pool moved from another collection via MigrateOut.
func (pc *PoolCollection) MigrateIn(caller core.Address, pool *Pool) error {
	if err := pc.access.Require(caller, core.RoleMigrationManager); err != nil {
		return err
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if _, exists := pc.pools[pool.BT]; exists {
		return core.ErrAlreadyExists
	}
	pc.pools[pool.BT] = pool
	return nil
}

// Count returns the number of pools this collection owns, used by
// network.Registry.RemoveCollection (Open Question 1: a collection may
// only be removed once empty).
func (pc *PoolCollection) Count() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.pools)
}
