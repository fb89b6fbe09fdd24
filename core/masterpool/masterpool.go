// Package masterpool implements the NT-side accountant of spec §4.6: it
// mirrors PoolCollection's staked-balance bookkeeping for the network
// token itself, mints/burns NT against each BT's funding limit, and
// issues NT pool tokens plus a governance-token wrapper on deposit.
// Generalized from the teacher's core/liquidity_pools.go single-ledger
// idiom to a second, NT-denominated ledger sitting beside every
// PoolCollection's BT ledgers.
package masterpool

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"liquiditynet/core"
	"liquiditynet/core/bignum"
	"liquiditynet/core/pooltoken"
)

// NTToken is the privileged mint/burn capability MasterPool holds over
// the network token — distinct from the generic Token boundary interface
// arbitrary base tokens expose, since NT is "a single protocol-designated
// token" (spec §6/Glossary) that only MasterPool may inflate or retire.
type NTToken interface {
	Mint(to core.Address, amount *uint256.Int) error
	Burn(from core.Address, amount *uint256.Int) error
}

// SettingsHandle is the slice of NetworkSettings a MasterPool reads.
type SettingsHandle interface {
	FundingLimit(bt core.Address) *uint256.Int
	WithdrawalFeePPM() uint32
}

// MasterPool mirrors PoolCollection for the network token (spec §4.6).
type MasterPool struct {
	mu sync.Mutex

	id       core.Address
	access   *core.AccessController
	settings SettingsHandle
	nt       NTToken
	logger   *logrus.Logger

	ntStakedBalance *uint256.Int
	mintedPerPool   map[core.Address]*uint256.Int

	ntPoolToken *pooltoken.PoolToken
	govToken    *pooltoken.PoolToken
}

// New constructs a MasterPool. id identifies it to PoolToken ownership
// checks and as its own caller identity toward NTToken.
func New(id core.Address, access *core.AccessController, settings SettingsHandle, nt NTToken, logger *logrus.Logger) *MasterPool {
	return &MasterPool{
		id:              id,
		access:          access,
		settings:        settings,
		nt:              nt,
		logger:          logger,
		ntStakedBalance: uint256.NewInt(0),
		mintedPerPool:   make(map[core.Address]*uint256.Int),
		ntPoolToken:     pooltoken.New("LiquidityNet NT Pool Token", "lnNTPT", id),
		govToken:        pooltoken.New("LiquidityNet Governance Token", "lnGOV", id),
	}
}

func (mp *MasterPool) requireAuthorized(caller core.Address) error {
	return mp.access.Require(caller, core.RoleNetworkTokenManager)
}

// NTStakedBalance returns the total NT value owed to NT-pool LPs.
func (mp *MasterPool) NTStakedBalance() *uint256.Int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return new(uint256.Int).Set(mp.ntStakedBalance)
}

// MintedForPool returns the NT minted into bt's trading liquidity so far.
func (mp *MasterPool) MintedForPool(bt core.Address) *uint256.Int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if v, ok := mp.mintedPerPool[bt]; ok {
		return new(uint256.Int).Set(v)
	}
	return uint256.NewInt(0)
}

// RequestLiquidity mints up to funding_limit[bt] - minted_per_pool[bt] NT
// and records it, returning the amount actually granted (which may be
// less than requested, or zero, if the funding limit is already
// exhausted — callers never receive an error for a capped grant, only
// for an access-control failure). Called directly by a PoolCollection as
// part of Deposit's trading-liquidity top-up (spec §4.5, §4.6); both
// collections and the Network hold ROLE_NETWORK_TOKEN_MANAGER for this
// purpose (Design Notes §9 generalizes the role to every trusted caller,
// not the Network alone).
func (mp *MasterPool) RequestLiquidity(caller, bt core.Address, amount *uint256.Int) (*uint256.Int, error) {
	if err := mp.requireAuthorized(caller); err != nil {
		return nil, err
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	limit := mp.settings.FundingLimit(bt)
	minted := mp.mintedPerPool[bt]
	if minted == nil {
		minted = uint256.NewInt(0)
	}
	if minted.Cmp(limit) >= 0 {
		return uint256.NewInt(0), nil
	}
	headroom := new(uint256.Int).Sub(limit, minted)
	granted := new(uint256.Int).Set(amount)
	if granted.Cmp(headroom) > 0 {
		granted = headroom
	}
	if granted.IsZero() {
		return granted, nil
	}
	if err := mp.nt.Mint(core.AddressZero, granted); err != nil {
		return nil, err
	}
	mp.mintedPerPool[bt] = new(uint256.Int).Add(minted, granted)
	return granted, nil
}

// RenounceLiquidity burns back NT previously granted via RequestLiquidity
// and decrements the per-pool counter.
func (mp *MasterPool) RenounceLiquidity(caller, bt core.Address, amount *uint256.Int) error {
	if err := mp.requireAuthorized(caller); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	minted := mp.mintedPerPool[bt]
	if minted == nil || minted.Cmp(amount) < 0 {
		return core.ErrInvalidToken
	}
	if err := mp.nt.Burn(core.AddressZero, amount); err != nil {
		return err
	}
	mp.mintedPerPool[bt] = new(uint256.Int).Sub(minted, amount)
	return nil
}

// CreditTradingFee adds amount directly to nt_staked_balance: the share
// of a BT→NT trade's fee the spec routes to MasterPool (spec §4.1).
func (mp *MasterPool) CreditTradingFee(caller core.Address, amount *uint256.Int) error {
	if err := mp.requireAuthorized(caller); err != nil {
		return err
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.ntStakedBalance = new(uint256.Int).Add(mp.ntStakedBalance, amount)
	return nil
}

// Deposit burns ntAmount from provider, mints NT pool tokens pro-rata
// against nt_staked_balance, and mints an equal amount of the governance
// token (spec §4.6).
func (mp *MasterPool) Deposit(caller, provider core.Address, ntAmount *uint256.Int) (*uint256.Int, error) {
	if err := mp.requireAuthorized(caller); err != nil {
		return nil, err
	}
	if ntAmount.IsZero() {
		return nil, core.ErrZeroValue
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	supply := mp.ntPoolToken.TotalSupply()
	var ptAmount *uint256.Int
	if mp.ntStakedBalance.IsZero() {
		ptAmount = new(uint256.Int).Set(ntAmount)
	} else {
		v, err := bignum.MulDivFloor(ntAmount, supply, mp.ntStakedBalance)
		if err != nil {
			return nil, err
		}
		ptAmount = v
	}

	if err := mp.nt.Burn(provider, ntAmount); err != nil {
		return nil, err
	}
	mp.ntStakedBalance = new(uint256.Int).Add(mp.ntStakedBalance, ntAmount)
	if err := mp.ntPoolToken.Mint(mp.id, provider, ptAmount); err != nil {
		return nil, err
	}
	if err := mp.govToken.Mint(mp.id, provider, ptAmount); err != nil {
		return nil, err
	}
	return ptAmount, nil
}

// Withdraw burns ptAmount NT pool tokens (and the matching governance
// tokens) from provider, and mints back their pro-rata share of
// nt_staked_balance net of withdrawal_fee_ppm (spec §4.6, the inverse of
// Deposit). Equivalent to WithdrawTo(caller, provider, provider, ptAmount).
func (mp *MasterPool) Withdraw(caller, provider core.Address, ptAmount *uint256.Int) (*uint256.Int, error) {
	return mp.WithdrawTo(caller, provider, provider, ptAmount)
}

// WithdrawTo is the general form Withdraw specializes: it burns ptAmount
// from tokenHolder's NT-pool-token (and governance-token) balance but
// pays the net NT proceeds to recipient. The Network facade uses this
// split during two-phase withdrawal completion, where the pool tokens
// were locked into the Network's own custody at init time but the
// payout is still owed to the original provider.
func (mp *MasterPool) WithdrawTo(caller, tokenHolder, recipient core.Address, ptAmount *uint256.Int) (*uint256.Int, error) {
	if err := mp.requireAuthorized(caller); err != nil {
		return nil, err
	}
	if ptAmount.IsZero() {
		return nil, core.ErrZeroValue
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	supply := mp.ntPoolToken.TotalSupply()
	if supply.IsZero() {
		return nil, core.ErrInvalidToken
	}
	owedGross, err := bignum.MulDivFloor(mp.ntStakedBalance, ptAmount, supply)
	if err != nil {
		return nil, err
	}
	fee, err := bignum.MulDivFloor(owedGross, uint256.NewInt(uint64(mp.settings.WithdrawalFeePPM())), uint256.NewInt(bignum.PPM))
	if err != nil {
		return nil, err
	}
	owedNet := new(uint256.Int).Sub(owedGross, fee)

	if err := mp.ntPoolToken.Burn(mp.id, tokenHolder, ptAmount); err != nil {
		return nil, err
	}
	if err := mp.govToken.Burn(mp.id, tokenHolder, ptAmount); err != nil {
		return nil, err
	}
	mp.ntStakedBalance = new(uint256.Int).Sub(mp.ntStakedBalance, owedGross)
	if err := mp.nt.Mint(recipient, owedNet); err != nil {
		return nil, err
	}
	return owedNet, nil
}

// CompensateWithdrawal mints amount of NT directly to recipient without
// touching nt_staked_balance or NT-pool-token supply: the impermanent-
// loss compensation leg of a BT withdrawal payout (spec §4.1's solver
// field nt_to_mint_for_provider), executed by the Network facade after
// PoolCollection.Withdraw returns a payout calling for it.
func (mp *MasterPool) CompensateWithdrawal(caller, recipient core.Address, amount *uint256.Int) error {
	if err := mp.requireAuthorized(caller); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	return mp.nt.Mint(recipient, amount)
}

// PoolToken returns the NT pool token, used by the Network facade to
// lock/unlock NT-pool-token custody across the two-phase withdrawal
// lifecycle the same way it does for BT pools.
func (mp *MasterPool) PoolToken() *pooltoken.PoolToken { return mp.ntPoolToken }

// GovToken returns the governance-token wrapper minted 1:1 alongside the
// NT pool token on Deposit.
func (mp *MasterPool) GovToken() *pooltoken.PoolToken { return mp.govToken }

// Identity returns the address MasterPool uses as its PoolToken owner
// and its own collaborator-facing caller id.
func (mp *MasterPool) Identity() core.Address { return mp.id }
