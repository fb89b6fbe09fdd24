// Package pooltoken implements the minimal ERC-20-like share token (spec
// §4.2): one instance per Pool, mint/burn gated to its owning
// PoolCollection or MasterPool. The total-supply-to-staked-balance ratio
// is the LP's unit of account; this package only owns supply and balances.
package pooltoken

import (
	"sync"

	"github.com/holiman/uint256"
	"liquiditynet/core"
)

// PoolToken is a share token unique to one pool. Owner is the single
// PoolCollection or MasterPool allowed to mint/burn it.
type PoolToken struct {
	mu          sync.RWMutex
	name        string
	symbol      string
	totalSupply *uint256.Int
	balances    map[core.Address]*uint256.Int
	owner       core.Address
}

// New creates a pool token owned by owner (the PoolCollection's or
// MasterPool's own address/handle id, used purely to gate Mint/Burn).
func New(name, symbol string, owner core.Address) *PoolToken {
	return &PoolToken{
		name:        name,
		symbol:      symbol,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[core.Address]*uint256.Int),
		owner:       owner,
	}
}

func (t *PoolToken) Name() string   { return t.name }
func (t *PoolToken) Symbol() string { return t.symbol }

// TotalSupply returns the current total supply.
func (t *PoolToken) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(t.totalSupply)
}

// BalanceOf returns addr's balance, zero if never credited.
func (t *PoolToken) BalanceOf(addr core.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.balances[addr]; ok {
		return new(uint256.Int).Set(b)
	}
	return uint256.NewInt(0)
}

// Mint credits amount to to and grows total supply. caller must be the
// token's owning component.
func (t *PoolToken) Mint(caller, to core.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return core.ErrAccessDenied
	}
	if amount.IsZero() {
		return core.ErrZeroValue
	}
	bal := t.balances[to]
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	t.balances[to] = new(uint256.Int).Add(bal, amount)
	t.totalSupply = new(uint256.Int).Add(t.totalSupply, amount)
	return nil
}

// Burn debits amount from from and shrinks total supply.
func (t *PoolToken) Burn(caller, from core.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return core.ErrAccessDenied
	}
	if amount.IsZero() {
		return core.ErrZeroValue
	}
	bal := t.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return core.ErrInvalidToken
	}
	t.balances[from] = new(uint256.Int).Sub(bal, amount)
	t.totalSupply = new(uint256.Int).Sub(t.totalSupply, amount)
	return nil
}

// TransferOwnership reassigns the component allowed to Mint/Burn this
// token, used only by the PoolCollectionUpgrader while moving a pool
// between collections (spec §4.8) — pool-token identity and LP balances
// are otherwise untouched.
func (t *PoolToken) TransferOwnership(caller, newOwner core.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return core.ErrAccessDenied
	}
	t.owner = newOwner
	return nil
}

// Transfer moves amount from from's balance to to; the LP's own
// privilege, not gated to the owner. from is not checked against any
// caller identity.
func (t *PoolToken) Transfer(from, to core.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	bal := t.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return core.ErrInvalidToken
	}
	t.balances[from] = new(uint256.Int).Sub(bal, amount)
	toBal := t.balances[to]
	if toBal == nil {
		toBal = uint256.NewInt(0)
	}
	t.balances[to] = new(uint256.Int).Add(toBal, amount)
	return nil
}
