// Package vault implements the three typed custodians of spec §4.3:
// MasterVault (BT + NT trading funds), ExternalProtectionVault (emergency
// BT reserve), and a governance-token vault. All three share one
// implementation: deposit/withdraw over a per-token internal ledger,
// gated by ROLE_ASSET_MANAGER, pausable (withdraw only — deposits always
// permitted). Adapted from the teacher's Pause/Resume/IsPaused idiom in
// loanpool_management.go, generalized from a single boolean flag to a
// role-gated asset custodian.
package vault

import (
	"sync"

	"github.com/holiman/uint256"
	"liquiditynet/core"
)

// Kind tags which of the three vault roles an instance plays, purely for
// logging/event labeling; behavior is identical across kinds.
type Kind string

const (
	KindMaster             Kind = "master"
	KindExternalProtection Kind = "external_protection"
	KindGovernance         Kind = "governance"
)

// Vault is a typed custodian of token balances. It does not itself move
// tokens on behalf of itself and counterparties indefinitely — deposit
// credits the vault's internal balance (the caller is assumed to have
// already transferred funds in, or the native token's value-carrying
// call already landed); withdraw both debits the internal balance and
// calls Token.Transfer to move funds out.
type Vault struct {
	mu      sync.Mutex
	kind    Kind
	access  *core.AccessController
	balance map[core.Address]*uint256.Int // token -> balance
	paused  bool
}

func New(kind Kind, access *core.AccessController) *Vault {
	return &Vault{
		kind:    kind,
		access:  access,
		balance: make(map[core.Address]*uint256.Int),
	}
}

func (v *Vault) Kind() Kind { return v.kind }

// BalanceOf returns the vault's recorded balance of token.
func (v *Vault) BalanceOf(token core.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if b, ok := v.balance[token]; ok {
		return new(uint256.Int).Set(b)
	}
	return uint256.NewInt(0)
}

// Deposit credits amount of token to the vault. Deposits remain
// permitted even while the vault is paused (spec §4.3, §5).
func (v *Vault) Deposit(token core.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return core.ErrZeroValue
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	bal := v.balance[token]
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	v.balance[token] = new(uint256.Int).Add(bal, amount)
	return nil
}

// Withdraw moves amount of token to recipient. Requires the caller to
// hold ROLE_ASSET_MANAGER and fails with ErrPaused if the vault is
// paused, regardless of role.
func (v *Vault) Withdraw(caller core.Address, tok core.Token, token core.Address, recipient core.Address, amount *uint256.Int) error {
	if err := v.access.Require(caller, core.RoleAssetManager); err != nil {
		return err
	}
	if amount.IsZero() {
		return core.ErrZeroValue
	}
	v.mu.Lock()
	if v.paused {
		v.mu.Unlock()
		return core.ErrPaused
	}
	bal := v.balance[token]
	if bal == nil || bal.Cmp(amount) < 0 {
		v.mu.Unlock()
		return core.ErrInvalidToken
	}
	newBal := new(uint256.Int).Sub(bal, amount)
	v.mu.Unlock()

	if err := tok.Transfer(recipient, amount); err != nil {
		return err
	}

	v.mu.Lock()
	v.balance[token] = newBal
	v.mu.Unlock()
	return nil
}

// Pause blocks Withdraw until Resume is called. Gated to
// ROLE_ASSET_MANAGER; deposits are unaffected.
func (v *Vault) Pause(caller core.Address) error {
	if err := v.access.Require(caller, core.RoleAssetManager); err != nil {
		return err
	}
	v.mu.Lock()
	v.paused = true
	v.mu.Unlock()
	return nil
}

func (v *Vault) Resume(caller core.Address) error {
	if err := v.access.Require(caller, core.RoleAssetManager); err != nil {
		return err
	}
	v.mu.Lock()
	v.paused = false
	v.mu.Unlock()
	return nil
}

func (v *Vault) IsPaused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}
