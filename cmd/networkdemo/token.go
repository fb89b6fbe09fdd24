package main

import (
	"sync"

	"github.com/holiman/uint256"
	"liquiditynet/core"
)

// demoToken is a minimal in-memory core.Token, standing in for a real
// ERC20-style contract so this binary can exercise the Network facade
// end-to-end without a chain backend.
type demoToken struct {
	mu       sync.Mutex
	balances map[core.Address]*uint256.Int
	supply   *uint256.Int
}

func newDemoToken() *demoToken {
	return &demoToken{balances: make(map[core.Address]*uint256.Int), supply: uint256.NewInt(0)}
}

func (t *demoToken) credit(addr core.Address, amount *uint256.Int) {
	bal := t.balances[addr]
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	t.balances[addr] = new(uint256.Int).Add(bal, amount)
}

func (t *demoToken) Mint(to core.Address, amount *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
	t.supply = new(uint256.Int).Add(t.supply, amount)
}

func (t *demoToken) Transfer(to core.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
	return nil
}

func (t *demoToken) TransferFrom(from, to core.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	bal := t.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return core.ErrInvalidToken
	}
	t.balances[from] = new(uint256.Int).Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *demoToken) BalanceOf(addr core.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.balances[addr]; ok {
		return new(uint256.Int).Set(b)
	}
	return uint256.NewInt(0)
}

func (t *demoToken) TotalSupply() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(uint256.Int).Set(t.supply)
}

func (t *demoToken) Approve(core.Address, *uint256.Int) error { return nil }

// demoNT additionally exposes masterpool.NTToken's mint/burn capability.
type demoNT struct{ *demoToken }

func newDemoNT() *demoNT { return &demoNT{demoToken: newDemoToken()} }

func (n *demoNT) Mint(to core.Address, amount *uint256.Int) error {
	n.demoToken.Mint(to, amount)
	return nil
}

func (n *demoNT) Burn(from core.Address, amount *uint256.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	bal := n.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return core.ErrInvalidToken
	}
	n.balances[from] = new(uint256.Int).Sub(bal, amount)
	n.supply = new(uint256.Int).Sub(n.supply, amount)
	return nil
}
