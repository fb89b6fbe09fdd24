// Package upgrader implements PoolCollectionUpgrader (spec §4.8): moving
// a pool's entire state from an older PoolCollection to a newer one of
// the same pool type, atomically and with its PoolToken identity and LP
// balances preserved. Grounded on the teacher's migration bookkeeping in
// loanpool_management.go, generalized from a single boolean-state move to
// a cross-collection pointer handoff.
package upgrader

import (
	"liquiditynet/core"
	"liquiditynet/core/poolcollection"
)

// Registry is the slice of network.Registry the Upgrader consults to
// find the latest collection of a given pool type.
type Registry interface {
	CollectionOf(bt core.Address) (*poolcollection.PoolCollection, bool)
	LatestCollection(poolType uint16) (*poolcollection.PoolCollection, bool)
}

// Upgrader moves pools between registered collections.
type Upgrader struct {
	access   *core.AccessController
	registry Registry
}

func New(access *core.AccessController, registry Registry) *Upgrader {
	return &Upgrader{access: access, registry: registry}
}

// UpgradePool looks up bt's current collection, requires a strictly
// newer collection of the same pool type registered as the network's
// latest, and moves the pool across via MigrateOut/MigrateIn. Returns
// the destination collection.
func (u *Upgrader) UpgradePool(caller, bt core.Address) (*poolcollection.PoolCollection, error) {
	if err := u.access.Require(caller, core.RoleMigrationManager); err != nil {
		return nil, err
	}
	src, ok := u.registry.CollectionOf(bt)
	if !ok {
		return nil, core.ErrInvalidPool
	}
	dest, ok := u.registry.LatestCollection(src.PoolType())
	if !ok || dest == src {
		return nil, core.ErrInvalidPoolCollection
	}

	before, err := src.Pool(bt)
	if err != nil {
		return nil, err
	}

	pool, err := src.MigrateOut(caller, bt, dest.Identity())
	if err != nil {
		return nil, err
	}
	if err := dest.MigrateIn(caller, pool); err != nil {
		return nil, err
	}

	after, err := dest.Pool(bt)
	if err != nil {
		return nil, err
	}
	if !snapshotsEqual(before, after) {
		return nil, core.ErrInvalidPool
	}
	return dest, nil
}

// UpgradePools upgrades every bt in batch, silently skipping any that
// fail with InvalidPool or InvalidPoolCollection and continuing with the
// rest (spec §4.8, §7: the one explicitly "soft" batch operation).
func (u *Upgrader) UpgradePools(caller core.Address, batch []core.Address) []core.Address {
	upgraded := make([]core.Address, 0, len(batch))
	for _, bt := range batch {
		if _, err := u.UpgradePool(caller, bt); err != nil {
			continue
		}
		upgraded = append(upgraded, bt)
	}
	return upgraded
}

func snapshotsEqual(a, b poolcollection.Snapshot) bool {
	return a.TradingFeePPM == b.TradingFeePPM &&
		a.TradingEnabled == b.TradingEnabled &&
		a.DepositingEnabled == b.DepositingEnabled &&
		a.B.Cmp(b.B) == 0 &&
		a.N.Cmp(b.N) == 0 &&
		a.StakedBalance.Cmp(b.StakedBalance) == 0 &&
		a.DepositLimit.Cmp(b.DepositLimit) == 0 &&
		a.PoolTokenTotalSupply.Cmp(b.PoolTokenTotalSupply) == 0
}
