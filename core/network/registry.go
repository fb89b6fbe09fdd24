// Package network implements the Network facade (spec §4.9): the single
// entry point orchestrating PoolCollection, MasterPool, PendingWithdrawals,
// the Vaults, and the Upgrader behind a reentrancy guard, context-id
// hashing, and event emission. Generalized from the teacher's top-level
// InitAMM/Pause-Resume wiring idiom in core/amm.go and
// core/loanpool_management.go into a single-flag reentrancy-guarded
// router over the components the rest of this module owns.
package network

import (
	"sync"

	"liquiditynet/core"
	"liquiditynet/core/poolcollection"
)

// Registry is the non-owning directory Design Notes §9 calls for: it
// holds handles to every registered PoolCollection, which one currently
// owns each BT, and which is the latest of each pool type. It owns no
// economic state itself — only address bookkeeping.
type Registry struct {
	mu sync.RWMutex

	byBT      map[core.Address]*poolcollection.PoolCollection
	byType    map[uint16][]*poolcollection.PoolCollection
	latest    map[uint16]*poolcollection.PoolCollection
}

func NewRegistry() *Registry {
	return &Registry{
		byBT:   make(map[core.Address]*poolcollection.PoolCollection),
		byType: make(map[uint16][]*poolcollection.PoolCollection),
		latest: make(map[uint16]*poolcollection.PoolCollection),
	}
}

// AddCollection registers pc and makes it the latest collection of its
// pool type (spec §4.9 event PoolCollectionAdded).
func (r *Registry) AddCollection(pc *poolcollection.PoolCollection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := pc.PoolType()
	r.byType[t] = append(r.byType[t], pc)
	r.latest[t] = pc
}

// RemoveCollection deregisters pc. Fails ErrNotEmpty if pc still owns
// pools — a pool must be moved out via the Upgrader first (spec §4.5's
// state machine: "terminal state only on collection removal, which
// requires the pool be moved first").
func (r *Registry) RemoveCollection(pc *poolcollection.PoolCollection) error {
	if pc.Count() != 0 {
		return core.ErrNotEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t := pc.PoolType()
	list := r.byType[t]
	for i, c := range list {
		if c == pc {
			r.byType[t] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if r.latest[t] == pc {
		delete(r.latest, t)
		if n := len(r.byType[t]); n > 0 {
			r.latest[t] = r.byType[t][n-1]
		}
	}
	return nil
}

// ReplaceLatest forces pc to be the latest collection of its pool type,
// without requiring it to already be registered via AddCollection (spec
// §4.9 event LatestPoolCollectionReplaced covers both cases).
func (r *Registry) ReplaceLatest(pc *poolcollection.PoolCollection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := pc.PoolType()
	found := false
	for _, c := range r.byType[t] {
		if c == pc {
			found = true
			break
		}
	}
	if !found {
		r.byType[t] = append(r.byType[t], pc)
	}
	r.latest[t] = pc
}

// CollectionOf returns the PoolCollection currently owning bt.
func (r *Registry) CollectionOf(bt core.Address) (*poolcollection.PoolCollection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.byBT[bt]
	return pc, ok
}

// SetCollectionOf records that bt is now owned by pc, called after
// CreatePool and after a successful pool upgrade.
func (r *Registry) SetCollectionOf(bt core.Address, pc *poolcollection.PoolCollection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byBT[bt] = pc
}

// LatestCollection returns the latest registered collection of poolType.
func (r *Registry) LatestCollection(poolType uint16) (*poolcollection.PoolCollection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.latest[poolType]
	return pc, ok
}
