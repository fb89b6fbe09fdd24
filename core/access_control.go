package core

import "sync"

// Role is a flat capability, never a hierarchy (Design Notes §9).
type Role string

const (
	RoleAdmin                 Role = "ROLE_ADMIN"
	RoleAssetManager          Role = "ROLE_ASSET_MANAGER"
	RoleNetworkTokenManager   Role = "ROLE_NETWORK_TOKEN_MANAGER"
	RolePoolCollectionManager Role = "ROLE_POOL_COLLECTION_MANAGER"
	RoleMigrationManager      Role = "ROLE_MIGRATION_MANAGER"
	RoleMinter                Role = "ROLE_MINTER"
)

// AccessController tracks role grants per address. Adapted from the
// ledger-backed controller this corpus uses elsewhere; here grants are
// held in memory since role state is not part of any Pool/MasterPool
// invariant the spec tracks.
type AccessController struct {
	mu    sync.RWMutex
	roles map[Address]map[Role]struct{}
}

func NewAccessController() *AccessController {
	return &AccessController{roles: make(map[Address]map[Role]struct{})}
}

// Grant assigns role to addr. Idempotent: granting an already-held role
// is a no-op, not an error (role grants are persistent per spec §5).
func (ac *AccessController) Grant(addr Address, role Role) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.roles[addr] == nil {
		ac.roles[addr] = make(map[Role]struct{})
	}
	ac.roles[addr][role] = struct{}{}
}

// Revoke removes role from addr. Idempotent.
func (ac *AccessController) Revoke(addr Address, role Role) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if roles, ok := ac.roles[addr]; ok {
		delete(roles, role)
		if len(roles) == 0 {
			delete(ac.roles, addr)
		}
	}
}

// Has reports whether addr currently holds role.
func (ac *AccessController) Has(addr Address, role Role) bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	roles, ok := ac.roles[addr]
	if !ok {
		return false
	}
	_, ok = roles[role]
	return ok
}

// Require returns ErrAccessDenied if addr does not hold role. Callers
// invoke this before any state read that depends on the role check,
// per spec §7's authorization-error ordering.
func (ac *AccessController) Require(addr Address, role Role) error {
	if !ac.Has(addr, role) {
		return ErrAccessDenied
	}
	return nil
}
