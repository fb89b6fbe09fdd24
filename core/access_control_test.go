package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessControllerGrantRevoke(t *testing.T) {
	ac := NewAccessController()
	var addr Address
	addr[0] = 1

	require.ErrorIs(t, ac.Require(addr, RoleAdmin), ErrAccessDenied)
	ac.Grant(addr, RoleAdmin)
	require.True(t, ac.Has(addr, RoleAdmin))
	require.NoError(t, ac.Require(addr, RoleAdmin))

	ac.Revoke(addr, RoleAdmin)
	require.False(t, ac.Has(addr, RoleAdmin))
	require.ErrorIs(t, ac.Require(addr, RoleAdmin), ErrAccessDenied)
}

func TestAccessControllerGrantIdempotent(t *testing.T) {
	ac := NewAccessController()
	var addr Address
	ac.Grant(addr, RoleMinter)
	ac.Grant(addr, RoleMinter)
	require.True(t, ac.Has(addr, RoleMinter))
}

func TestAccessControllerConcurrentGrant(t *testing.T) {
	ac := NewAccessController()
	var addr Address
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ac.Grant(addr, RoleAssetManager)
		}()
	}
	wg.Wait()
	require.True(t, ac.Has(addr, RoleAssetManager))
}
