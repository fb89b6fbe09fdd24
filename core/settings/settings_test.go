package settings

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"liquiditynet/core"
)

func newTestSettings() (*Settings, core.Address) {
	access := core.NewAccessController()
	var admin core.Address
	admin[0] = 1
	access.Grant(admin, core.RoleAdmin)
	return New(access), admin
}

func TestWhitelistToggle(t *testing.T) {
	s, admin := newTestSettings()
	var bt core.Address
	bt[0] = 2
	require.False(t, s.IsWhitelisted(bt))
	require.NoError(t, s.SetWhitelisted(admin, bt, true))
	require.True(t, s.IsWhitelisted(bt))
}

func TestSettersRejectNonAdmin(t *testing.T) {
	s, _ := newTestSettings()
	var impostor, bt core.Address
	impostor[0] = 9
	require.ErrorIs(t, s.SetWhitelisted(impostor, bt, true), core.ErrAccessDenied)
	require.ErrorIs(t, s.SetFundingLimit(impostor, bt, uint256.NewInt(1)), core.ErrAccessDenied)
}

func TestPPMBoundsValidated(t *testing.T) {
	s, admin := newTestSettings()
	require.Error(t, s.SetWithdrawalFeePPM(admin, PPM+1))
	require.NoError(t, s.SetWithdrawalFeePPM(admin, PPM))
	require.Equal(t, uint32(PPM), s.WithdrawalFeePPM())
}

func TestFundingLimitRoundTrip(t *testing.T) {
	s, admin := newTestSettings()
	var bt core.Address
	bt[0] = 3
	require.NoError(t, s.SetFundingLimit(admin, bt, uint256.NewInt(500_000)))
	require.Equal(t, uint64(500_000), s.FundingLimit(bt).Uint64())
}
