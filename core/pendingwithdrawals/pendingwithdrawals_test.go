package pendingwithdrawals

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"liquiditynet/core"
)

func newFixture(t *testing.T) (*PendingWithdrawals, *clock.Mock, core.Address, core.Address, core.Address) {
	access := core.NewAccessController()
	var network, admin, provider core.Address
	network[0], admin[0], provider[0] = 1, 2, 3
	access.Grant(network, core.RolePoolCollectionManager)
	access.Grant(admin, core.RoleAdmin)

	mock := clock.NewMock()
	pw := New(access, core.NewClockFrom(mock))
	require.NoError(t, pw.SetLockDuration(admin, 7*24*3600))
	require.NoError(t, pw.SetWithdrawalWindowDuration(admin, 3*24*3600))
	return pw, mock, network, admin, provider
}

func TestTwoPhaseWithdrawalWindow(t *testing.T) {
	pw, mock, network, _, provider := newFixture(t)
	var bt core.Address
	bt[0] = 9

	id, err := pw.InitWithdrawal(network, provider, bt, uint256.NewInt(1_000))
	require.NoError(t, err)

	mock.Add(6 * 24 * time.Hour)
	_, err = pw.CompleteWithdrawal(provider, id)
	require.ErrorIs(t, err, core.ErrWithdrawalNotAllowed, "still locked at t=6d")

	mock.Add(24*time.Hour + time.Second)
	req, err := pw.CompleteWithdrawal(provider, id)
	require.NoError(t, err, "ready at t=7d+1s")
	require.Equal(t, uint64(1_000), req.PoolTokenAmount.Uint64())

	mock.Add(3 * 24 * time.Hour)
	_, err = pw.CompleteWithdrawal(provider, id)
	require.ErrorIs(t, err, core.ErrWithdrawalNotAllowed, "already withdrawn")
}

func TestExpiredWindowRequiresReinitiation(t *testing.T) {
	pw, mock, network, _, provider := newFixture(t)
	var bt core.Address
	bt[0] = 9

	id, err := pw.InitWithdrawal(network, provider, bt, uint256.NewInt(500))
	require.NoError(t, err)

	mock.Add(7*24*time.Hour + 3*24*time.Hour + time.Hour)
	status, err := pw.Status(id)
	require.NoError(t, err)
	require.Equal(t, StatusExpired, status)

	_, err = pw.CompleteWithdrawal(provider, id)
	require.ErrorIs(t, err, core.ErrWithdrawalNotAllowed)
}

func TestCancelReturnsRequestAtAnyNonTerminalState(t *testing.T) {
	pw, _, network, _, provider := newFixture(t)
	var bt core.Address
	bt[0] = 9

	id, err := pw.InitWithdrawal(network, provider, bt, uint256.NewInt(250))
	require.NoError(t, err)

	req, err := pw.CancelWithdrawal(provider, id)
	require.NoError(t, err)
	require.Equal(t, uint64(250), req.PoolTokenAmount.Uint64())

	_, err = pw.CancelWithdrawal(provider, id)
	require.Error(t, err, "cancelling twice is not allowed")
}

func TestCompleteWithdrawalRejectsWrongProvider(t *testing.T) {
	pw, mock, network, _, provider := newFixture(t)
	var bt, impostor core.Address
	bt[0] = 9
	impostor[0] = 77

	id, err := pw.InitWithdrawal(network, provider, bt, uint256.NewInt(10))
	require.NoError(t, err)
	mock.Add(8 * 24 * time.Hour)

	_, err = pw.CompleteWithdrawal(impostor, id)
	require.ErrorIs(t, err, core.ErrDoesNotExist)
}
