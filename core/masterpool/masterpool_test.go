package masterpool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"liquiditynet/core"
)

type fakeSettings struct {
	limit   map[core.Address]*uint256.Int
	withFee uint32
}

func (f *fakeSettings) FundingLimit(bt core.Address) *uint256.Int {
	if v, ok := f.limit[bt]; ok {
		return v
	}
	return uint256.NewInt(0)
}
func (f *fakeSettings) WithdrawalFeePPM() uint32 { return f.withFee }

type fakeNT struct {
	minted map[core.Address]*uint256.Int
	burned map[core.Address]*uint256.Int
}

func newFakeNT() *fakeNT {
	return &fakeNT{minted: make(map[core.Address]*uint256.Int), burned: make(map[core.Address]*uint256.Int)}
}

func (n *fakeNT) Mint(to core.Address, amount *uint256.Int) error {
	bal := n.minted[to]
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	n.minted[to] = new(uint256.Int).Add(bal, amount)
	return nil
}
func (n *fakeNT) Burn(from core.Address, amount *uint256.Int) error {
	bal := n.burned[from]
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	n.burned[from] = new(uint256.Int).Add(bal, amount)
	return nil
}

func newFixture() (*MasterPool, *core.AccessController, *fakeSettings, *fakeNT, core.Address, core.Address) {
	access := core.NewAccessController()
	var network, provider core.Address
	network[0], provider[0] = 1, 2
	access.Grant(network, core.RoleNetworkTokenManager)
	settings := &fakeSettings{limit: make(map[core.Address]*uint256.Int)}
	nt := newFakeNT()
	mp := New(core.Address{0xCC}, access, settings, nt, nil)
	return mp, access, settings, nt, network, provider
}

func TestRequestLiquidityCapsAtFundingLimit(t *testing.T) {
	mp, _, settings, _, network, _ := newFixture()
	var bt core.Address
	bt[0] = 5
	settings.limit[bt] = uint256.NewInt(1_000)

	granted, err := mp.RequestLiquidity(network, bt, uint256.NewInt(600))
	require.NoError(t, err)
	require.Equal(t, uint64(600), granted.Uint64())

	granted, err = mp.RequestLiquidity(network, bt, uint256.NewInt(600))
	require.NoError(t, err)
	require.Equal(t, uint64(400), granted.Uint64(), "second request capped at remaining headroom")

	granted, err = mp.RequestLiquidity(network, bt, uint256.NewInt(1))
	require.NoError(t, err)
	require.True(t, granted.IsZero(), "funding limit fully exhausted")
}

func TestRenounceLiquidityRejectsOverBurn(t *testing.T) {
	mp, _, settings, _, network, _ := newFixture()
	var bt core.Address
	bt[0] = 5
	settings.limit[bt] = uint256.NewInt(1_000)
	_, err := mp.RequestLiquidity(network, bt, uint256.NewInt(100))
	require.NoError(t, err)

	err = mp.RenounceLiquidity(network, bt, uint256.NewInt(200))
	require.Error(t, err)

	require.NoError(t, mp.RenounceLiquidity(network, bt, uint256.NewInt(100)))
	require.Equal(t, uint64(0), mp.MintedForPool(bt).Uint64())
}

func TestDepositWithdrawRoundTripWithFee(t *testing.T) {
	mp, _, settings, _, network, provider := newFixture()
	settings.withFee = 10_000 // 1%

	ptAmount, err := mp.Deposit(network, provider, uint256.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), ptAmount.Uint64())

	ntOut, err := mp.Withdraw(network, provider, ptAmount)
	require.NoError(t, err)
	require.Equal(t, uint64(9_900), ntOut.Uint64())
}

func TestDepositRejectsUnauthorizedCaller(t *testing.T) {
	mp, _, _, _, _, provider := newFixture()
	var impostor core.Address
	impostor[0] = 99
	_, err := mp.Deposit(impostor, provider, uint256.NewInt(1))
	require.ErrorIs(t, err, core.ErrAccessDenied)
}

func TestCreditTradingFeeIncreasesStakedBalance(t *testing.T) {
	mp, _, _, _, network, _ := newFixture()
	require.NoError(t, mp.CreditTradingFee(network, uint256.NewInt(42)))
	require.Equal(t, uint64(42), mp.NTStakedBalance().Uint64())
}
