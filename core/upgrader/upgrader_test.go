package upgrader

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"liquiditynet/core"
	"liquiditynet/core/poolcollection"
)

type fakeSettings struct {
	whitelist    map[core.Address]bool
	fundingLimit map[core.Address]*uint256.Int
	minLiquidity *uint256.Int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		whitelist:    make(map[core.Address]bool),
		fundingLimit: make(map[core.Address]*uint256.Int),
		minLiquidity: uint256.NewInt(1_000),
	}
}

func (f *fakeSettings) IsWhitelisted(bt core.Address) bool { return f.whitelist[bt] }
func (f *fakeSettings) FundingLimit(bt core.Address) *uint256.Int {
	if v, ok := f.fundingLimit[bt]; ok {
		return v
	}
	return uint256.NewInt(0)
}
func (f *fakeSettings) MinLiquidityForTrading() *uint256.Int { return f.minLiquidity }
func (f *fakeSettings) AvgRateMaxDeviationPPM() uint32       { return 1_000_000 }
func (f *fakeSettings) WithdrawalFeePPM() uint32             { return 0 }

type fakeVault struct{}

func (fakeVault) BalanceOf(core.Address) *uint256.Int { return uint256.NewInt(0) }

type fakeMasterPool struct{}

func (fakeMasterPool) RequestLiquidity(caller, bt core.Address, amount *uint256.Int) (*uint256.Int, error) {
	return uint256.NewInt(0), nil
}
func (fakeMasterPool) RenounceLiquidity(caller, bt core.Address, amount *uint256.Int) error {
	return nil
}
func (fakeMasterPool) CreditTradingFee(caller core.Address, amount *uint256.Int) error { return nil }

// registryStub is the same byBT/byType/latest bookkeeping network.Registry
// implements, kept minimal here so the upgrader package's tests do not
// import the network package (which itself depends on upgrader).
type registryStub struct {
	byBT   map[core.Address]*poolcollection.PoolCollection
	latest map[uint16]*poolcollection.PoolCollection
}

func newRegistryStub() *registryStub {
	return &registryStub{
		byBT:   make(map[core.Address]*poolcollection.PoolCollection),
		latest: make(map[uint16]*poolcollection.PoolCollection),
	}
}

func (r *registryStub) CollectionOf(bt core.Address) (*poolcollection.PoolCollection, bool) {
	pc, ok := r.byBT[bt]
	return pc, ok
}

func (r *registryStub) LatestCollection(poolType uint16) (*poolcollection.PoolCollection, bool) {
	pc, ok := r.latest[poolType]
	return pc, ok
}

type fixture struct {
	up       *Upgrader
	registry *registryStub
	access   *core.AccessController
	settings *fakeSettings
	network  core.Address
	bt       core.Address
	nt       core.Address
	srcV1    *poolcollection.PoolCollection
	dstV2    *poolcollection.PoolCollection
}

func newFixture(t *testing.T, poolType uint16) *fixture {
	t.Helper()
	access := core.NewAccessController()
	var network, bt, nt core.Address
	network[0], bt[0], nt[0] = 1, 2, 3
	access.Grant(network, core.RolePoolCollectionManager)
	access.Grant(network, core.RoleMigrationManager)

	settings := newFakeSettings()
	settings.whitelist[bt] = true
	settings.fundingLimit[bt] = uint256.NewInt(10_000_000)

	mock := clock.NewMock()
	coreClock := core.NewClockFrom(mock)

	v1 := poolcollection.New(core.Address{0xA1}, poolType, nt, access, settings, fakeVault{}, fakeVault{}, fakeMasterPool{}, coreClock, nil)
	v2 := poolcollection.New(core.Address{0xA2}, poolType, nt, access, settings, fakeVault{}, fakeVault{}, fakeMasterPool{}, coreClock, nil)

	require.NoError(t, v1.CreatePool(network, bt, core.NewFraction(1, 1)))
	_, err := v1.Deposit(network, network, bt, uint256.NewInt(10_000))
	require.NoError(t, err)

	registry := newRegistryStub()
	registry.byBT[bt] = v1
	registry.latest[poolType] = v1

	up := New(access, registry)

	return &fixture{
		up: up, registry: registry, access: access, settings: settings,
		network: network, bt: bt, nt: nt, srcV1: v1, dstV2: v2,
	}
}

func TestUpgradePoolMovesStateToLatestCollection(t *testing.T) {
	f := newFixture(t, 1)
	f.registry.latest[1] = f.dstV2

	dest, err := f.up.UpgradePool(f.network, f.bt)
	require.NoError(t, err)
	require.Same(t, f.dstV2, dest)

	_, err = f.srcV1.Pool(f.bt)
	require.ErrorIs(t, err, core.ErrInvalidPool)

	snap, err := f.dstV2.Pool(f.bt)
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), snap.StakedBalance.Uint64())
	require.Equal(t, uint64(10_000), snap.PoolTokenTotalSupply.Uint64())
}

func TestUpgradePoolRejectsWhenNoNewerCollectionRegistered(t *testing.T) {
	f := newFixture(t, 1)
	// latest is still srcV1 itself: nothing newer to upgrade into.
	_, err := f.up.UpgradePool(f.network, f.bt)
	require.ErrorIs(t, err, core.ErrInvalidPoolCollection)
}

func TestUpgradePoolRejectsUnknownPool(t *testing.T) {
	f := newFixture(t, 1)
	f.registry.latest[1] = f.dstV2
	var unknown core.Address
	unknown[0] = 0x99

	_, err := f.up.UpgradePool(f.network, unknown)
	require.ErrorIs(t, err, core.ErrInvalidPool)
}

func TestUpgradePoolRequiresMigrationManagerRole(t *testing.T) {
	f := newFixture(t, 1)
	f.registry.latest[1] = f.dstV2
	var stranger core.Address
	stranger[0] = 0xEE

	_, err := f.up.UpgradePool(stranger, f.bt)
	require.ErrorIs(t, err, core.ErrAccessDenied)
}

func TestUpgradePoolsSoftSkipsInvalidEntriesAndContinues(t *testing.T) {
	f := newFixture(t, 1)
	f.registry.latest[1] = f.dstV2

	var otherBT, unknown core.Address
	otherBT[0] = 0x10
	unknown[0] = 0x77

	f.settings.whitelist[otherBT] = true
	require.NoError(t, f.srcV1.CreatePool(f.network, otherBT, core.NewFraction(1, 1)))
	_, err := f.srcV1.Deposit(f.network, f.network, otherBT, uint256.NewInt(5_000))
	require.NoError(t, err)
	f.registry.byBT[otherBT] = f.srcV1

	upgraded := f.up.UpgradePools(f.network, []core.Address{f.bt, unknown, otherBT})
	require.ElementsMatch(t, []core.Address{f.bt, otherBT}, upgraded)
}
