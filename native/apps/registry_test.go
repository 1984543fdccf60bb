package apps

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/native/checkpoints"
)

type mockRegistryState struct {
	apps  map[common.Hash]*App
	order []common.Hash
	flags map[common.Hash]*checkpoints.Flag
}

func newMockRegistryState() *mockRegistryState {
	return &mockRegistryState{
		apps:  make(map[common.Hash]*App),
		flags: make(map[common.Hash]*checkpoints.Flag),
	}
}

func (m *mockRegistryState) AppsGet(id common.Hash) (*App, bool, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, false, nil
	}
	return app.Clone(), true, nil
}

func (m *mockRegistryState) AppsPut(app *App) error {
	if _, ok := m.apps[app.ID]; !ok {
		m.order = append(m.order, app.ID)
	}
	m.apps[app.ID] = app.Clone()
	return nil
}

func (m *mockRegistryState) AppsAll() ([]common.Hash, error) {
	return append([]common.Hash(nil), m.order...), nil
}

func (m *mockRegistryState) AppsEligibilityFlag(id common.Hash) (*checkpoints.Flag, error) {
	flag, ok := m.flags[id]
	if !ok {
		flag = &checkpoints.Flag{}
		m.flags[id] = flag
	}
	return flag, nil
}

func (m *mockRegistryState) AppsPutEligibilityFlag(id common.Hash, flag *checkpoints.Flag) error {
	m.flags[id] = flag
	return nil
}

type registryFixture struct {
	registry *Registry
	state    *mockRegistryState
	block    uint64
}

func newRegistryFixture() *registryFixture {
	fx := &registryFixture{state: newMockRegistryState(), block: 10}
	registry := NewRegistry()
	registry.SetState(fx.state)
	registry.SetBlockFunc(func() uint64 { return fx.block })
	fx.registry = registry
	return fx
}

func TestRegisterAndLookup(t *testing.T) {
	fx := newRegistryFixture()
	admin := common.Address{0x01}
	wallet := common.Address{0x02}

	id, err := fx.registry.Register("cleanify", admin, wallet, "ipfs://cleanify")
	require.NoError(t, err)
	require.Equal(t, AppID("cleanify"), id)

	app, err := fx.registry.Get(id)
	require.NoError(t, err)
	require.Equal(t, "cleanify", app.Name)
	require.Equal(t, wallet, app.TeamWallet)
	require.Zero(t, app.TeamAllocationPercentage)

	exists, err := fx.registry.AppExists(id)
	require.NoError(t, err)
	require.True(t, exists)

	_, err = fx.registry.Register("cleanify", admin, wallet, "")
	require.ErrorIs(t, err, ErrAppExists)
	_, err = fx.registry.Register("", admin, wallet, "")
	require.ErrorIs(t, err, ErrInvalidName)
	_, err = fx.registry.Register("ghost", common.Address{}, wallet, "")
	require.ErrorIs(t, err, ErrZeroAddress)

	_, err = fx.registry.Get(AppID("unknown"))
	require.ErrorIs(t, err, ErrAppNotFound)
}

func TestEligibilityCheckpoints(t *testing.T) {
	fx := newRegistryFixture()
	admin := common.Address{0x01}
	wallet := common.Address{0x02}

	fx.block = 10
	idA, err := fx.registry.Register("mugshot", admin, wallet, "")
	require.NoError(t, err)
	fx.block = 20
	idB, err := fx.registry.Register("greencart", admin, wallet, "")
	require.NoError(t, err)

	// Before registration nothing is eligible.
	eligible, err := fx.registry.AllEligibleApps(5)
	require.NoError(t, err)
	require.Empty(t, eligible)

	eligible, err = fx.registry.AllEligibleApps(15)
	require.NoError(t, err)
	require.Equal(t, []common.Hash{idA}, eligible)

	eligible, err = fx.registry.AllEligibleApps(25)
	require.NoError(t, err)
	require.Equal(t, []common.Hash{idA, idB}, eligible)

	// Revoking at block 50 leaves earlier timepoints untouched.
	fx.block = 50
	require.NoError(t, fx.registry.SetVotingEligibility(idA, false))

	ok, err := fx.registry.IsEligibleAt(idA, 40)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = fx.registry.IsEligibleAt(idA, 60)
	require.NoError(t, err)
	require.False(t, ok)

	eligible, err = fx.registry.AllEligibleApps(60)
	require.NoError(t, err)
	require.Equal(t, []common.Hash{idB}, eligible)

	require.ErrorIs(t, fx.registry.SetVotingEligibility(AppID("unknown"), true), ErrAppNotFound)
}

func TestTeamSettings(t *testing.T) {
	fx := newRegistryFixture()
	admin := common.Address{0x01}
	wallet := common.Address{0x02}
	id, err := fx.registry.Register("evearn", admin, wallet, "")
	require.NoError(t, err)

	require.NoError(t, fx.registry.SetTeamAllocationPercentage(id, 40))
	pct, err := fx.registry.TeamAllocationPercentage(id)
	require.NoError(t, err)
	require.Equal(t, uint64(40), pct)

	require.ErrorIs(t, fx.registry.SetTeamAllocationPercentage(id, 101), ErrInvalidPercentage)

	next := common.Address{0x03}
	require.NoError(t, fx.registry.SetTeamWallet(id, next))
	got, err := fx.registry.TeamWalletAddress(id)
	require.NoError(t, err)
	require.Equal(t, next, got)

	require.ErrorIs(t, fx.registry.SetTeamWallet(id, common.Address{}), ErrZeroAddress)
}
