package emissions

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/core/events"
)

type mockSchedulerState struct {
	nextCycle uint64
	lastBlock uint64
	total     *big.Int
	cycles    map[uint64]*CycleAmounts
}

func newMockSchedulerState() *mockSchedulerState {
	return &mockSchedulerState{total: big.NewInt(0), cycles: make(map[uint64]*CycleAmounts)}
}

func (m *mockSchedulerState) EmissionsNextCycle() (uint64, error)       { return m.nextCycle, nil }
func (m *mockSchedulerState) EmissionsSetNextCycle(c uint64) error      { m.nextCycle = c; return nil }
func (m *mockSchedulerState) EmissionsLastBlock() (uint64, error)       { return m.lastBlock, nil }
func (m *mockSchedulerState) EmissionsSetLastBlock(b uint64) error      { m.lastBlock = b; return nil }
func (m *mockSchedulerState) EmissionsTotal() (*big.Int, error)         { return new(big.Int).Set(m.total), nil }
func (m *mockSchedulerState) EmissionsSetTotal(t *big.Int) error        { m.total = new(big.Int).Set(t); return nil }

func (m *mockSchedulerState) EmissionsCycleAmounts(cycle uint64) (*CycleAmounts, bool, error) {
	amounts, ok := m.cycles[cycle]
	if !ok {
		return nil, false, nil
	}
	return amounts.Clone(), true, nil
}

func (m *mockSchedulerState) EmissionsPutCycleAmounts(cycle uint64, amounts *CycleAmounts) error {
	m.cycles[cycle] = amounts.Clone()
	return nil
}

type mockMinter struct {
	cap    *big.Int
	supply *big.Int
	mints  []struct {
		to     common.Address
		amount *big.Int
	}
}

func newMockMinter(cap int64) *mockMinter {
	return &mockMinter{cap: big.NewInt(cap), supply: big.NewInt(0)}
}

func (m *mockMinter) Mint(to common.Address, amount *big.Int) error {
	m.supply.Add(m.supply, amount)
	m.mints = append(m.mints, struct {
		to     common.Address
		amount *big.Int
	}{to, new(big.Int).Set(amount)})
	return nil
}

func (m *mockMinter) Cap() (*big.Int, error)         { return new(big.Int).Set(m.cap), nil }
func (m *mockMinter) TotalSupply() (*big.Int, error) { return new(big.Int).Set(m.supply), nil }

type mockRoundStarter struct {
	rounds uint64
}

func (m *mockRoundStarter) StartNewRound(common.Address) (uint64, error) {
	m.rounds++
	return m.rounds, nil
}

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(e events.Event) { c.events = append(c.events, e) }

func newTestEngine(state *mockSchedulerState, minter *mockMinter, rounds *mockRoundStarter, block *uint64) *Engine {
	engine := NewEngine(testParams())
	engine.SetState(state)
	engine.SetMinter(minter)
	engine.SetRoundStarter(rounds)
	engine.SetDestinations(Destinations{
		XAllocations: common.HexToAddress("0x01"),
		Vote2Earn:    common.HexToAddress("0x02"),
		Treasury:     common.HexToAddress("0x03"),
		Migration:    common.HexToAddress("0x04"),
	})
	engine.SetBlockFunc(func() uint64 { return *block })
	return engine
}

func TestBootstrapSeedsCycleOne(t *testing.T) {
	state := newMockSchedulerState()
	minter := newMockMinter(1_000_000)
	rounds := &mockRoundStarter{}
	block := uint64(100)
	engine := newTestEngine(state, minter, rounds, &block)
	emitter := &captureEmitter{}
	engine.SetEmitter(emitter)

	require.NoError(t, engine.Bootstrap())
	require.Equal(t, uint64(1), state.nextCycle)
	require.Equal(t, uint64(100), state.lastBlock)

	amounts, ok, err := state.EmissionsCycleAmounts(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1000), amounts.XAllocations.Int64())
	require.Equal(t, int64(1000), amounts.Vote2Earn.Int64())
	require.Equal(t, int64(200), amounts.Treasury.Int64())
	require.Equal(t, uint64(100), amounts.StartBlock)
	require.Equal(t, int64(2200), state.total.Int64())
	require.Len(t, minter.mints, 3)
	require.Len(t, emitter.events, 1)
	require.Equal(t, events.EventEmissionsBootstrapped, emitter.events[0].EventType())

	// Bootstrap is one-time only.
	require.ErrorIs(t, engine.Bootstrap(), ErrAlreadyBootstrapped)
}

func TestBootstrapMintsMigration(t *testing.T) {
	state := newMockSchedulerState()
	minter := newMockMinter(1_000_000)
	block := uint64(1)
	engine := newTestEngine(state, minter, &mockRoundStarter{}, &block)
	params := testParams()
	params.MigrationAmount = big.NewInt(500)
	engine.params = params

	require.NoError(t, engine.Bootstrap())
	require.Len(t, minter.mints, 4)
	require.Equal(t, common.HexToAddress("0x04"), minter.mints[3].to)
	require.Equal(t, int64(500), minter.mints[3].amount.Int64())
	require.Equal(t, int64(2700), state.total.Int64())
}

func TestStartRequiresBootstrap(t *testing.T) {
	state := newMockSchedulerState()
	block := uint64(1)
	engine := newTestEngine(state, newMockMinter(1_000_000), &mockRoundStarter{}, &block)
	require.ErrorIs(t, engine.Start(common.Address{}), ErrNotBootstrapped)

	require.NoError(t, engine.Bootstrap())
	require.NoError(t, engine.Start(common.Address{}))
	require.Equal(t, uint64(2), state.nextCycle)
	require.ErrorIs(t, engine.Start(common.Address{}), ErrAlreadyStarted)
}

func TestDistributeGatesOnBlockWindow(t *testing.T) {
	state := newMockSchedulerState()
	minter := newMockMinter(1_000_000)
	rounds := &mockRoundStarter{}
	block := uint64(0)
	engine := newTestEngine(state, minter, rounds, &block)

	require.NoError(t, engine.Bootstrap())
	require.NoError(t, engine.Start(common.Address{}))
	require.Equal(t, uint64(1), rounds.rounds)

	// Window not yet elapsed.
	block = 9
	ok, err := engine.Distributable()
	require.NoError(t, err)
	require.False(t, ok)
	_, err = engine.Distribute(common.Address{})
	require.ErrorIs(t, err, ErrCycleNotReady)

	block = 10
	cycle, err := engine.Distribute(common.Address{})
	require.NoError(t, err)
	require.Equal(t, uint64(2), cycle)
	require.Equal(t, uint64(3), state.nextCycle)
	require.Equal(t, uint64(10), state.lastBlock)
	require.Equal(t, uint64(2), rounds.rounds)

	// Cycle two is decayed 10% from cycle one.
	amounts, ok2, err := state.EmissionsCycleAmounts(2)
	require.NoError(t, err)
	require.True(t, ok2)
	require.Equal(t, int64(900), amounts.XAllocations.Int64())
	require.Equal(t, int64(810), amounts.Vote2Earn.Int64())
	require.Equal(t, int64(171), amounts.Treasury.Int64())
}

func TestDistributeRejectsWhenExceedingCap(t *testing.T) {
	state := newMockSchedulerState()
	minter := newMockMinter(2_500)
	block := uint64(0)
	engine := newTestEngine(state, minter, &mockRoundStarter{}, &block)

	require.NoError(t, engine.Bootstrap())
	require.NoError(t, engine.Start(common.Address{}))

	block = 10
	_, err := engine.Distribute(common.Address{})
	require.ErrorIs(t, err, ErrEmissionExceedsCap)
	// No partial mint: the failed distribution recorded nothing.
	_, ok, err := state.EmissionsCycleAmounts(2)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint64(2), state.nextCycle)
}

func TestCycleAmountsPreviewMatchesDistribution(t *testing.T) {
	state := newMockSchedulerState()
	minter := newMockMinter(10_000_000)
	block := uint64(0)
	engine := newTestEngine(state, minter, &mockRoundStarter{}, &block)

	require.NoError(t, engine.Bootstrap())
	require.NoError(t, engine.Start(common.Address{}))

	preview, err := engine.CycleAmountsFor(5)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		block += 10
		_, err := engine.Distribute(common.Address{})
		require.NoError(t, err)
	}
	stored, err := engine.CycleAmountsFor(5)
	require.NoError(t, err)
	require.Zero(t, preview.XAllocations.Cmp(stored.XAllocations))
	require.Zero(t, preview.Vote2Earn.Cmp(stored.Vote2Earn))
	require.Zero(t, preview.Treasury.Cmp(stored.Treasury))
}

func TestCycleLifecycleQueries(t *testing.T) {
	state := newMockSchedulerState()
	block := uint64(0)
	engine := newTestEngine(state, newMockMinter(10_000_000), &mockRoundStarter{}, &block)

	current, err := engine.CurrentCycle()
	require.NoError(t, err)
	require.Zero(t, current)

	require.NoError(t, engine.Bootstrap())
	require.NoError(t, engine.Start(common.Address{}))
	start, err := engine.CycleStartBlock(1)
	require.NoError(t, err)
	require.Zero(t, start)
	_, err = engine.CycleStartBlock(2)
	require.ErrorIs(t, err, ErrCycleNotDistributed)

	ended, err := engine.IsCycleEnded(1)
	require.NoError(t, err)
	require.False(t, ended)
	block = 10
	ended, err = engine.IsCycleEnded(1)
	require.NoError(t, err)
	require.True(t, ended)
}
