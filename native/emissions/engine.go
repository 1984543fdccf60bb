package emissions

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/events"
)

// CycleAmounts holds the three destination amounts recorded for a distributed
// cycle along with the block the cycle started at. Written exactly once, at
// distribution time.
type CycleAmounts struct {
	XAllocations *big.Int
	Vote2Earn    *big.Int
	Treasury     *big.Int
	StartBlock   uint64
}

// Total returns the sum of the three destination amounts.
func (c *CycleAmounts) Total() *big.Int {
	if c == nil {
		return big.NewInt(0)
	}
	total := new(big.Int)
	if c.XAllocations != nil {
		total.Add(total, c.XAllocations)
	}
	if c.Vote2Earn != nil {
		total.Add(total, c.Vote2Earn)
	}
	if c.Treasury != nil {
		total.Add(total, c.Treasury)
	}
	return total
}

// Clone returns a deep copy of the cycle amounts.
func (c *CycleAmounts) Clone() *CycleAmounts {
	if c == nil {
		return nil
	}
	return &CycleAmounts{
		XAllocations: copyBigInt(c.XAllocations),
		Vote2Earn:    copyBigInt(c.Vote2Earn),
		Treasury:     copyBigInt(c.Treasury),
		StartBlock:   c.StartBlock,
	}
}

// SchedulerState is the persistence contract the emissions engine depends on.
type SchedulerState interface {
	EmissionsNextCycle() (uint64, error)
	EmissionsSetNextCycle(cycle uint64) error
	EmissionsLastBlock() (uint64, error)
	EmissionsSetLastBlock(block uint64) error
	EmissionsTotal() (*big.Int, error)
	EmissionsSetTotal(total *big.Int) error
	EmissionsCycleAmounts(cycle uint64) (*CycleAmounts, bool, error)
	EmissionsPutCycleAmounts(cycle uint64, amounts *CycleAmounts) error
}

// TokenMinter is the token collaborator used to mint cycle emissions. Mints
// beyond the cap must be rejected by the token itself; the engine additionally
// checks the remaining mintable supply up front so a cycle never partially
// mints.
type TokenMinter interface {
	Mint(to common.Address, amount *big.Int) error
	Cap() (*big.Int, error)
	TotalSupply() (*big.Int, error)
}

// RoundStarter opens a new allocation voting round when a cycle is distributed.
type RoundStarter interface {
	StartNewRound(proposer common.Address) (uint64, error)
}

// Destinations names the accounts credited by each cycle distribution.
type Destinations struct {
	XAllocations common.Address
	Vote2Earn    common.Address
	Treasury     common.Address
	Migration    common.Address
}

// Engine drives the cycle-based emission schedule: bootstrap, start, and the
// repeated distribute loop gated on elapsed blocks.
type Engine struct {
	state        SchedulerState
	minter       TokenMinter
	rounds       RoundStarter
	emitter      events.Emitter
	blockFn      func() uint64
	params       Params
	destinations Destinations
}

// NewEngine constructs an emissions engine with no-op dependencies.
func NewEngine(params Params) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 0 },
		params:  params,
	}
}

// SetState wires the engine to its persistence backend.
func (e *Engine) SetState(state SchedulerState) { e.state = state }

// SetMinter wires the token collaborator used for cycle mints.
func (e *Engine) SetMinter(minter TokenMinter) { e.minter = minter }

// SetRoundStarter wires the allocation-voting collaborator.
func (e *Engine) SetRoundStarter(rounds RoundStarter) { e.rounds = rounds }

// SetDestinations configures the emission destination accounts.
func (e *Engine) SetDestinations(dest Destinations) { e.destinations = dest }

// SetEmitter configures the event emitter. Nil resets to a no-op emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetBlockFunc overrides the block height source. Nil restores a zero clock.
func (e *Engine) SetBlockFunc(fn func() uint64) {
	if fn == nil {
		e.blockFn = func() uint64 { return 0 }
		return
	}
	e.blockFn = fn
}

// Params returns the configured emission schedule.
func (e *Engine) Params() Params { return e.params }

func (e *Engine) block() uint64 {
	if e == nil || e.blockFn == nil {
		return 0
	}
	return e.blockFn()
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

// NextCycle returns the next cycle the scheduler will produce. Zero means the
// scheduler has not been bootstrapped.
func (e *Engine) NextCycle() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrStateNotConfigured
	}
	return e.state.EmissionsNextCycle()
}

// CurrentCycle returns the most recently distributed cycle, or zero before
// bootstrap.
func (e *Engine) CurrentCycle() (uint64, error) {
	next, err := e.NextCycle()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return 0, nil
	}
	return next - 1, nil
}

// CycleStartBlock returns the block at which a distributed cycle began.
func (e *Engine) CycleStartBlock(cycle uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrStateNotConfigured
	}
	amounts, ok, err := e.state.EmissionsCycleAmounts(cycle)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrCycleNotDistributed
	}
	return amounts.StartBlock, nil
}

// IsCycleEnded reports whether the cycle's block window has fully elapsed.
func (e *Engine) IsCycleEnded(cycle uint64) (bool, error) {
	current, err := e.CurrentCycle()
	if err != nil {
		return false, err
	}
	if cycle < current {
		return true, nil
	}
	if cycle > current {
		return false, nil
	}
	start, err := e.CycleStartBlock(cycle)
	if err != nil {
		return false, err
	}
	return e.block() >= start+e.params.CycleDuration, nil
}

// CycleAmountsFor previews or retrieves the three amounts for a cycle. Stored
// amounts win; unwritten future cycles are recomputed from the decay formulas,
// which yield the same values the eventual distribution will write.
func (e *Engine) CycleAmountsFor(cycle uint64) (*CycleAmounts, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	stored, ok, err := e.state.EmissionsCycleAmounts(cycle)
	if err != nil {
		return nil, err
	}
	if ok {
		return stored.Clone(), nil
	}
	return &CycleAmounts{
		XAllocations: XAllocationAmount(e.params, cycle),
		Vote2Earn:    Vote2EarnAmount(e.params, cycle),
		Treasury:     TreasuryAmount(e.params, cycle),
	}, nil
}

// TotalEmissions returns the cumulative amount minted across all cycles.
func (e *Engine) TotalEmissions() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	return e.state.EmissionsTotal()
}

// Bootstrap performs the one-time mint that seeds cycle one: the three cycle
// amounts plus the fixed migration transfer. The scheduler transitions from
// Uninitialized to Bootstrapped (nextCycle=1) and never runs this path again.
func (e *Engine) Bootstrap() error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if e.minter == nil {
		return ErrMinterNotConfigured
	}
	next, err := e.state.EmissionsNextCycle()
	if err != nil {
		return err
	}
	if next != 0 {
		return ErrAlreadyBootstrapped
	}
	block := e.block()
	amounts := &CycleAmounts{
		XAllocations: XAllocationAmount(e.params, 1),
		Vote2Earn:    Vote2EarnAmount(e.params, 1),
		Treasury:     TreasuryAmount(e.params, 1),
		StartBlock:   block,
	}
	migration := copyBigInt(e.params.MigrationAmount)
	required := new(big.Int).Add(amounts.Total(), migration)
	if err := e.checkRemainingSupply(required); err != nil {
		return err
	}

	if err := e.state.EmissionsPutCycleAmounts(1, amounts); err != nil {
		return err
	}
	if err := e.state.EmissionsSetNextCycle(1); err != nil {
		return err
	}
	if err := e.state.EmissionsSetLastBlock(block); err != nil {
		return err
	}
	if err := e.state.EmissionsSetTotal(required); err != nil {
		return err
	}

	if err := e.mintCycle(amounts); err != nil {
		return err
	}
	if migration.Sign() > 0 {
		if err := e.minter.Mint(e.destinations.Migration, migration); err != nil {
			return err
		}
	}

	e.emit(events.EmissionsBootstrapped{
		XAllocations: amounts.XAllocations,
		Vote2Earn:    amounts.Vote2Earn,
		Treasury:     amounts.Treasury,
		Migration:    migration,
		Block:        block,
	})
	return nil
}

// Start opens the first allocation voting round and arms the distribute loop.
// Requires the scheduler to be bootstrapped and not yet started.
func (e *Engine) Start(proposer common.Address) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	next, err := e.state.EmissionsNextCycle()
	if err != nil {
		return err
	}
	if next == 0 {
		return ErrNotBootstrapped
	}
	if next != 1 {
		return ErrAlreadyStarted
	}
	if e.rounds != nil {
		if _, err := e.rounds.StartNewRound(proposer); err != nil {
			return err
		}
	}
	if err := e.state.EmissionsSetNextCycle(2); err != nil {
		return err
	}
	return e.state.EmissionsSetLastBlock(e.block())
}

// Distributable reports whether Distribute would currently succeed with
// respect to the block window.
func (e *Engine) Distributable() (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	next, err := e.state.EmissionsNextCycle()
	if err != nil {
		return false, err
	}
	if next < 2 {
		return false, nil
	}
	last, err := e.state.EmissionsLastBlock()
	if err != nil {
		return false, err
	}
	return e.block() >= last+e.params.CycleDuration, nil
}

/// Distribute produces the next cycle: computes the decay amounts, records them
// immutably, mints to the three destinations, opens a new allocation round,
// and advances the scheduler. All preconditions are checked before any state
// is written so a failed distribution leaves no partial mint.
func (e *Engine) Distribute(proposer common.Address) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrStateNotConfigured
	}
	if e.minter == nil {
		return 0, ErrMinterNotConfigured
	}
	next, err := e.state.EmissionsNextCycle()
	if err != nil {
		return 0, err
	}
	if next < 2 {
		return 0, ErrNotBootstrapped
	}
	last, err := e.state.EmissionsLastBlock()
	if err != nil {
		return 0, err
	}
	block := e.block()
	if block < last+e.params.CycleDuration {
		return 0, fmt.Errorf("%w: next distribution at block %d, current %d", ErrCycleNotReady, last+e.params.CycleDuration, block)
	}

	cycle := next
	amounts := &CycleAmounts{
		XAllocations: XAllocationAmount(e.params, cycle),
		Vote2Earn:    Vote2EarnAmount(e.params, cycle),
		Treasury:     TreasuryAmount(e.params, cycle),
		StartBlock:   block,
	}
	total := amounts.Total()
	if err := e.checkRemainingSupply(total); err != nil {
		return 0, err
	}

	if err := e.state.EmissionsPutCycleAmounts(cycle, amounts); err != nil {
		return 0, err
	}
	running, err := e.state.EmissionsTotal()
	if err != nil {
		return 0, err
	}
	if err := e.state.EmissionsSetTotal(new(big.Int).Add(running, total)); err != nil {
		return 0, err
	}
	if err := e.state.EmissionsSetLastBlock(block); err != nil {
		return 0, err
	}
	if err := e.state.EmissionsSetNextCycle(cycle + 1); err != nil {
		return 0, err
	}

	if err := e.mintCycle(amounts); err != nil {
		return 0, err
	}
	if e.rounds != nil {
		if _, err := e.rounds.StartNewRound(proposer); err != nil {
			return 0, err
		}
	}

	e.emit(events.EmissionDistributed{
		Cycle:        cycle,
		XAllocations: amounts.XAllocations,
		Vote2Earn:    amounts.Vote2Earn,
		Treasury:     amounts.Treasury,
		Total:        total,
		Block:        block,
	})
	return cycle, nil
}

func (e *Engine) mintCycle(amounts *CycleAmounts) error {
	if amounts.XAllocations != nil && amounts.XAllocations.Sign() > 0 {
		if err := e.minter.Mint(e.destinations.XAllocations, amounts.XAllocations); err != nil {
			return err
		}
	}
	if amounts.Vote2Earn != nil && amounts.Vote2Earn.Sign() > 0 {
		if err := e.minter.Mint(e.destinations.Vote2Earn, amounts.Vote2Earn); err != nil {
			return err
		}
	}
	if amounts.Treasury != nil && amounts.Treasury.Sign() > 0 {
		if err := e.minter.Mint(e.destinations.Treasury, amounts.Treasury); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkRemainingSupply(required *big.Int) error {
	supplyCap, err := e.minter.Cap()
	if err != nil {
		return err
	}
	if supplyCap == nil || supplyCap.Sign() == 0 {
		return nil
	}
	supply, err := e.minter.TotalSupply()
	if err != nil {
		return err
	}
	remaining := new(big.Int).Sub(supplyCap, supply)
	if required.Cmp(remaining) > 0 {
		return fmt.Errorf("%w: required %s, remaining %s", ErrEmissionExceedsCap, required, remaining)
	}
	return nil
}

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
