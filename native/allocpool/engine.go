package allocpool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/events"
	"vebetterdao/native/allocation"
)

const (
	// ShareDenominator expresses app shares in hundredths of a percent.
	ShareDenominator = 10_000
	// PercentDenominator scales whole-percent parameters.
	PercentDenominator = 100
)

// Earnings is the computed four-way breakdown of an app's round allocation.
// TotalAmount is the base plus variable allocation before the team split, so
// TeamAmount + PoolAmount always equals TotalAmount.
type Earnings struct {
	TotalAmount       *big.Int
	TeamAmount        *big.Int
	PoolAmount        *big.Int
	UnallocatedAmount *big.Int
}

func zeroEarnings() *Earnings {
	return &Earnings{
		TotalAmount:       big.NewInt(0),
		TeamAmount:        big.NewInt(0),
		PoolAmount:        big.NewInt(0),
		UnallocatedAmount: big.NewInt(0),
	}
}

// Clone returns a deep copy of the earnings with nil fields zeroed.
func (e *Earnings) Clone() *Earnings {
	clone := zeroEarnings()
	if e == nil {
		return clone
	}
	if e.TotalAmount != nil {
		clone.TotalAmount = new(big.Int).Set(e.TotalAmount)
	}
	if e.TeamAmount != nil {
		clone.TeamAmount = new(big.Int).Set(e.TeamAmount)
	}
	if e.PoolAmount != nil {
		clone.PoolAmount = new(big.Int).Set(e.PoolAmount)
	}
	if e.UnallocatedAmount != nil {
		clone.UnallocatedAmount = new(big.Int).Set(e.UnallocatedAmount)
	}
	return clone
}

// PoolState persists the per-(round, app) claimed flags.
type PoolState interface {
	AllocationClaimed(roundID uint64, appID common.Hash) (bool, error)
	SetAllocationClaimed(roundID uint64, appID common.Hash) error
}

// RoundReader is the slice of the allocation-voting engine the pool consumes:
// round snapshots, derived states, the finalization pointer, and tallies.
type RoundReader interface {
	GetRound(id uint64) (*allocation.Round, error)
	RoundStateOf(id uint64) (allocation.RoundState, error)
	SharesRoundFor(id uint64) (uint64, error)
	AppVotesOf(roundID uint64, appID common.Hash) (*allocation.AppVotes, error)
	RoundTotals(roundID uint64) (*big.Int, *big.Int, error)
}

// EmissionSource resolves the app-allocation emission of the cycle matching a
// round id. Rounds and cycles share a number line.
type EmissionSource interface {
	XAllocationsAmount(cycle uint64) (*big.Int, error)
}

// AppRegistry answers existence and team-split queries for app ids.
type AppRegistry interface {
	AppExists(id common.Hash) (bool, error)
	TeamWalletAddress(id common.Hash) (common.Address, error)
	TeamAllocationPercentage(id common.Hash) (uint64, error)
}

// Funds abstracts the pool's own token custody.
type Funds interface {
	Balance() (*big.Int, error)
	Transfer(to common.Address, amount *big.Int) error
}

// RewardsSink receives the app's pool-side allocation for later
// sustainability-reward distribution.
type RewardsSink interface {
	Deposit(amount *big.Int, appID common.Hash) error
}

// Engine computes and pays out each app's proportional share of a round's
// emission: quadratic-funding shares capped with spillover to treasury, an
// equal-split base allocation, and a per-app team percentage.
type Engine struct {
	state     PoolState
	rounds    RoundReader
	emissions EmissionSource
	registry  AppRegistry
	funds     Funds
	sink      RewardsSink
	treasury  common.Address
	emitter   events.Emitter
}

// NewEngine constructs a pool engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState wires the claimed-flag persistence backend.
func (e *Engine) SetState(state PoolState) { e.state = state }

// SetRoundReader wires the allocation-voting collaborator.
func (e *Engine) SetRoundReader(rounds RoundReader) { e.rounds = rounds }

// SetEmissionSource wires the emission-scheduler collaborator.
func (e *Engine) SetEmissionSource(emissions EmissionSource) { e.emissions = emissions }

// SetAppRegistry wires the app-registry collaborator.
func (e *Engine) SetAppRegistry(registry AppRegistry) { e.registry = registry }

// SetFunds wires the pool's token custody.
func (e *Engine) SetFunds(funds Funds) { e.funds = funds }

// SetRewardsSink wires the sustainability-rewards destination.
func (e *Engine) SetRewardsSink(sink RewardsSink) { e.sink = sink }

// SetTreasury configures the destination for unallocated spillover.
func (e *Engine) SetTreasury(treasury common.Address) { e.treasury = treasury }

// SetEmitter configures the event emitter. Nil resets to a no-op emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

// AppShares returns the app's allocation share and the spillover above the
// round's cap, both in hundredths of a percent. Shares are computed against
// the round whose tallies apply: the round itself while it is active or
// succeeded, otherwise the round recorded by finalization.
func (e *Engine) AppShares(roundID uint64, appID common.Hash) (share uint64, unallocated uint64, err error) {
	if e == nil || e.rounds == nil {
		return 0, 0, ErrRoundsNotConfigured
	}
	round, err := e.rounds.GetRound(roundID)
	if err != nil {
		return 0, 0, err
	}
	if !round.IsEligible(appID) {
		return 0, 0, nil
	}
	sharesRound, err := e.rounds.SharesRoundFor(roundID)
	if err != nil {
		return 0, 0, err
	}
	appVotes, err := e.rounds.AppVotesOf(sharesRound, appID)
	if err != nil {
		return 0, 0, err
	}
	_, totalQF, err := e.rounds.RoundTotals(sharesRound)
	if err != nil {
		return 0, 0, err
	}
	if totalQF == nil || totalQF.Sign() == 0 {
		return 0, 0, nil
	}

	// share = appQF^2 * 1e4 / sum(appQF^2), then capped.
	appQF := appVotes.VotesQF
	raw := new(big.Int).Mul(appQF, appQF)
	raw.Mul(raw, big.NewInt(ShareDenominator))
	raw.Quo(raw, totalQF)
	rawShare := raw.Uint64()

	capShare := round.AppSharesCap * PercentDenominator
	if rawShare > capShare {
		return capShare, rawShare - capShare, nil
	}
	return rawShare, 0, nil
}

// RoundEarnings computes the full payout breakdown for an app in a round
// without mutating state. Ineligible apps earn zero across the board.
func (e *Engine) RoundEarnings(roundID uint64, appID common.Hash) (*Earnings, error) {
	if e == nil || e.rounds == nil {
		return nil, ErrRoundsNotConfigured
	}
	if e.emissions == nil {
		return nil, ErrEmissionsNotConfigured
	}
	if e.registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	round, err := e.rounds.GetRound(roundID)
	if err != nil {
		return nil, err
	}
	if !round.IsEligible(appID) {
		return zeroEarnings(), nil
	}
	share, unallocatedShare, err := e.AppShares(roundID, appID)
	if err != nil {
		return nil, err
	}
	emission, err := e.emissions.XAllocationsAmount(roundID)
	if err != nil {
		return nil, err
	}

	basePct := new(big.Int).SetUint64(round.BaseAllocationPercentage)
	basePool := new(big.Int).Mul(emission, basePct)
	basePool.Quo(basePool, big.NewInt(PercentDenominator))
	base := big.NewInt(0)
	if n := len(round.EligibleApps); n > 0 {
		base = new(big.Int).Quo(basePool, big.NewInt(int64(n)))
	}

	variablePool := new(big.Int).Sub(emission, basePool)
	variable := new(big.Int).Mul(variablePool, new(big.Int).SetUint64(share))
	variable.Quo(variable, big.NewInt(ShareDenominator))
	unallocated := new(big.Int).Mul(variablePool, new(big.Int).SetUint64(unallocatedShare))
	unallocated.Quo(unallocated, big.NewInt(ShareDenominator))

	total := new(big.Int).Add(base, variable)

	teamPct, err := e.registry.TeamAllocationPercentage(appID)
	if err != nil {
		return nil, err
	}
	team := new(big.Int).Mul(total, new(big.Int).SetUint64(teamPct))
	team.Quo(team, big.NewInt(PercentDenominator))
	pool := new(big.Int).Sub(total, team)

	return &Earnings{
		TotalAmount:       total,
		TeamAmount:        team,
		PoolAmount:        pool,
		UnallocatedAmount: unallocated,
	}, nil
}

// Claimed reports whether the (round, app) pair already claimed.
func (e *Engine) Claimed(roundID uint64, appID common.Hash) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	return e.state.AllocationClaimed(roundID, appID)
}

// ClaimableAmount previews what Claim would transfer: zero once claimed or
// while the round is still active, the earnings breakdown otherwise.
func (e *Engine) ClaimableAmount(roundID uint64, appID common.Hash) (*Earnings, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	claimed, err := e.state.AllocationClaimed(roundID, appID)
	if err != nil {
		return nil, err
	}
	if claimed {
		return zeroEarnings(), nil
	}
	state, err := e.rounds.RoundStateOf(roundID)
	if err != nil {
		return nil, err
	}
	if state == allocation.RoundStateActive {
		return zeroEarnings(), nil
	}
	return e.RoundEarnings(roundID, appID)
}

// Claim pays out an app's round earnings exactly once. The claimed flag is
// written before any transfer so a callback from a transfer target cannot
// claim again. The whole payout fails when the pool balance cannot cover it.
func (e *Engine) Claim(roundID uint64, appID common.Hash) (*Earnings, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	if e.funds == nil {
		return nil, ErrFundsNotConfigured
	}
	if e.sink == nil {
		return nil, ErrSinkNotConfigured
	}
	if e.registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	exists, err := e.registry.AppExists(appID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAppNotFound, appID.Hex())
	}
	state, err := e.rounds.RoundStateOf(roundID)
	if err != nil {
		return nil, err
	}
	if state == allocation.RoundStateActive {
		return nil, fmt.Errorf("%w: round %d", ErrRoundActive, roundID)
	}
	claimed, err := e.state.AllocationClaimed(roundID, appID)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, fmt.Errorf("%w: round %d app %s", ErrAlreadyClaimed, roundID, appID.Hex())
	}

	earnings, err := e.RoundEarnings(roundID, appID)
	if err != nil {
		return nil, err
	}
	required := new(big.Int).Add(earnings.TotalAmount, earnings.UnallocatedAmount)
	balance, err := e.funds.Balance()
	if err != nil {
		return nil, err
	}
	if balance.Cmp(required) < 0 {
		return nil, fmt.Errorf("%w: need %s, have %s", ErrInsufficientBalance, required, balance)
	}

	// Flag first, transfers after.
	if err := e.state.SetAllocationClaimed(roundID, appID); err != nil {
		return nil, err
	}

	if earnings.TeamAmount.Sign() > 0 {
		wallet, err := e.registry.TeamWalletAddress(appID)
		if err != nil {
			return nil, err
		}
		if err := e.funds.Transfer(wallet, earnings.TeamAmount); err != nil {
			return nil, err
		}
	}
	if earnings.PoolAmount.Sign() > 0 {
		if err := e.sink.Deposit(earnings.PoolAmount, appID); err != nil {
			return nil, err
		}
	}
	if earnings.UnallocatedAmount.Sign() > 0 {
		if err := e.funds.Transfer(e.treasury, earnings.UnallocatedAmount); err != nil {
			return nil, err
		}
	}

	e.emit(events.AppEarningsClaimed{
		Round:       roundID,
		AppID:       appID,
		Team:        earnings.TeamAmount,
		Pool:        earnings.PoolAmount,
		Unallocated: earnings.UnallocatedAmount,
	})
	return earnings, nil
}
