package voterrewards

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/events"
	"vebetterdao/native/checkpoints"
)

const (
	// QuadraticScale restores 1e18 precision after the integer square root
	// halved the exponent of the vote weight.
	QuadraticScale = 1_000_000_000
	// ClaimScale pre-scales the claim numerator so the proportional division
	// does not drop precision.
	ClaimScale = 1_000_000
	// MultiplierDenominator scales the galaxy-member level multiplier, which
	// is expressed in whole percent.
	MultiplierDenominator = 100
)

// RewardsState persists cycle accrual totals, the NFT/node vote guards, and
// the quadratic-rewarding toggle.
type RewardsState interface {
	RewardsCycleTotal(cycle uint64) (*big.Int, error)
	SetRewardsCycleTotal(cycle uint64, total *big.Int) error
	RewardsVoterTotal(cycle uint64, voter common.Address) (*big.Int, error)
	SetRewardsVoterTotal(cycle uint64, voter common.Address, total *big.Int) error
	RewardsTokenVoted(proposalID common.Hash, tokenID uint64) (bool, error)
	SetRewardsTokenVoted(proposalID common.Hash, tokenID uint64) error
	RewardsNodeVoted(proposalID common.Hash, nodeID uint64) (bool, error)
	SetRewardsNodeVoted(proposalID common.Hash, nodeID uint64) error
	QuadraticRewardingFlag() (*checkpoints.Flag, error)
	PutQuadraticRewardingFlag(flag *checkpoints.Flag) error
}

// CycleSource is the slice of the emission scheduler the accrual engine reads:
// the current cycle, cycle boundaries, and the vote-2-earn emission to split.
type CycleSource interface {
	CurrentCycle() (uint64, error)
	CycleStartBlock(cycle uint64) (uint64, error)
	IsCycleEnded(cycle uint64) (bool, error)
	Vote2EarnAmount(cycle uint64) (*big.Int, error)
}

// GalaxyMemberSource resolves a voter's selected NFT, its level multiplier,
// and any delegation node attached to it.
type GalaxyMemberSource interface {
	SelectedToken(owner common.Address) (tokenID uint64, exists bool, err error)
	LevelMultiplier(tokenID uint64) (uint64, error)
	AttachedNode(tokenID uint64) (nodeID uint64, exists bool, err error)
}

// Funds abstracts the reward pot's token custody.
type Funds interface {
	Balance() (*big.Int, error)
	Transfer(to common.Address, amount *big.Int) error
}

// Engine accrues quadratic-weighted voting activity into per-cycle reward
// pools and pays out proportional claims once a cycle ends.
type Engine struct {
	state   RewardsState
	cycles  CycleSource
	galaxy  GalaxyMemberSource
	funds   Funds
	emitter events.Emitter
	blockFn func() uint64
}

// NewEngine constructs an accrual engine with no-op dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 0 },
	}
}

// SetState wires the persistence backend.
func (e *Engine) SetState(state RewardsState) { e.state = state }

// SetCycleSource wires the emission-scheduler collaborator.
func (e *Engine) SetCycleSource(cycles CycleSource) { e.cycles = cycles }

// SetGalaxySource wires the NFT-multiplier collaborator. Nil disables
// multipliers.
func (e *Engine) SetGalaxySource(galaxy GalaxyMemberSource) { e.galaxy = galaxy }

// SetFunds wires the reward pot's token custody.
func (e *Engine) SetFunds(funds Funds) { e.funds = funds }

// SetEmitter configures the event emitter. Nil resets to a no-op emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetBlockFunc overrides the block height source.
func (e *Engine) SetBlockFunc(fn func() uint64) {
	if fn == nil {
		e.blockFn = func() uint64 { return 0 }
		return
	}
	e.blockFn = fn
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

// IsQuadraticRewardingEnabledAt reports the checkpointed toggle as of the
// supplied timepoint.
func (e *Engine) IsQuadraticRewardingEnabledAt(timepoint uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	flag, err := e.state.QuadraticRewardingFlag()
	if err != nil {
		return false, err
	}
	return flag.EnabledAt(timepoint), nil
}

// ToggleQuadraticRewarding flips the checkpointed quadratic-rewarding flag at
// the current block. A cycle's accrual mode is fixed at its start block.
func (e *Engine) ToggleQuadraticRewarding() (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	flag, err := e.state.QuadraticRewardingFlag()
	if err != nil {
		return false, err
	}
	previous := flag.Enabled()
	block := e.blockFn()
	next, err := flag.Toggle(block)
	if err != nil {
		return false, err
	}
	if err := e.state.PutQuadraticRewardingFlag(flag); err != nil {
		return false, err
	}
	e.emit(events.FlagToggled{
		Kind:     events.EventQuadraticRewardingToggled,
		Block:    block,
		Previous: previous,
		Current:  next,
	})
	return next, nil
}

// RegisterVote accrues a governor or allocation vote into the current cycle's
// reward pool. Zero vote power is a silent no-op. The base weight is the
// quadratic power scaled to 1e18 when quadratic rewarding was enabled at the
// cycle start, the raw vote weight otherwise; a galaxy-member level multiplier
// applies once per (NFT, proposal) and (node, proposal) pair.
func (e *Engine) RegisterVote(proposalID common.Hash, voter common.Address, votes *big.Int, votePower *big.Int) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if e.cycles == nil {
		return ErrCyclesNotConfigured
	}
	if votePower == nil || votePower.Sign() == 0 {
		return nil
	}

	cycle, err := e.cycles.CurrentCycle()
	if err != nil {
		return err
	}
	start, err := e.cycles.CycleStartBlock(cycle)
	if err != nil {
		return err
	}
	quadratic, err := e.IsQuadraticRewardingEnabledAt(start)
	if err != nil {
		return err
	}

	var scaled *big.Int
	if quadratic {
		scaled = new(big.Int).Mul(votePower, big.NewInt(QuadraticScale))
	} else {
		scaled = new(big.Int).Set(votes)
	}

	multiplier, err := e.resolveMultiplier(proposalID, voter)
	if err != nil {
		return err
	}
	weighted := new(big.Int).Set(scaled)
	if multiplier > 0 {
		bonus := new(big.Int).Mul(scaled, new(big.Int).SetUint64(multiplier))
		bonus.Quo(bonus, big.NewInt(MultiplierDenominator))
		weighted.Add(weighted, bonus)
	}

	cycleTotal, err := e.state.RewardsCycleTotal(cycle)
	if err != nil {
		return err
	}
	cycleTotal = new(big.Int).Add(cycleTotal, weighted)
	if err := e.state.SetRewardsCycleTotal(cycle, cycleTotal); err != nil {
		return err
	}
	voterTotal, err := e.state.RewardsVoterTotal(cycle, voter)
	if err != nil {
		return err
	}
	if err := e.state.SetRewardsVoterTotal(cycle, voter, new(big.Int).Add(voterTotal, weighted)); err != nil {
		return err
	}

	e.emit(events.VoteRegistered{
		Cycle:      cycle,
		Voter:      voter,
		Votes:      votes,
		Weighted:   weighted,
		CycleTotal: cycleTotal,
	})
	return nil
}

// resolveMultiplier returns the level multiplier of the voter's selected NFT,
// but only when neither the NFT nor its attached node already earned the
// multiplier on this proposal. Both guards are marked regardless of each
// other so a token/node pair cannot split across voters.
func (e *Engine) resolveMultiplier(proposalID common.Hash, voter common.Address) (uint64, error) {
	if e.galaxy == nil {
		return 0, nil
	}
	tokenID, exists, err := e.galaxy.SelectedToken(voter)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	tokenVoted, err := e.state.RewardsTokenVoted(proposalID, tokenID)
	if err != nil {
		return 0, err
	}
	nodeID, hasNode, err := e.galaxy.AttachedNode(tokenID)
	if err != nil {
		return 0, err
	}
	nodeVoted := false
	if hasNode {
		nodeVoted, err = e.state.RewardsNodeVoted(proposalID, nodeID)
		if err != nil {
			return 0, err
		}
	}
	if err := e.state.SetRewardsTokenVoted(proposalID, tokenID); err != nil {
		return 0, err
	}
	if hasNode {
		if err := e.state.SetRewardsNodeVoted(proposalID, nodeID); err != nil {
			return 0, err
		}
	}
	if tokenVoted || nodeVoted {
		return 0, nil
	}
	return e.galaxy.LevelMultiplier(tokenID)
}

// CycleTotal returns the accrued reward weight across all voters in a cycle.
func (e *Engine) CycleTotal(cycle uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	return e.state.RewardsCycleTotal(cycle)
}

// VoterTotal returns a voter's accrued reward weight in a cycle.
func (e *Engine) VoterTotal(cycle uint64, voter common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	return e.state.RewardsVoterTotal(cycle, voter)
}

// RewardAmount previews the voter's proportional claim for a cycle. The
// numerator is pre-scaled so the two divisions do not compound rounding loss.
func (e *Engine) RewardAmount(cycle uint64, voter common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	if e.cycles == nil {
		return nil, ErrCyclesNotConfigured
	}
	cycleTotal, err := e.state.RewardsCycleTotal(cycle)
	if err != nil {
		return nil, err
	}
	if cycleTotal.Sign() == 0 {
		return big.NewInt(0), nil
	}
	voterTotal, err := e.state.RewardsVoterTotal(cycle, voter)
	if err != nil {
		return nil, err
	}
	if voterTotal.Sign() == 0 {
		return big.NewInt(0), nil
	}
	emission, err := e.cycles.Vote2EarnAmount(cycle)
	if err != nil {
		return nil, err
	}
	reward := new(big.Int).Mul(voterTotal, emission)
	reward.Mul(reward, big.NewInt(ClaimScale))
	reward.Quo(reward, cycleTotal)
	reward.Quo(reward, big.NewInt(ClaimScale))
	return reward, nil
}

// ClaimReward pays out a voter's share of a finished cycle exactly once. The
// voter's accrual is zeroed before the transfer so a callback cannot claim
// twice.
func (e *Engine) ClaimReward(cycle uint64, voter common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	if e.cycles == nil {
		return nil, ErrCyclesNotConfigured
	}
	if e.funds == nil {
		return nil, ErrFundsNotConfigured
	}
	ended, err := e.cycles.IsCycleEnded(cycle)
	if err != nil {
		return nil, err
	}
	if !ended {
		return nil, fmt.Errorf("%w: cycle %d", ErrCycleNotEnded, cycle)
	}
	reward, err := e.RewardAmount(cycle, voter)
	if err != nil {
		return nil, err
	}
	if reward.Sign() == 0 {
		return nil, fmt.Errorf("%w: cycle %d voter %s", ErrNothingToClaim, cycle, voter.Hex())
	}
	balance, err := e.funds.Balance()
	if err != nil {
		return nil, err
	}
	if balance.Cmp(reward) < 0 {
		return nil, fmt.Errorf("%w: need %s, have %s", ErrInsufficientBalance, reward, balance)
	}

	// Zero the accrual before the transfer.
	if err := e.state.SetRewardsVoterTotal(cycle, voter, big.NewInt(0)); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(voter, reward); err != nil {
		return nil, err
	}

	e.emit(events.RewardClaimed{Cycle: cycle, Voter: voter, Amount: reward})
	return reward, nil
}
