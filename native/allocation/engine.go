package allocation

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/events"
	"vebetterdao/native/checkpoints"
)

// QuorumDenominator is the denominator of the checkpointed quorum fraction.
const QuorumDenominator = 100

// Params carries the allocation-voting knobs applied to newly created rounds.
type Params struct {
	VotingPeriod             uint64
	VotingThreshold          *big.Int
	QuorumNumerator          uint64
	AppSharesCap             uint64
	BaseAllocationPercentage uint64
}

// DefaultParams mirrors the launch allocation settings: a twenty percent app
// shares cap and a 40% participation quorum.
func DefaultParams() Params {
	threshold, _ := new(big.Int).SetString("1000000000000000000", 10)
	return Params{
		VotingPeriod:             6 * 60 * 24 / 10,
		VotingThreshold:          threshold,
		QuorumNumerator:          40,
		AppSharesCap:             20,
		BaseAllocationPercentage: 30,
	}
}

// Validate bounds the percentages and requires a positive voting window.
func (p Params) Validate() error {
	if p.VotingPeriod == 0 {
		return fmt.Errorf("allocation: voting period must be positive")
	}
	if p.QuorumNumerator > QuorumDenominator {
		return fmt.Errorf("allocation: quorum numerator %d exceeds denominator %d", p.QuorumNumerator, QuorumDenominator)
	}
	if p.AppSharesCap > 100 {
		return fmt.Errorf("allocation: app shares cap %d exceeds 100", p.AppSharesCap)
	}
	if p.BaseAllocationPercentage > 100 {
		return fmt.Errorf("allocation: base allocation percentage %d exceeds 100", p.BaseAllocationPercentage)
	}
	return nil
}

// RoundsState is the persistence contract for round metadata and tallies.
type RoundsState interface {
	AllocationRoundCount() (uint64, error)
	AllocationSetRoundCount(count uint64) error
	AllocationPutRound(round *Round) error
	AllocationGetRound(id uint64) (*Round, bool, error)

	AllocationAppVotes(roundID uint64, appID common.Hash) (*AppVotes, error)
	AllocationPutAppVotes(roundID uint64, appID common.Hash, votes *AppVotes) error
	AllocationRoundTotals(roundID uint64) (votes *big.Int, votesQF *big.Int, err error)
	AllocationSetRoundTotals(roundID uint64, votes *big.Int, votesQF *big.Int) error
	AllocationHasVoted(roundID uint64, voter common.Address) (bool, error)
	AllocationSetHasVoted(roundID uint64, voter common.Address) error

	AllocationFinalization(roundID uint64) (pointer uint64, finalized bool, err error)
	AllocationPutFinalization(roundID uint64, pointer uint64) error

	AllocationQuorumTrace() (*checkpoints.Trace, error)
	AllocationPutQuorumTrace(trace *checkpoints.Trace) error
}

// VotingToken exposes the historical voting-power lookups the engine needs.
// Lookups for a future timepoint must fail.
type VotingToken interface {
	GetPastVotes(account common.Address, timepoint uint64) (*big.Int, error)
	GetPastTotalSupply(timepoint uint64) (*big.Int, error)
}

// AppSource supplies the currently eligible app ids snapshotted into new
// rounds.
type AppSource interface {
	AllEligibleApps(timepoint uint64) ([]common.Hash, error)
}

// VoteRegistrar receives each ballot's reward-relevant weights. Nil disables
// rewards forwarding.
type VoteRegistrar interface {
	RegisterVote(id common.Hash, voter common.Address, votes *big.Int, votePower *big.Int) error
}

// Engine manages the one-active-round-at-a-time allocation voting state
// machine.
type Engine struct {
	state     RoundsState
	token     VotingToken
	apps      AppSource
	registrar VoteRegistrar
	emitter   events.Emitter
	blockFn   func() uint64
	params    Params
}

// NewEngine constructs an allocation voting engine with no-op dependencies.
func NewEngine(params Params) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 0 },
		params:  params,
	}
}

// SetState wires the engine to its persistence backend.
func (e *Engine) SetState(state RoundsState) { e.state = state }

// SetToken wires the voting-power token collaborator.
func (e *Engine) SetToken(token VotingToken) { e.token = token }

// SetAppSource wires the app registry used for round snapshots.
func (e *Engine) SetAppSource(apps AppSource) { e.apps = apps }

// SetVoteRegistrar wires the voter-rewards collaborator.
func (e *Engine) SetVoteRegistrar(registrar VoteRegistrar) { e.registrar = registrar }

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

// Params returns the configured allocation-voting parameters.
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

// CurrentRoundID returns the id of the most recently created round, zero when
// no round has been started.
func (e *Engine) CurrentRoundID() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrStateNotConfigured
	}
	return e.state.AllocationRoundCount()
}

// GetRound loads a round by id.
func (e *Engine) GetRound(id uint64) (*Round, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	round, ok, err := e.state.AllocationGetRound(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoundNotFound, id)
	}
	return round, nil
}

// StartNewRound creates the next round: the previous round (if any) is
// finalized first, then the currently eligible app set and earnings caps are
// frozen into the new round. Callers are expected to be the emissions
// scheduler; authorization happens at the node boundary.
func (e *Engine) StartNewRound(proposer common.Address) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrStateNotConfigured
	}
	count, err := e.state.AllocationRoundCount()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		if err := e.FinalizeRound(count); err != nil {
			return 0, err
		}
	}

	block := e.block()
	var eligible []common.Hash
	if e.apps != nil {
		eligible, err = e.apps.AllEligibleApps(block)
		if err != nil {
			return 0, err
		}
	}
	round := &Round{
		ID:                       count + 1,
		Proposer:                 proposer,
		VoteStart:                block,
		VoteDuration:             e.params.VotingPeriod,
		EligibleApps:             eligible,
		AppSharesCap:             e.params.AppSharesCap,
		BaseAllocationPercentage: e.params.BaseAllocationPercentage,
	}
	if err := e.state.AllocationPutRound(round); err != nil {
		return 0, err
	}
	if err := e.state.AllocationSetRoundCount(round.ID); err != nil {
		return 0, err
	}

	e.emit(events.RoundCreated{
		Round:        round.ID,
		Proposer:     proposer,
		VoteStart:    round.VoteStart,
		VoteEnd:      round.VoteEnd(),
		EligibleApps: round.EligibleApps,
	})
	return round.ID, nil
}

// RoundStateOf derives the round's lifecycle state from the current block and
// the recorded tallies.
func (e *Engine) RoundStateOf(id uint64) (RoundState, error) {
	round, err := e.GetRound(id)
	if err != nil {
		return RoundStateFailed, err
	}
	if e.block() <= round.VoteEnd() {
		return RoundStateActive, nil
	}
	reached, err := e.quorumReached(round)
	if err != nil {
		return RoundStateFailed, err
	}
	if reached {
		return RoundStateSucceeded, nil
	}
	return RoundStateFailed, nil
}

// Quorum returns the vote total required for a round starting at the supplied
// block: the checkpointed quorum fraction applied to the historical token
// supply.
func (e *Engine) Quorum(timepoint uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	if e.token == nil {
		return nil, ErrTokenNotConfigured
	}
	supply, err := e.token.GetPastTotalSupply(timepoint)
	if err != nil {
		return nil, err
	}
	numerator, err := e.quorumNumeratorAt(timepoint)
	if err != nil {
		return nil, err
	}
	quorum := new(big.Int).Mul(supply, new(big.Int).SetUint64(numerator))
	return quorum.Quo(quorum, big.NewInt(QuorumDenominator)), nil
}

// UpdateQuorumNumerator checkpoints a new quorum fraction at the current
// block. In-flight rounds keep the fraction recorded at their start.
func (e *Engine) UpdateQuorumNumerator(numerator uint64) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if numerator > QuorumDenominator {
		return fmt.Errorf("allocation: quorum numerator %d exceeds denominator %d", numerator, QuorumDenominator)
	}
	trace, err := e.state.AllocationQuorumTrace()
	if err != nil {
		return err
	}
	prev, _, err := trace.Push(e.block(), new(big.Int).SetUint64(numerator))
	if err != nil {
		return err
	}
	if err := e.state.AllocationPutQuorumTrace(trace); err != nil {
		return err
	}
	e.emit(events.ThresholdUpdated{
		Kind:     "allocation.quorum_numerator_updated",
		Previous: prev,
		Current:  new(big.Int).SetUint64(numerator),
	})
	return nil
}

func (e *Engine) quorumNumeratorAt(timepoint uint64) (uint64, error) {
	trace, err := e.state.AllocationQuorumTrace()
	if err != nil {
		return 0, err
	}
	if trace.Len() == 0 {
		return e.params.QuorumNumerator, nil
	}
	first, err := trace.At(0)
	if err != nil {
		return 0, err
	}
	// Timepoints before the first checkpoint fall back to the configured
	// default rather than reading a zero quorum.
	if timepoint < first.Key {
		return e.params.QuorumNumerator, nil
	}
	return trace.UpperLookupRecent(timepoint).Uint64(), nil
}

func (e *Engine) quorumReached(round *Round) (bool, error) {
	votes, _, err := e.state.AllocationRoundTotals(round.ID)
	if err != nil {
		return false, err
	}
	quorum, err := e.Quorum(round.VoteStart)
	if err != nil {
		return false, err
	}
	return votes.Cmp(quorum) >= 0, nil
}

// FinalizeRound records the round's outcome pointer. Failed rounds point at
// the most recent prior succeeded round so reward shares keep using
// stale-but-valid tallies; round one always counts as succeeded for pointer
// purposes. Finalizing an already-finalized round is a no-op.
func (e *Engine) FinalizeRound(id uint64) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if _, finalized, err := e.state.AllocationFinalization(id); err != nil {
		return err
	} else if finalized {
		return nil
	}
	state, err := e.RoundStateOf(id)
	if err != nil {
		return err
	}
	if state == RoundStateActive {
		return fmt.Errorf("%w: %d", ErrRoundStillActive, id)
	}

	pointer := id
	if state == RoundStateFailed {
		pointer, err = e.lastSucceededBefore(id)
		if err != nil {
			return err
		}
	}
	if err := e.state.AllocationPutFinalization(id, pointer); err != nil {
		return err
	}
	e.emit(events.RoundFinalized{Round: id, State: state.String(), LastSucceeded: pointer})
	return nil
}

// SharesRoundFor resolves the round whose tallies apply when computing reward
// shares for the supplied round: the round itself while active or succeeded,
// otherwise the finalization pointer (computed on the fly when the round has
// not been finalized yet).
func (e *Engine) SharesRoundFor(id uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrStateNotConfigured
	}
	if pointer, finalized, err := e.state.AllocationFinalization(id); err != nil {
		return 0, err
	} else if finalized {
		return pointer, nil
	}
	state, err := e.RoundStateOf(id)
	if err != nil {
		return 0, err
	}
	if state == RoundStateFailed {
		return e.lastSucceededBefore(id)
	}
	return id, nil
}

func (e *Engine) lastSucceededBefore(id uint64) (uint64, error) {
	for prev := id - 1; prev >= 1; prev-- {
		if prev == 1 {
			return 1, nil
		}
		state, err := e.RoundStateOf(prev)
		if err != nil {
			return 0, err
		}
		if state == RoundStateSucceeded {
			return prev, nil
		}
	}
	return 1, nil
}

// CastVotes records a voter's per-app weight distribution for an active round.
// Exactly one ballot per voter per round; only apps in the round's frozen
// snapshot may receive weight; the voter's historical power at the round
// snapshot must meet the threshold and cover the distributed total.
func (e *Engine) CastVotes(roundID uint64, voter common.Address, apps []common.Hash, weights []*big.Int) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if e.token == nil {
		return ErrTokenNotConfigured
	}
	if len(apps) == 0 || len(apps) != len(weights) {
		return fmt.Errorf("%w: %d apps, %d weights", ErrInvalidBallot, len(apps), len(weights))
	}
	round, err := e.GetRound(roundID)
	if err != nil {
		return err
	}
	state, err := e.RoundStateOf(roundID)
	if err != nil {
		return err
	}
	if state != RoundStateActive {
		return fmt.Errorf("%w: round %d is %s", ErrRoundNotActive, roundID, state)
	}
	voted, err := e.state.AllocationHasVoted(roundID, voter)
	if err != nil {
		return err
	}
	if voted {
		return fmt.Errorf("%w: round %d voter %s", ErrAlreadyVoted, roundID, voter.Hex())
	}

	power, err := e.token.GetPastVotes(voter, round.VoteStart)
	if err != nil {
		return err
	}
	if e.params.VotingThreshold != nil && power.Cmp(e.params.VotingThreshold) < 0 {
		return fmt.Errorf("%w: power %s, threshold %s", ErrBelowThreshold, power, e.params.VotingThreshold)
	}

	total := big.NewInt(0)
	for i, appID := range apps {
		if !round.IsEligible(appID) {
			return fmt.Errorf("%w: round %d app %s", ErrAppNotEligible, roundID, appID.Hex())
		}
		if weights[i] == nil || weights[i].Sign() < 0 {
			return fmt.Errorf("%w: negative weight", ErrInvalidBallot)
		}
		total.Add(total, weights[i])
	}
	if total.Cmp(power) > 0 {
		return fmt.Errorf("%w: total %s, power %s", ErrWeightExceedsPower, total, power)
	}

	// Ballot flag first: the vote is committed before tallies and external
	// forwarding so a reentrant call cannot double count.
	if err := e.state.AllocationSetHasVoted(roundID, voter); err != nil {
		return err
	}

	totalVotes, totalQF, err := e.state.AllocationRoundTotals(roundID)
	if err != nil {
		return err
	}
	for i, appID := range apps {
		if weights[i].Sign() == 0 {
			continue
		}
		tally, err := e.state.AllocationAppVotes(roundID, appID)
		if err != nil {
			return err
		}
		tally = tally.Clone()
		oldQFSquared := new(big.Int).Mul(tally.VotesQF, tally.VotesQF)
		tally.Votes.Add(tally.Votes, weights[i])
		tally.VotesQF.Add(tally.VotesQF, new(big.Int).Sqrt(weights[i]))
		newQFSquared := new(big.Int).Mul(tally.VotesQF, tally.VotesQF)
		if err := e.state.AllocationPutAppVotes(roundID, appID, tally); err != nil {
			return err
		}
		totalQF.Add(totalQF, new(big.Int).Sub(newQFSquared, oldQFSquared))
	}
	totalVotes.Add(totalVotes, total)
	if err := e.state.AllocationSetRoundTotals(roundID, totalVotes, totalQF); err != nil {
		return err
	}

	if e.registrar != nil {
		sqrtTotal := new(big.Int).Sqrt(total)
		if err := e.registrar.RegisterVote(common.BigToHash(new(big.Int).SetUint64(roundID)), voter, total, sqrtTotal); err != nil {
			return err
		}
	}

	e.emit(events.AllocationVoteCast{
		Round:   roundID,
		Voter:   voter,
		Apps:    apps,
		Weights: weights,
		Weight:  total,
	})
	return nil
}

// AppVotesOf returns the recorded tallies for an app within a round.
func (e *Engine) AppVotesOf(roundID uint64, appID common.Hash) (*AppVotes, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	tally, err := e.state.AllocationAppVotes(roundID, appID)
	if err != nil {
		return nil, err
	}
	return tally.Clone(), nil
}

// RoundTotals returns the aggregate vote weight and quadratic-funding
// denominator recorded for a round.
func (e *Engine) RoundTotals(roundID uint64) (*big.Int, *big.Int, error) {
	if e == nil || e.state == nil {
		return nil, nil, ErrStateNotConfigured
	}
	return e.state.AllocationRoundTotals(roundID)
}

// HasVoted reports whether the voter has already cast a ballot in the round.
func (e *Engine) HasVoted(roundID uint64, voter common.Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	return e.state.AllocationHasVoted(roundID, voter)
}
