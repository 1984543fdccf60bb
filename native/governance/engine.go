package governance

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/core/events"
	"vebetterdao/native/checkpoints"
)

const (
	// QuadraticScale restores 1e18 precision after the integer square root
	// halves the exponent of an 18-decimal weight.
	QuadraticScale = 1_000_000_000
	// QuorumDenominator is the denominator of the checkpointed quorum
	// fraction.
	QuorumDenominator = 100
	// DepositThresholdDenominator scales the deposit threshold fraction in
	// basis points of the token supply.
	DepositThresholdDenominator = 10_000
)

// Params carries the governor's runtime knobs.
type Params struct {
	VotingThreshold     *big.Int
	QuorumNumerator     uint64
	DepositThresholdBps uint64
	TimelockDelay       uint64
}

// DefaultParams mirrors the launch governor settings: a 1-token voting
// threshold, 4% quorum, and a 2% supply deposit requirement.
func DefaultParams() Params {
	threshold, _ := new(big.Int).SetString("1000000000000000000", 10)
	return Params{
		VotingThreshold:     threshold,
		QuorumNumerator:     4,
		DepositThresholdBps: 200,
		TimelockDelay:       30,
	}
}

// Validate bounds the quorum and deposit fractions.
func (p Params) Validate() error {
	if p.QuorumNumerator > QuorumDenominator {
		return fmt.Errorf("governance: quorum numerator %d exceeds denominator %d", p.QuorumNumerator, QuorumDenominator)
	}
	if p.DepositThresholdBps > DepositThresholdDenominator {
		return fmt.Errorf("governance: deposit threshold %d exceeds %d bps", p.DepositThresholdBps, DepositThresholdDenominator)
	}
	return nil
}

// GovernorState is the persistence contract for proposals, tallies, deposits,
// and the checkpointed governor settings.
type GovernorState interface {
	GovernorGetProposal(id common.Hash) (*Proposal, bool, error)
	GovernorPutProposal(p *Proposal) error
	GovernorVotes(id common.Hash) (*ProposalVotes, error)
	GovernorPutVotes(id common.Hash, votes *ProposalVotes) error
	GovernorHasVoted(id common.Hash, voter common.Address) (bool, error)
	GovernorSetHasVoted(id common.Hash, voter common.Address) error
	GovernorDeposit(id common.Hash, depositor common.Address) (*big.Int, error)
	GovernorSetDeposit(id common.Hash, depositor common.Address, amount *big.Int) error
	GovernorQuadraticVotingFlag() (*checkpoints.Flag, error)
	GovernorPutQuadraticVotingFlag(flag *checkpoints.Flag) error
	GovernorQuorumTrace() (*checkpoints.Trace, error)
	GovernorPutQuorumTrace(trace *checkpoints.Trace) error
}

// VotingToken exposes the historical voting-power lookups the governor needs.
type VotingToken interface {
	GetPastVotes(account common.Address, timepoint uint64) (*big.Int, error)
	GetPastTotalSupply(timepoint uint64) (*big.Int, error)
}

// RoundSource couples proposals to allocation rounds: a proposal's voting
// window is the window of its start round, and its snapshot is that round's
// start block.
type RoundSource interface {
	CurrentRoundID() (uint64, error)
	RoundSnapshot(id uint64) (uint64, error)
	RoundDeadline(id uint64) (uint64, error)
}

// Personhood is the identity-attestation collaborator. The reason string is
// surfaced verbatim to callers when the attestation rejects a voter.
type Personhood interface {
	IsPersonAtTimepoint(account common.Address, timepoint uint64) (bool, string, error)
}

// TimelockStatus mirrors the operation lifecycle of the external timelock.
type TimelockStatus uint8

const (
	TimelockUnset TimelockStatus = iota
	TimelockWaiting
	TimelockReady
	TimelockDone
)

// Timelock is the external execution-delay collaborator. Operation ids are
// proposal ids.
type Timelock interface {
	OperationStatus(id common.Hash) (TimelockStatus, error)
	Schedule(id common.Hash, delay uint64) error
	Execute(id common.Hash) error
	Cancel(id common.Hash) error
}

// DepositVault moves proposal deposits in and out of governor custody.
type DepositVault interface {
	Lock(from common.Address, amount *big.Int) error
	Release(to common.Address, amount *big.Int) error
}

// VoteRegistrar receives (proposal, voter, weight, sqrt(weight)) for reward
// accrual after every successful cast.
type VoteRegistrar interface {
	RegisterVote(id common.Hash, voter common.Address, votes *big.Int, votePower *big.Int) error
}

// Engine implements the quadratic governor: deposit-gated proposals voted on
// during allocation rounds with a checkpointed quadratic-vs-linear toggle.
type Engine struct {
	state      GovernorState
	token      VotingToken
	rounds     RoundSource
	personhood Personhood
	timelock   Timelock
	vault      DepositVault
	registrar  VoteRegistrar
	emitter    events.Emitter
	blockFn    func() uint64
	params     Params
}

// NewEngine constructs a governor engine with no-op dependencies.
func NewEngine(params Params) *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 0 },
		params:  params,
	}
}

// SetState wires the engine to its persistence backend.
func (e *Engine) SetState(state GovernorState) { e.state = state }

// SetToken wires the voting-power token collaborator.
func (e *Engine) SetToken(token VotingToken) { e.token = token }

// SetRoundSource wires the allocation-round collaborator.
func (e *Engine) SetRoundSource(rounds RoundSource) { e.rounds = rounds }

// SetPersonhood wires the identity-attestation collaborator. Nil disables the
// check.
func (e *Engine) SetPersonhood(personhood Personhood) { e.personhood = personhood }

// SetTimelock wires the execution-delay collaborator. Nil makes succeeded
// proposals directly executable.
func (e *Engine) SetTimelock(timelock Timelock) { e.timelock = timelock }

// SetDepositVault wires the token custody used for proposal deposits.
func (e *Engine) SetDepositVault(vault DepositVault) { e.vault = vault }

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

// Params returns the configured governor parameters.
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

// Propose admits a new proposal scheduled to be voted during startRound. The
// deposit threshold is snapshotted from the token supply at admission time and
// never changes afterwards.
func (e *Engine) Propose(proposer common.Address, targets []common.Address, values []*big.Int, calldatas [][]byte, description string, startRound uint64) (common.Hash, error) {
	if e == nil || e.state == nil {
		return common.Hash{}, ErrStateNotConfigured
	}
	if e.token == nil {
		return common.Hash{}, ErrTokenNotConfigured
	}
	if e.rounds == nil {
		return common.Hash{}, ErrRoundsNotConfigured
	}
	if len(targets) == 0 || len(targets) != len(values) || len(targets) != len(calldatas) {
		return common.Hash{}, fmt.Errorf("%w: %d targets, %d values, %d calldatas", ErrInvalidPayload, len(targets), len(values), len(calldatas))
	}
	current, err := e.rounds.CurrentRoundID()
	if err != nil {
		return common.Hash{}, err
	}
	if startRound <= current {
		return common.Hash{}, fmt.Errorf("%w: start round %d not after current round %d", ErrInvalidPayload, startRound, current)
	}

	descriptionHash := HashDescription(description)
	id, err := HashProposal(targets, values, calldatas, descriptionHash)
	if err != nil {
		return common.Hash{}, err
	}
	if _, exists, err := e.state.GovernorGetProposal(id); err != nil {
		return common.Hash{}, err
	} else if exists {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrProposalExists, id.Hex())
	}

	threshold, err := e.depositThreshold()
	if err != nil {
		return common.Hash{}, err
	}
	proposal := &Proposal{
		ID:               id,
		Proposer:         proposer,
		Targets:          targets,
		Values:           values,
		Calldatas:        calldatas,
		DescriptionHash:  descriptionHash,
		StartRound:       startRound,
		DepositThreshold: threshold,
		DepositTotal:     big.NewInt(0),
	}
	if err := e.state.GovernorPutProposal(proposal); err != nil {
		return common.Hash{}, err
	}

	e.emit(events.ProposalCreated{
		ProposalID:       id,
		Proposer:         proposer,
		StartRound:       startRound,
		DepositThreshold: threshold,
		DescriptionHash:  descriptionHash,
	})
	return id, nil
}

func (e *Engine) depositThreshold() (*big.Int, error) {
	block := e.block()
	if block == 0 || e.params.DepositThresholdBps == 0 {
		return big.NewInt(0), nil
	}
	supply, err := e.token.GetPastTotalSupply(block - 1)
	if err != nil {
		return nil, err
	}
	threshold := new(big.Int).Mul(supply, new(big.Int).SetUint64(e.params.DepositThresholdBps))
	return threshold.Quo(threshold, big.NewInt(DepositThresholdDenominator)), nil
}

// Deposit locks tokens towards a proposal's activation threshold. Deposits are
// only accepted before the proposal's voting round begins.
func (e *Engine) Deposit(id common.Hash, depositor common.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrDepositTooSmall
	}
	proposal, err := e.getProposal(id)
	if err != nil {
		return err
	}
	state, err := e.State(id)
	if err != nil {
		return err
	}
	if state != ProposalStatePending {
		return fmt.Errorf("%w: expected pending, got %s", ErrWrongProposalState, state)
	}

	if e.vault != nil {
		if err := e.vault.Lock(depositor, amount); err != nil {
			return err
		}
	}
	recorded, err := e.state.GovernorDeposit(id, depositor)
	if err != nil {
		return err
	}
	if err := e.state.GovernorSetDeposit(id, depositor, new(big.Int).Add(recorded, amount)); err != nil {
		return err
	}
	proposal.DepositTotal = new(big.Int).Add(proposal.DepositTotal, amount)
	if err := e.state.GovernorPutProposal(proposal); err != nil {
		return err
	}

	e.emit(events.ProposalDeposit{
		ProposalID: id,
		Depositor:  depositor,
		Amount:     amount,
		Total:      proposal.DepositTotal,
	})
	return nil
}

// WithdrawDeposit returns a depositor's locked tokens once the proposal has
// left its pending and active phases.
func (e *Engine) WithdrawDeposit(id common.Hash, depositor common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	state, err := e.State(id)
	if err != nil {
		return nil, err
	}
	if state == ProposalStatePending || state == ProposalStateActive {
		return nil, fmt.Errorf("%w: deposits are locked while the proposal is %s", ErrWrongProposalState, state)
	}
	recorded, err := e.state.GovernorDeposit(id, depositor)
	if err != nil {
		return nil, err
	}
	if recorded.Sign() == 0 {
		return nil, ErrNothingToWithdraw
	}
	// Zero the record before releasing custody.
	if err := e.state.GovernorSetDeposit(id, depositor, big.NewInt(0)); err != nil {
		return nil, err
	}
	if e.vault != nil {
		if err := e.vault.Release(depositor, recorded); err != nil {
			return nil, err
		}
	}
	return recorded, nil
}

func (e *Engine) getProposal(id common.Hash) (*Proposal, error) {
	proposal, ok, err := e.state.GovernorGetProposal(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, id.Hex())
	}
	return proposal, nil
}

// State derives the proposal's lifecycle state. The check order is load
// bearing: each check only applies when all earlier ones are false.
func (e *Engine) State(id common.Hash) (ProposalState, error) {
	if e == nil || e.state == nil {
		return ProposalStatePending, ErrStateNotConfigured
	}
	proposal, err := e.getProposal(id)
	if err != nil {
		return ProposalStatePending, err
	}
	if proposal.Executed {
		return ProposalStateExecuted, nil
	}
	if proposal.Canceled {
		return ProposalStateCanceled, nil
	}
	if proposal.StartRound == 0 {
		return ProposalStatePending, fmt.Errorf("%w: %s has no start round", ErrProposalNotFound, id.Hex())
	}
	if e.rounds == nil {
		return ProposalStatePending, ErrRoundsNotConfigured
	}
	current, err := e.rounds.CurrentRoundID()
	if err != nil {
		return ProposalStatePending, err
	}
	if current < proposal.StartRound {
		return ProposalStatePending, nil
	}
	if proposal.DepositThreshold != nil && proposal.DepositThreshold.Sign() > 0 && proposal.DepositTotal.Cmp(proposal.DepositThreshold) < 0 {
		return ProposalStateDepositNotMet, nil
	}
	deadline, err := e.rounds.RoundDeadline(proposal.StartRound)
	if err != nil {
		return ProposalStatePending, err
	}
	if e.block() <= deadline {
		return ProposalStateActive, nil
	}

	votes, err := e.state.GovernorVotes(id)
	if err != nil {
		return ProposalStatePending, err
	}
	votes = votes.Clone()
	reached, err := e.quorumReached(proposal, votes)
	if err != nil {
		return ProposalStatePending, err
	}
	if !reached || votes.For.Cmp(votes.Against) <= 0 {
		return ProposalStateDefeated, nil
	}

	if e.timelock == nil {
		return ProposalStateSucceeded, nil
	}
	status, err := e.timelock.OperationStatus(id)
	if err != nil {
		return ProposalStatePending, err
	}
	switch status {
	case TimelockWaiting, TimelockReady:
		return ProposalStateQueued, nil
	case TimelockDone:
		return ProposalStateExecuted, nil
	default:
		return ProposalStateSucceeded, nil
	}
}

// Snapshot returns the timepoint voting power is read at for the proposal: the
// start block of its voting round.
func (e *Engine) Snapshot(id common.Hash) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrStateNotConfigured
	}
	proposal, err := e.getProposal(id)
	if err != nil {
		return 0, err
	}
	if e.rounds == nil {
		return 0, ErrRoundsNotConfigured
	}
	return e.rounds.RoundSnapshot(proposal.StartRound)
}

// quorumReached applies the checkpointed quorum fraction against the token
// supply at the proposal's snapshot. Quorum counts for and abstain votes, not
// against votes.
func (e *Engine) quorumReached(proposal *Proposal, votes *ProposalVotes) (bool, error) {
	if e.token == nil {
		return false, ErrTokenNotConfigured
	}
	snapshot, err := e.rounds.RoundSnapshot(proposal.StartRound)
	if err != nil {
		return false, err
	}
	supply, err := e.token.GetPastTotalSupply(snapshot)
	if err != nil {
		return false, err
	}
	numerator, err := e.quorumNumeratorAt(snapshot)
	if err != nil {
		return false, err
	}
	quorum := new(big.Int).Mul(supply, new(big.Int).SetUint64(numerator))
	quorum.Quo(quorum, big.NewInt(QuorumDenominator))
	participating := new(big.Int).Add(votes.For, votes.Abstain)
	return participating.Cmp(quorum) >= 0, nil
}

func (e *Engine) quorumNumeratorAt(timepoint uint64) (uint64, error) {
	trace, err := e.state.GovernorQuorumTrace()
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
	if timepoint < first.Key {
		return e.params.QuorumNumerator, nil
	}
	return trace.UpperLookupRecent(timepoint).Uint64(), nil
}

// UpdateQuorumNumerator checkpoints a new governor quorum fraction at the
// current block. Proposals already past their snapshot keep the fraction that
// was in force then.
func (e *Engine) UpdateQuorumNumerator(numerator uint64) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if numerator > QuorumDenominator {
		return fmt.Errorf("governance: quorum numerator %d exceeds denominator %d", numerator, QuorumDenominator)
	}
	trace, err := e.state.GovernorQuorumTrace()
	if err != nil {
		return err
	}
	prev, _, err := trace.Push(e.block(), new(big.Int).SetUint64(numerator))
	if err != nil {
		return err
	}
	if err := e.state.GovernorPutQuorumTrace(trace); err != nil {
		return err
	}
	e.emit(events.ThresholdUpdated{
		Kind:     events.EventVotingThresholdUpdated,
		Previous: prev,
		Current:  new(big.Int).SetUint64(numerator),
	})
	return nil
}

// IsQuadraticVotingEnabledAt reports the checkpointed toggle value as of the
// supplied timepoint.
func (e *Engine) IsQuadraticVotingEnabledAt(timepoint uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	flag, err := e.state.GovernorQuadraticVotingFlag()
	if err != nil {
		return false, err
	}
	return flag.EnabledAt(timepoint), nil
}

// ToggleQuadraticVoting flips the checkpointed quadratic-voting flag at the
// current block. A proposal's tallying mode is fixed at its round snapshot, so
// toggling mid-round does not change in-flight proposals.
func (e *Engine) ToggleQuadraticVoting() (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	flag, err := e.state.GovernorQuadraticVotingFlag()
	if err != nil {
		return false, err
	}
	previous := flag.Enabled()
	block := e.block()
	next, err := flag.Toggle(block)
	if err != nil {
		return false, err
	}
	if err := e.state.GovernorPutQuadraticVotingFlag(flag); err != nil {
		return false, err
	}
	e.emit(events.FlagToggled{
		Kind:     events.EventQuadraticVotingToggled,
		Block:    block,
		Previous: previous,
		Current:  next,
	})
	return next, nil
}

// CastVote records a ballot on an active proposal. The voter must attest as a
// unique person at the proposal snapshot, hold at least the voting threshold,
// and can vote exactly once per proposal. Depending on the round's
// quadratic-voting snapshot the tally accumulates either the raw weight or
// floor(sqrt(weight)) scaled back to 18 decimals.
func (e *Engine) CastVote(id common.Hash, voter common.Address, support VoteSupport, reason string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	if e.token == nil {
		return nil, ErrTokenNotConfigured
	}
	if !support.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSupport, support)
	}
	state, err := e.State(id)
	if err != nil {
		return nil, err
	}
	if state != ProposalStateActive {
		return nil, fmt.Errorf("%w: proposal is %s", ErrProposalNotActive, state)
	}
	proposal, err := e.getProposal(id)
	if err != nil {
		return nil, err
	}
	snapshot, err := e.rounds.RoundSnapshot(proposal.StartRound)
	if err != nil {
		return nil, err
	}

	if e.personhood != nil {
		isPerson, explanation, err := e.personhood.IsPersonAtTimepoint(voter, snapshot)
		if err != nil {
			return nil, err
		}
		if !isPerson {
			return nil, fmt.Errorf("%w: %s", ErrPersonhoodCheckFailed, explanation)
		}
	}

	voted, err := e.state.GovernorHasVoted(id, voter)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyVoted, voter.Hex())
	}

	weight, err := e.token.GetPastVotes(voter, snapshot)
	if err != nil {
		return nil, err
	}
	if e.params.VotingThreshold != nil && weight.Cmp(e.params.VotingThreshold) < 0 {
		return nil, fmt.Errorf("%w: weight %s, threshold %s", ErrBelowVotingThreshold, weight, e.params.VotingThreshold)
	}

	sqrtWeight := new(big.Int).Sqrt(weight)
	power := new(big.Int).Mul(sqrtWeight, big.NewInt(QuadraticScale))

	quadratic, err := e.IsQuadraticVotingEnabledAt(snapshot)
	if err != nil {
		return nil, err
	}
	tallied := weight
	if quadratic {
		tallied = power
	}

	// Vote flag first so a reentrant callback cannot tally twice.
	if err := e.state.GovernorSetHasVoted(id, voter); err != nil {
		return nil, err
	}
	votes, err := e.state.GovernorVotes(id)
	if err != nil {
		return nil, err
	}
	votes = votes.Clone()
	switch support {
	case VoteAgainst:
		votes.Against.Add(votes.Against, tallied)
	case VoteFor:
		votes.For.Add(votes.For, tallied)
	case VoteAbstain:
		votes.Abstain.Add(votes.Abstain, tallied)
	}
	if err := e.state.GovernorPutVotes(id, votes); err != nil {
		return nil, err
	}

	if e.registrar != nil {
		if err := e.registrar.RegisterVote(id, voter, weight, sqrtWeight); err != nil {
			return nil, err
		}
	}

	e.emit(events.GovernanceVoteCast{
		ProposalID: id,
		Voter:      voter,
		Support:    uint8(support),
		Weight:     weight,
		Power:      power,
		Reason:     reason,
	})
	return tallied, nil
}

// HasVoted reports whether the voter already cast a ballot on the proposal.
func (e *Engine) HasVoted(id common.Hash, voter common.Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrStateNotConfigured
	}
	return e.state.GovernorHasVoted(id, voter)
}

// Votes returns the proposal's running tally.
func (e *Engine) Votes(id common.Hash) (*ProposalVotes, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	votes, err := e.state.GovernorVotes(id)
	if err != nil {
		return nil, err
	}
	return votes.Clone(), nil
}

// Queue schedules a succeeded proposal on the timelock.
func (e *Engine) Queue(id common.Hash) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	if e.timelock == nil {
		return ErrTimelockNotConfigured
	}
	state, err := e.State(id)
	if err != nil {
		return err
	}
	if state != ProposalStateSucceeded {
		return fmt.Errorf("%w: expected succeeded, got %s", ErrWrongProposalState, state)
	}
	if err := e.timelock.Schedule(id, e.params.TimelockDelay); err != nil {
		return err
	}
	e.emit(events.ProposalLifecycle{
		Kind:       events.EventProposalQueued,
		ProposalID: id,
		ETA:        e.block() + e.params.TimelockDelay,
	})
	return nil
}

// Execute applies a proposal: directly when no timelock is configured, or via
// the timelock once its delay has elapsed. The executed flag is written before
// the external call so re-entry observes a terminal state.
func (e *Engine) Execute(id common.Hash) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	state, err := e.State(id)
	if err != nil {
		return err
	}
	proposal, err := e.getProposal(id)
	if err != nil {
		return err
	}
	if e.timelock != nil {
		if state != ProposalStateQueued {
			return fmt.Errorf("%w: expected queued, got %s", ErrWrongProposalState, state)
		}
		status, err := e.timelock.OperationStatus(id)
		if err != nil {
			return err
		}
		if status != TimelockReady {
			return fmt.Errorf("%w: timelock delay not elapsed", ErrWrongProposalState)
		}
		proposal.Executed = true
		if err := e.state.GovernorPutProposal(proposal); err != nil {
			return err
		}
		if err := e.timelock.Execute(id); err != nil {
			return err
		}
	} else {
		if state != ProposalStateSucceeded {
			return fmt.Errorf("%w: expected succeeded, got %s", ErrWrongProposalState, state)
		}
		proposal.Executed = true
		if err := e.state.GovernorPutProposal(proposal); err != nil {
			return err
		}
	}
	e.emit(events.ProposalLifecycle{Kind: events.EventProposalExecuted, ProposalID: id})
	return nil
}

// Cancel withdraws a proposal from any non-terminal state. Only the proposer
// may cancel; broader cancellation rights are enforced at the authorization
// boundary.
func (e *Engine) Cancel(id common.Hash, caller common.Address) error {
	if e == nil || e.state == nil {
		return ErrStateNotConfigured
	}
	state, err := e.State(id)
	if err != nil {
		return err
	}
	if state == ProposalStateExecuted || state == ProposalStateCanceled {
		return fmt.Errorf("%w: proposal is %s", ErrWrongProposalState, state)
	}
	proposal, err := e.getProposal(id)
	if err != nil {
		return err
	}
	if proposal.Proposer != caller {
		return fmt.Errorf("governance: only proposer %s may cancel", proposal.Proposer.Hex())
	}
	proposal.Canceled = true
	if err := e.state.GovernorPutProposal(proposal); err != nil {
		return err
	}
	if e.timelock != nil && state == ProposalStateQueued {
		if err := e.timelock.Cancel(id); err != nil {
			return err
		}
	}
	e.emit(events.ProposalLifecycle{Kind: events.EventProposalCanceled, ProposalID: id})
	return nil
}

// GetProposal loads a proposal by id.
func (e *Engine) GetProposal(id common.Hash) (*Proposal, error) {
	if e == nil || e.state == nil {
		return nil, ErrStateNotConfigured
	}
	proposal, err := e.getProposal(id)
	if err != nil {
		return nil, err
	}
	return proposal.Clone(), nil
}
