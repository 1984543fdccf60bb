package allocation

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/native/checkpoints"
)

type mockRoundsState struct {
	count         uint64
	rounds        map[uint64]*Round
	appVotes      map[string]*AppVotes
	totalVotes    map[uint64]*big.Int
	totalQF       map[uint64]*big.Int
	hasVoted      map[string]bool
	finalizations map[uint64]uint64
	quorumTrace   *checkpoints.Trace
}

func newMockRoundsState() *mockRoundsState {
	return &mockRoundsState{
		rounds:        make(map[uint64]*Round),
		appVotes:      make(map[string]*AppVotes),
		totalVotes:    make(map[uint64]*big.Int),
		totalQF:       make(map[uint64]*big.Int),
		hasVoted:      make(map[string]bool),
		finalizations: make(map[uint64]uint64),
		quorumTrace:   &checkpoints.Trace{},
	}
}

func (m *mockRoundsState) AllocationRoundCount() (uint64, error)       { return m.count, nil }
func (m *mockRoundsState) AllocationSetRoundCount(c uint64) error      { m.count = c; return nil }
func (m *mockRoundsState) AllocationPutRound(r *Round) error           { m.rounds[r.ID] = r.Clone(); return nil }

func (m *mockRoundsState) AllocationGetRound(id uint64) (*Round, bool, error) {
	round, ok := m.rounds[id]
	if !ok {
		return nil, false, nil
	}
	return round.Clone(), true, nil
}

func appKey(roundID uint64, appID common.Hash) string {
	return fmt.Sprintf("%d/%s", roundID, appID.Hex())
}

func (m *mockRoundsState) AllocationAppVotes(roundID uint64, appID common.Hash) (*AppVotes, error) {
	return m.appVotes[appKey(roundID, appID)].Clone(), nil
}

func (m *mockRoundsState) AllocationPutAppVotes(roundID uint64, appID common.Hash, votes *AppVotes) error {
	m.appVotes[appKey(roundID, appID)] = votes.Clone()
	return nil
}

func (m *mockRoundsState) AllocationRoundTotals(roundID uint64) (*big.Int, *big.Int, error) {
	votes, qf := big.NewInt(0), big.NewInt(0)
	if v, ok := m.totalVotes[roundID]; ok {
		votes = new(big.Int).Set(v)
	}
	if v, ok := m.totalQF[roundID]; ok {
		qf = new(big.Int).Set(v)
	}
	return votes, qf, nil
}

func (m *mockRoundsState) AllocationSetRoundTotals(roundID uint64, votes, qf *big.Int) error {
	m.totalVotes[roundID] = new(big.Int).Set(votes)
	m.totalQF[roundID] = new(big.Int).Set(qf)
	return nil
}

func (m *mockRoundsState) AllocationHasVoted(roundID uint64, voter common.Address) (bool, error) {
	return m.hasVoted[fmt.Sprintf("%d/%s", roundID, voter.Hex())], nil
}

func (m *mockRoundsState) AllocationSetHasVoted(roundID uint64, voter common.Address) error {
	m.hasVoted[fmt.Sprintf("%d/%s", roundID, voter.Hex())] = true
	return nil
}

func (m *mockRoundsState) AllocationFinalization(roundID uint64) (uint64, bool, error) {
	pointer, ok := m.finalizations[roundID]
	return pointer, ok, nil
}

func (m *mockRoundsState) AllocationPutFinalization(roundID uint64, pointer uint64) error {
	m.finalizations[roundID] = pointer
	return nil
}

func (m *mockRoundsState) AllocationQuorumTrace() (*checkpoints.Trace, error) {
	return m.quorumTrace, nil
}

func (m *mockRoundsState) AllocationPutQuorumTrace(trace *checkpoints.Trace) error {
	m.quorumTrace = trace
	return nil
}

type mockToken struct {
	votes  map[common.Address]*big.Int
	supply *big.Int
}

func newMockToken(supply int64) *mockToken {
	return &mockToken{votes: make(map[common.Address]*big.Int), supply: big.NewInt(supply)}
}

func (m *mockToken) GetPastVotes(account common.Address, _ uint64) (*big.Int, error) {
	if v, ok := m.votes[account]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}

func (m *mockToken) GetPastTotalSupply(_ uint64) (*big.Int, error) {
	return new(big.Int).Set(m.supply), nil
}

type mockAppSource struct {
	apps []common.Hash
}

func (m *mockAppSource) AllEligibleApps(uint64) ([]common.Hash, error) {
	return append([]common.Hash(nil), m.apps...), nil
}

type recordedVote struct {
	id    common.Hash
	voter common.Address
	votes *big.Int
	power *big.Int
}

type mockRegistrar struct {
	registered []recordedVote
}

func (m *mockRegistrar) RegisterVote(id common.Hash, voter common.Address, votes, power *big.Int) error {
	m.registered = append(m.registered, recordedVote{id, voter, new(big.Int).Set(votes), new(big.Int).Set(power)})
	return nil
}

var (
	appA = common.HexToHash("0xaa")
	appB = common.HexToHash("0xbb")
	appC = common.HexToHash("0xcc")

	alice = common.HexToAddress("0xa1")
	bob   = common.HexToAddress("0xb1")
)

func newAllocationFixture(supply int64) (*Engine, *mockRoundsState, *mockToken, *uint64) {
	state := newMockRoundsState()
	token := newMockToken(supply)
	block := uint64(100)
	params := Params{
		VotingPeriod:             10,
		VotingThreshold:          big.NewInt(1),
		QuorumNumerator:          40,
		AppSharesCap:             50,
		BaseAllocationPercentage: 30,
	}
	engine := NewEngine(params)
	engine.SetState(state)
	engine.SetToken(token)
	engine.SetAppSource(&mockAppSource{apps: []common.Hash{appA, appB}})
	engine.SetBlockFunc(func() uint64 { return block })
	return engine, state, token, &block
}

func TestStartNewRoundSnapshotsApps(t *testing.T) {
	engine, state, _, _ := newAllocationFixture(1000)

	id, err := engine.StartNewRound(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	round, err := engine.GetRound(1)
	require.NoError(t, err)
	require.Equal(t, uint64(100), round.VoteStart)
	require.Equal(t, uint64(110), round.VoteEnd())
	require.Equal(t, []common.Hash{appA, appB}, round.EligibleApps)
	require.Equal(t, uint64(50), round.AppSharesCap)

	// Registry changes after round creation do not affect the frozen snapshot.
	engine.SetAppSource(&mockAppSource{apps: []common.Hash{appA, appB, appC}})
	round, err = engine.GetRound(1)
	require.NoError(t, err)
	require.Len(t, round.EligibleApps, 2)
	require.Equal(t, uint64(1), state.count)
}

func TestCastVotesTalliesQuadraticFunding(t *testing.T) {
	engine, state, token, _ := newAllocationFixture(1000)
	registrar := &mockRegistrar{}
	engine.SetVoteRegistrar(registrar)
	token.votes[alice] = big.NewInt(100)
	token.votes[bob] = big.NewInt(400)

	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)

	require.NoError(t, engine.CastVotes(1, alice, []common.Hash{appA, appB}, []*big.Int{big.NewInt(64), big.NewInt(36)}))
	require.NoError(t, engine.CastVotes(1, bob, []common.Hash{appA}, []*big.Int{big.NewInt(400)}))

	votesA, err := engine.AppVotesOf(1, appA)
	require.NoError(t, err)
	require.Equal(t, int64(464), votesA.Votes.Int64())
	// sqrt(64) + sqrt(400) = 28.
	require.Equal(t, int64(28), votesA.VotesQF.Int64())

	votesB, err := engine.AppVotesOf(1, appB)
	require.NoError(t, err)
	require.Equal(t, int64(36), votesB.Votes.Int64())
	require.Equal(t, int64(6), votesB.VotesQF.Int64())

	total, totalQF, err := engine.RoundTotals(1)
	require.NoError(t, err)
	require.Equal(t, int64(500), total.Int64())
	// Denominator is the sum of squared app QF tallies: 28^2 + 6^2.
	require.Equal(t, int64(820), totalQF.Int64())

	// Reward forwarding carries the ballot total and its integer sqrt.
	require.Len(t, registrar.registered, 2)
	require.Equal(t, int64(100), registrar.registered[0].votes.Int64())
	require.Equal(t, int64(10), registrar.registered[0].power.Int64())
	_ = state
}

func TestCastVotesRejectsDoubleVoting(t *testing.T) {
	engine, _, token, _ := newAllocationFixture(1000)
	token.votes[alice] = big.NewInt(100)

	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)
	require.NoError(t, engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(50)}))

	err = engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(10)})
	require.ErrorIs(t, err, ErrAlreadyVoted)

	// The failed second ballot leaves the first tally untouched.
	votes, err := engine.AppVotesOf(1, appA)
	require.NoError(t, err)
	require.Equal(t, int64(50), votes.Votes.Int64())
}

func TestCastVotesValidation(t *testing.T) {
	engine, _, token, block := newAllocationFixture(1000)
	token.votes[alice] = big.NewInt(100)

	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)

	// Unknown app.
	err = engine.CastVotes(1, alice, []common.Hash{appC}, []*big.Int{big.NewInt(10)})
	require.ErrorIs(t, err, ErrAppNotEligible)

	// Below threshold.
	err = engine.CastVotes(1, bob, []common.Hash{appA}, []*big.Int{big.NewInt(0)})
	require.ErrorIs(t, err, ErrBelowThreshold)

	// More weight than voting power.
	err = engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(101)})
	require.ErrorIs(t, err, ErrWeightExceedsPower)

	// Mismatched ballot.
	err = engine.CastVotes(1, alice, []common.Hash{appA, appB}, []*big.Int{big.NewInt(1)})
	require.ErrorIs(t, err, ErrInvalidBallot)

	// Round over.
	*block = 111
	err = engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(10)})
	require.ErrorIs(t, err, ErrRoundNotActive)
}

func TestRoundStateDerivation(t *testing.T) {
	engine, _, token, block := newAllocationFixture(1000)
	token.votes[alice] = big.NewInt(500)

	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)

	state, err := engine.RoundStateOf(1)
	require.NoError(t, err)
	require.Equal(t, RoundStateActive, state)

	// Quorum is 40% of 1000 = 400.
	require.NoError(t, engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(400)}))
	*block = 111
	state, err = engine.RoundStateOf(1)
	require.NoError(t, err)
	require.Equal(t, RoundStateSucceeded, state)
}

func TestRoundFailsWithoutQuorum(t *testing.T) {
	engine, _, token, block := newAllocationFixture(1000)
	token.votes[alice] = big.NewInt(500)

	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)
	require.NoError(t, engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(399)}))

	*block = 111
	state, err := engine.RoundStateOf(1)
	require.NoError(t, err)
	require.Equal(t, RoundStateFailed, state)
}

func TestFinalizeRoundPointerAndIdempotence(t *testing.T) {
	engine, state, token, block := newAllocationFixture(1000)
	token.votes[alice] = big.NewInt(500)

	// Round 1 succeeds.
	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)
	require.NoError(t, engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(450)}))

	// Round 2 fails quorum; starting round 3 finalizes it implicitly.
	*block = 120
	_, err = engine.StartNewRound(alice)
	require.NoError(t, err)
	*block = 140
	_, err = engine.StartNewRound(alice)
	require.NoError(t, err)

	pointer, finalized, err := state.AllocationFinalization(2)
	require.NoError(t, err)
	require.True(t, finalized)
	require.Equal(t, uint64(1), pointer)

	// Explicit re-finalization is a no-op with the same pointer.
	require.NoError(t, engine.FinalizeRound(2))
	pointer, _, err = state.AllocationFinalization(2)
	require.NoError(t, err)
	require.Equal(t, uint64(1), pointer)

	// Shares for the failed round resolve through the pointer.
	shares, err := engine.SharesRoundFor(2)
	require.NoError(t, err)
	require.Equal(t, uint64(1), shares)
	shares, err = engine.SharesRoundFor(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), shares)
}

func TestFinalizeActiveRoundRejected(t *testing.T) {
	engine, _, _, _ := newAllocationFixture(1000)
	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)
	require.ErrorIs(t, engine.FinalizeRound(1), ErrRoundStillActive)
}

func TestFailedRoundOnePointsToItself(t *testing.T) {
	engine, state, _, block := newAllocationFixture(1000)
	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)

	*block = 111
	require.NoError(t, engine.FinalizeRound(1))
	pointer, finalized, err := state.AllocationFinalization(1)
	require.NoError(t, err)
	require.True(t, finalized)
	require.Equal(t, uint64(1), pointer)
}

func TestQuorumNumeratorCheckpointing(t *testing.T) {
	engine, _, token, block := newAllocationFixture(1000)
	token.votes[alice] = big.NewInt(500)

	_, err := engine.StartNewRound(alice)
	require.NoError(t, err)
	require.NoError(t, engine.CastVotes(1, alice, []common.Hash{appA}, []*big.Int{big.NewInt(399)}))

	// Raising the quorum mid-round does not change the round's requirement:
	// the numerator is read at the round's start block.
	*block = 105
	require.NoError(t, engine.UpdateQuorumNumerator(90))
	*block = 111
	state, err := engine.RoundStateOf(1)
	require.NoError(t, err)
	require.Equal(t, RoundStateFailed, state)

	quorum, err := engine.Quorum(100)
	require.NoError(t, err)
	require.Equal(t, int64(400), quorum.Int64())
	quorum, err = engine.Quorum(105)
	require.NoError(t, err)
	require.Equal(t, int64(900), quorum.Int64())
}
