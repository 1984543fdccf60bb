package core

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/native/allocation"
	"vebetterdao/native/auth"
	"vebetterdao/native/emissions"
	"vebetterdao/native/governance"
	"vebetterdao/storage"
)

var (
	testOwner = common.BytesToAddress([]byte("owner"))
	testVoter = common.BytesToAddress([]byte("voter"))
)

func testConfig() Config {
	return Config{
		Owner:    testOwner,
		TokenCap: big.NewInt(1_000_000),
		InitialBalances: map[common.Address]*big.Int{
			testVoter: big.NewInt(10_000),
		},
		Emissions: emissions.Params{
			InitialXAllocation:     big.NewInt(1000),
			XAllocationDecayRate:   0,
			XAllocationDecayPeriod: 1,
			Vote2EarnDecayRate:     0,
			Vote2EarnDecayPeriod:   1,
			MaxVote2EarnDecay:      0,
			TreasuryPercentage:     0,
			CycleDuration:          10,
			MigrationAmount:        big.NewInt(0),
		},
		Allocation: allocation.Params{
			VotingPeriod:             5,
			VotingThreshold:          big.NewInt(1),
			QuorumNumerator:          0,
			AppSharesCap:             100,
			BaseAllocationPercentage: 0,
		},
		Governance: governance.Params{
			VotingThreshold:     big.NewInt(1),
			QuorumNumerator:     0,
			DepositThresholdBps: 0,
			TimelockDelay:       2,
		},
	}
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	db := storage.NewMemoryStateDB()
	t.Cleanup(db.Close)
	node, err := NewNode(db, nil, testConfig())
	require.NoError(t, err)
	return node
}

func advanceTo(t *testing.T, node *Node, height uint64) {
	t.Helper()
	for node.Height() < height {
		_, err := node.AdvanceBlock()
		require.NoError(t, err)
	}
}

func TestNodeGenesisPermissionsAndBalances(t *testing.T) {
	node := newTestNode(t)

	granted, err := node.HasPermission(auth.PermissionEmissionsAdmin, testOwner)
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = node.HasPermission(auth.PermissionEmissionsAdmin, testVoter)
	require.NoError(t, err)
	require.False(t, granted)

	balance, err := node.BalanceOf(testVoter)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10_000), balance)
}

func TestNodePrivilegedCallsRequirePermission(t *testing.T) {
	node := newTestNode(t)

	require.ErrorIs(t, node.BootstrapEmissions(testVoter), auth.ErrUnauthorized)
	_, err := node.StartRound(testVoter)
	require.ErrorIs(t, err, auth.ErrUnauthorized)
	_, err = node.RegisterApp(testVoter, "cleanify", testOwner, testOwner, "")
	require.ErrorIs(t, err, auth.ErrUnauthorized)
	require.ErrorIs(t, node.Attest(testVoter, testVoter), auth.ErrUnauthorized)
}

func TestNodeEmissionAndAllocationLifecycle(t *testing.T) {
	node := newTestNode(t)
	teamWallet := common.BytesToAddress([]byte("team"))

	appID, err := node.RegisterApp(testOwner, "cleanify", testOwner, teamWallet, "ipfs://cleanify")
	require.NoError(t, err)

	advanceTo(t, node, 1)
	require.NoError(t, node.BootstrapEmissions(testOwner))
	require.NoError(t, node.StartEmissions(testOwner))

	// Bootstrap mints cycle one to the pool accounts.
	balance, err := node.BalanceOf(XAllocationsAccount)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1000), balance)

	roundID, err := node.CurrentRoundID()
	require.NoError(t, err)
	require.Equal(t, uint64(1), roundID)

	advanceTo(t, node, 2)
	require.NoError(t, node.CastAllocationVotes(1, testVoter, []common.Hash{appID}, []*big.Int{big.NewInt(100)}))

	votes, err := node.RoundAppVotes(1, appID)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), votes.Votes)
	require.Equal(t, big.NewInt(10), votes.VotesQF)

	// Crossing the cycle boundary distributes cycle two and opens round two.
	advanceTo(t, node, 11)
	cycle, err := node.CurrentCycle()
	require.NoError(t, err)
	require.Equal(t, uint64(2), cycle)

	roundID, err = node.CurrentRoundID()
	require.NoError(t, err)
	require.Equal(t, uint64(2), roundID)

	state, err := node.RoundState(1)
	require.NoError(t, err)
	require.Equal(t, allocation.RoundStateSucceeded, state)

	// Full share, zero team split: the whole emission lands in the pot.
	earnings, err := node.ClaimAppEarnings(1, appID)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1000), earnings.TotalAmount)
	require.Equal(t, big.NewInt(0), earnings.TeamAmount)

	potBalance, err := node.BalanceOf(RewardsPotAccount)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1000), potBalance)

	// Cycle one has ended; the ballot above earns its full vote2earn share.
	reward, err := node.ClaimVoterReward(1, testVoter)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1000), reward)

	balance, err = node.BalanceOf(testVoter)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(11_000), balance)
}

func TestNodeGovernanceLifecycle(t *testing.T) {
	node := newTestNode(t)
	teamWallet := common.BytesToAddress([]byte("team"))
	target := common.BytesToAddress([]byte("target"))

	_, err := node.RegisterApp(testOwner, "cleanify", testOwner, teamWallet, "")
	require.NoError(t, err)

	advanceTo(t, node, 1)
	require.NoError(t, node.BootstrapEmissions(testOwner))
	require.NoError(t, node.StartEmissions(testOwner))
	require.NoError(t, node.Attest(testOwner, testVoter))

	id, err := node.Propose(testVoter, []common.Address{target}, []*big.Int{big.NewInt(0)}, [][]byte{{0x01}}, "raise the cap", 3)
	require.NoError(t, err)

	state, err := node.ProposalState(id)
	require.NoError(t, err)
	require.Equal(t, governance.ProposalStatePending, state)

	// Round three opens with the second scheduled distribution at block 21.
	advanceTo(t, node, 22)
	roundID, err := node.CurrentRoundID()
	require.NoError(t, err)
	require.Equal(t, uint64(3), roundID)

	state, err = node.ProposalState(id)
	require.NoError(t, err)
	require.Equal(t, governance.ProposalStateActive, state)

	weight, err := node.CastGovernanceVote(id, testVoter, governance.VoteFor, "")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10_000), weight)

	// Past the round deadline the proposal succeeds and runs the timelock.
	advanceTo(t, node, 27)
	state, err = node.ProposalState(id)
	require.NoError(t, err)
	require.Equal(t, governance.ProposalStateSucceeded, state)

	require.NoError(t, node.QueueProposal(id))
	state, err = node.ProposalState(id)
	require.NoError(t, err)
	require.Equal(t, governance.ProposalStateQueued, state)

	advanceTo(t, node, 29)
	require.NoError(t, node.ExecuteProposal(id))
	state, err = node.ProposalState(id)
	require.NoError(t, err)
	require.Equal(t, governance.ProposalStateExecuted, state)
}

func TestNodeReopensFromCommittedRoot(t *testing.T) {
	db := storage.NewMemoryStateDB()
	defer db.Close()
	cfg := testConfig()

	node, err := NewNode(db, nil, cfg)
	require.NoError(t, err)
	advanceTo(t, node, 1)
	require.NoError(t, node.BootstrapEmissions(testOwner))
	require.NoError(t, node.StartEmissions(testOwner))
	_, err = node.AdvanceBlock()
	require.NoError(t, err)
	root := node.Root()

	stored, err := db.HeadRoot()
	require.NoError(t, err)
	require.Equal(t, root.Bytes(), stored)

	reopened, err := NewNode(db, root.Bytes(), cfg)
	require.NoError(t, err)
	require.Equal(t, uint64(2), reopened.Height())

	cycle, err := reopened.CurrentCycle()
	require.NoError(t, err)
	require.Equal(t, uint64(1), cycle)

	balance, err := reopened.BalanceOf(testVoter)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10_000), balance)
}

type faultySchedulerState struct {
	emissions.SchedulerState
}

func (faultySchedulerState) EmissionsNextCycle() (uint64, error) {
	return 0, errors.New("corrupt next-cycle record")
}

func TestAdvanceBlockSurfacesScheduleReadFailure(t *testing.T) {
	node := newTestNode(t)
	node.emissions.SetState(faultySchedulerState{SchedulerState: node.manager})

	before := node.Height()
	_, err := node.AdvanceBlock()
	require.Error(t, err)
	require.Contains(t, err.Error(), "check distribution schedule")
	require.Equal(t, before, node.Height())
}
