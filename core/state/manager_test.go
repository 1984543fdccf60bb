package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"vebetterdao/native/allocation"
	"vebetterdao/native/apps"
	"vebetterdao/native/emissions"
	"vebetterdao/native/governance"
	"vebetterdao/storage"
	"vebetterdao/storage/trie"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db := storage.NewMemoryStateDB()
	t.Cleanup(db.Close)
	tr, err := trie.NewTrie(db, nil)
	require.NoError(t, err)
	return NewManager(tr)
}

func TestEmissionsRoundTrip(t *testing.T) {
	m := newTestManager(t)

	cycle, err := m.EmissionsNextCycle()
	require.NoError(t, err)
	require.Zero(t, cycle)

	require.NoError(t, m.EmissionsSetNextCycle(4))
	require.NoError(t, m.EmissionsSetLastBlock(120))
	require.NoError(t, m.EmissionsSetTotal(big.NewInt(3000)))
	require.NoError(t, m.EmissionsPutCycleAmounts(3, &emissions.CycleAmounts{
		XAllocations: big.NewInt(700),
		Vote2Earn:    big.NewInt(200),
		Treasury:     big.NewInt(100),
		StartBlock:   96,
	}))

	cycle, err = m.EmissionsNextCycle()
	require.NoError(t, err)
	require.Equal(t, uint64(4), cycle)

	block, err := m.EmissionsLastBlock()
	require.NoError(t, err)
	require.Equal(t, uint64(120), block)

	total, err := m.EmissionsTotal()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(3000), total)

	amounts, ok, err := m.EmissionsCycleAmounts(3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, big.NewInt(700), amounts.XAllocations)
	require.Equal(t, big.NewInt(200), amounts.Vote2Earn)
	require.Equal(t, big.NewInt(100), amounts.Treasury)
	require.Equal(t, uint64(96), amounts.StartBlock)

	_, ok, err = m.EmissionsCycleAmounts(9)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAllocationRoundAndTallies(t *testing.T) {
	m := newTestManager(t)
	appA := common.BytesToHash([]byte("app-a"))
	voter := common.BytesToAddress([]byte("voter"))

	round := &allocation.Round{
		ID:                       2,
		Proposer:                 common.BytesToAddress([]byte("proposer")),
		VoteStart:                50,
		VoteDuration:             40,
		EligibleApps:             []common.Hash{appA},
		AppSharesCap:             30,
		BaseAllocationPercentage: 20,
	}
	require.NoError(t, m.AllocationPutRound(round))
	require.NoError(t, m.AllocationSetRoundCount(2))

	got, ok, err := m.AllocationGetRound(2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, round, got)

	count, err := m.AllocationRoundCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)

	votes, err := m.AllocationAppVotes(2, appA)
	require.NoError(t, err)
	require.Zero(t, votes.Votes.Sign())

	require.NoError(t, m.AllocationPutAppVotes(2, appA, &allocation.AppVotes{
		Votes:   big.NewInt(400),
		VotesQF: big.NewInt(20),
	}))
	require.NoError(t, m.AllocationSetRoundTotals(2, big.NewInt(400), big.NewInt(20)))

	votes, err = m.AllocationAppVotes(2, appA)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(400), votes.Votes)
	require.Equal(t, big.NewInt(20), votes.VotesQF)

	totalVotes, totalQF, err := m.AllocationRoundTotals(2)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(400), totalVotes)
	require.Equal(t, big.NewInt(20), totalQF)

	voted, err := m.AllocationHasVoted(2, voter)
	require.NoError(t, err)
	require.False(t, voted)
	require.NoError(t, m.AllocationSetHasVoted(2, voter))
	voted, err = m.AllocationHasVoted(2, voter)
	require.NoError(t, err)
	require.True(t, voted)

	_, finalized, err := m.AllocationFinalization(2)
	require.NoError(t, err)
	require.False(t, finalized)
	require.NoError(t, m.AllocationPutFinalization(2, 1))
	pointer, finalized, err := m.AllocationFinalization(2)
	require.NoError(t, err)
	require.True(t, finalized)
	require.Equal(t, uint64(1), pointer)
}

func TestGovernorProposalRoundTrip(t *testing.T) {
	m := newTestManager(t)
	proposer := common.BytesToAddress([]byte("proposer"))
	target := common.BytesToAddress([]byte("target"))

	id, err := governance.HashProposal(
		[]common.Address{target},
		[]*big.Int{big.NewInt(0)},
		[][]byte{{0x01}},
		governance.HashDescription("raise the cap"),
	)
	require.NoError(t, err)
	proposal := &governance.Proposal{
		ID:               id,
		Proposer:         proposer,
		Targets:          []common.Address{target},
		Values:           []*big.Int{big.NewInt(0)},
		Calldatas:        [][]byte{{0x01}},
		DescriptionHash:  governance.HashDescription("raise the cap"),
		StartRound:       3,
		DepositThreshold: big.NewInt(200),
		DepositTotal:     big.NewInt(0),
	}
	require.NoError(t, m.GovernorPutProposal(proposal))

	got, ok, err := m.GovernorGetProposal(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, proposal, got)

	_, ok, err = m.GovernorGetProposal(common.BytesToHash([]byte("missing")))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.GovernorPutVotes(id, &governance.ProposalVotes{
		Against: big.NewInt(100),
		For:     big.NewInt(400),
		Abstain: big.NewInt(50),
	}))
	votes, err := m.GovernorVotes(id)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(400), votes.For)

	require.NoError(t, m.GovernorSetHasVoted(id, proposer))
	voted, err := m.GovernorHasVoted(id, proposer)
	require.NoError(t, err)
	require.True(t, voted)

	require.NoError(t, m.GovernorSetDeposit(id, proposer, big.NewInt(150)))
	deposit, err := m.GovernorDeposit(id, proposer)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(150), deposit)
}

func TestTraceAndFlagPersistence(t *testing.T) {
	m := newTestManager(t)

	trace, err := m.GovernorQuorumTrace()
	require.NoError(t, err)
	require.Zero(t, trace.Len())

	_, _, err = trace.Push(10, big.NewInt(4))
	require.NoError(t, err)
	_, _, err = trace.Push(50, big.NewInt(10))
	require.NoError(t, err)
	require.NoError(t, m.GovernorPutQuorumTrace(trace))

	restored, err := m.GovernorQuorumTrace()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(4), restored.UpperLookupRecent(20))
	require.Equal(t, big.NewInt(10), restored.Latest())

	flag, err := m.QuadraticRewardingFlag()
	require.NoError(t, err)
	require.False(t, flag.Enabled())

	_, err = flag.Set(30, true)
	require.NoError(t, err)
	require.NoError(t, m.PutQuadraticRewardingFlag(flag))

	flag, err = m.QuadraticRewardingFlag()
	require.NoError(t, err)
	require.False(t, flag.EnabledAt(29))
	require.True(t, flag.EnabledAt(30))
}

func TestAppsIndexTracksFirstRegistration(t *testing.T) {
	m := newTestManager(t)

	app := &apps.App{
		ID:                       apps.AppID("cleanify"),
		Name:                     "cleanify",
		Admin:                    common.BytesToAddress([]byte("admin")),
		TeamWallet:               common.BytesToAddress([]byte("wallet")),
		TeamAllocationPercentage: 25,
		MetadataURI:              "ipfs://cleanify",
		CreatedAtBlock:           12,
	}
	require.NoError(t, m.AppsPut(app))

	index, err := m.AppsAll()
	require.NoError(t, err)
	require.Equal(t, []common.Hash{app.ID}, index)

	// Updating the record must not duplicate the index entry.
	app.TeamAllocationPercentage = 40
	require.NoError(t, m.AppsPut(app))
	index, err = m.AppsAll()
	require.NoError(t, err)
	require.Len(t, index, 1)

	got, ok, err := m.AppsGet(app.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(40), got.TeamAllocationPercentage)
}

func TestTokenAndPoolState(t *testing.T) {
	m := newTestManager(t)
	holder := common.BytesToAddress([]byte("holder"))
	appID := common.BytesToHash([]byte("app"))

	require.NoError(t, m.SetTokenBalance(holder, big.NewInt(500)))
	balance, err := m.TokenBalance(holder)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(500), balance)

	supply, err := m.TokenSupplyTrace()
	require.NoError(t, err)
	_, _, err = supply.Push(5, big.NewInt(500))
	require.NoError(t, err)
	require.NoError(t, m.PutTokenSupplyTrace(supply))

	supply, err = m.TokenSupplyTrace()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(500), supply.Latest())

	claimed, err := m.AllocationClaimed(1, appID)
	require.NoError(t, err)
	require.False(t, claimed)
	require.NoError(t, m.SetAllocationClaimed(1, appID))
	claimed, err = m.AllocationClaimed(1, appID)
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestStateSurvivesCommitAndReset(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.EmissionsSetNextCycle(7))
	root, err := m.Commit(common.Hash{}, 1)
	require.NoError(t, err)

	require.NoError(t, m.EmissionsSetNextCycle(8))
	require.NoError(t, m.Reset(root))

	cycle, err := m.EmissionsNextCycle()
	require.NoError(t, err)
	require.Equal(t, uint64(7), cycle)
}
