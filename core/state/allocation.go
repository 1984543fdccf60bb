package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/allocation"
	"vebetterdao/native/checkpoints"
)

// storedRound is the RLP shape of an allocation round's frozen snapshot.
type storedRound struct {
	ID                       uint64
	Proposer                 common.Address
	VoteStart                uint64
	VoteDuration             uint64
	EligibleApps             []common.Hash
	AppSharesCap             uint64
	BaseAllocationPercentage uint64
}

type storedRoundTotals struct {
	Votes   *big.Int
	VotesQF *big.Int
}

type storedFinalization struct {
	Pointer   uint64
	Finalized bool
}

func (m *Manager) AllocationRoundCount() (uint64, error) {
	return m.getUint(hashKey(allocationRoundCountKey))
}

func (m *Manager) AllocationSetRoundCount(count uint64) error {
	return m.put(hashKey(allocationRoundCountKey), count)
}

func (m *Manager) AllocationPutRound(round *allocation.Round) error {
	clone := round.Clone()
	stored := storedRound{
		ID:                       clone.ID,
		Proposer:                 clone.Proposer,
		VoteStart:                clone.VoteStart,
		VoteDuration:             clone.VoteDuration,
		EligibleApps:             clone.EligibleApps,
		AppSharesCap:             clone.AppSharesCap,
		BaseAllocationPercentage: clone.BaseAllocationPercentage,
	}
	return m.put(hashKey(allocationRoundPrefix, uintBytes(round.ID)), stored)
}

func (m *Manager) AllocationGetRound(id uint64) (*allocation.Round, bool, error) {
	var stored storedRound
	ok, err := m.get(hashKey(allocationRoundPrefix, uintBytes(id)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &allocation.Round{
		ID:                       stored.ID,
		Proposer:                 stored.Proposer,
		VoteStart:                stored.VoteStart,
		VoteDuration:             stored.VoteDuration,
		EligibleApps:             stored.EligibleApps,
		AppSharesCap:             stored.AppSharesCap,
		BaseAllocationPercentage: stored.BaseAllocationPercentage,
	}, true, nil
}

func (m *Manager) AllocationAppVotes(roundID uint64, appID common.Hash) (*allocation.AppVotes, error) {
	var stored storedRoundTotals
	key := hashKey(allocationAppVotesPrefix, uintBytes(roundID), appID.Bytes())
	ok, err := m.get(key, &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &allocation.AppVotes{Votes: big.NewInt(0), VotesQF: big.NewInt(0)}, nil
	}
	return &allocation.AppVotes{Votes: stored.Votes, VotesQF: stored.VotesQF}, nil
}

func (m *Manager) AllocationPutAppVotes(roundID uint64, appID common.Hash, votes *allocation.AppVotes) error {
	clone := votes.Clone()
	key := hashKey(allocationAppVotesPrefix, uintBytes(roundID), appID.Bytes())
	return m.put(key, storedRoundTotals{Votes: clone.Votes, VotesQF: clone.VotesQF})
}

func (m *Manager) AllocationRoundTotals(roundID uint64) (*big.Int, *big.Int, error) {
	var stored storedRoundTotals
	ok, err := m.get(hashKey(allocationTotalsPrefix, uintBytes(roundID)), &stored)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return big.NewInt(0), big.NewInt(0), nil
	}
	return stored.Votes, stored.VotesQF, nil
}

func (m *Manager) AllocationSetRoundTotals(roundID uint64, votes *big.Int, votesQF *big.Int) error {
	stored := storedRoundTotals{Votes: nonNil(votes), VotesQF: nonNil(votesQF)}
	return m.put(hashKey(allocationTotalsPrefix, uintBytes(roundID)), stored)
}

func (m *Manager) AllocationHasVoted(roundID uint64, voter common.Address) (bool, error) {
	return m.getBool(hashKey(allocationVotedPrefix, uintBytes(roundID), voter.Bytes()))
}

func (m *Manager) AllocationSetHasVoted(roundID uint64, voter common.Address) error {
	return m.put(hashKey(allocationVotedPrefix, uintBytes(roundID), voter.Bytes()), true)
}

func (m *Manager) AllocationFinalization(roundID uint64) (uint64, bool, error) {
	var stored storedFinalization
	ok, err := m.get(hashKey(allocationFinalizedPrefix, uintBytes(roundID)), &stored)
	if err != nil || !ok {
		return 0, false, err
	}
	return stored.Pointer, stored.Finalized, nil
}

func (m *Manager) AllocationPutFinalization(roundID uint64, pointer uint64) error {
	stored := storedFinalization{Pointer: pointer, Finalized: true}
	return m.put(hashKey(allocationFinalizedPrefix, uintBytes(roundID)), stored)
}

func (m *Manager) AllocationQuorumTrace() (*checkpoints.Trace, error) {
	return m.getTrace(hashKey(allocationQuorumKey))
}

func (m *Manager) AllocationPutQuorumTrace(trace *checkpoints.Trace) error {
	return m.putTrace(hashKey(allocationQuorumKey), trace)
}
