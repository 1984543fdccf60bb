package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/checkpoints"
	"vebetterdao/native/governance"
)

// storedProposal is the RLP shape of a governor proposal.
type storedProposal struct {
	ID               common.Hash
	Proposer         common.Address
	Targets          []common.Address
	Values           []*big.Int
	Calldatas        [][]byte
	DescriptionHash  common.Hash
	StartRound       uint64
	DepositThreshold *big.Int
	DepositTotal     *big.Int
	Executed         bool
	Canceled         bool
}

type storedProposalVotes struct {
	Against *big.Int
	For     *big.Int
	Abstain *big.Int
}

func (m *Manager) GovernorGetProposal(id common.Hash) (*governance.Proposal, bool, error) {
	var stored storedProposal
	ok, err := m.get(hashKey(governorProposalPrefix, id.Bytes()), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &governance.Proposal{
		ID:               stored.ID,
		Proposer:         stored.Proposer,
		Targets:          stored.Targets,
		Values:           stored.Values,
		Calldatas:        stored.Calldatas,
		DescriptionHash:  stored.DescriptionHash,
		StartRound:       stored.StartRound,
		DepositThreshold: stored.DepositThreshold,
		DepositTotal:     stored.DepositTotal,
		Executed:         stored.Executed,
		Canceled:         stored.Canceled,
	}, true, nil
}

func (m *Manager) GovernorPutProposal(p *governance.Proposal) error {
	clone := p.Clone()
	values := make([]*big.Int, len(clone.Values))
	for i, v := range clone.Values {
		values[i] = nonNil(v)
	}
	stored := storedProposal{
		ID:               clone.ID,
		Proposer:         clone.Proposer,
		Targets:          clone.Targets,
		Values:           values,
		Calldatas:        clone.Calldatas,
		DescriptionHash:  clone.DescriptionHash,
		StartRound:       clone.StartRound,
		DepositThreshold: nonNil(clone.DepositThreshold),
		DepositTotal:     nonNil(clone.DepositTotal),
		Executed:         clone.Executed,
		Canceled:         clone.Canceled,
	}
	return m.put(hashKey(governorProposalPrefix, p.ID.Bytes()), stored)
}

func (m *Manager) GovernorVotes(id common.Hash) (*governance.ProposalVotes, error) {
	var stored storedProposalVotes
	ok, err := m.get(hashKey(governorVotesPrefix, id.Bytes()), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &governance.ProposalVotes{
			Against: big.NewInt(0),
			For:     big.NewInt(0),
			Abstain: big.NewInt(0),
		}, nil
	}
	return &governance.ProposalVotes{
		Against: stored.Against,
		For:     stored.For,
		Abstain: stored.Abstain,
	}, nil
}

func (m *Manager) GovernorPutVotes(id common.Hash, votes *governance.ProposalVotes) error {
	clone := votes.Clone()
	stored := storedProposalVotes{Against: clone.Against, For: clone.For, Abstain: clone.Abstain}
	return m.put(hashKey(governorVotesPrefix, id.Bytes()), stored)
}

func (m *Manager) GovernorHasVoted(id common.Hash, voter common.Address) (bool, error) {
	return m.getBool(hashKey(governorVotedPrefix, id.Bytes(), voter.Bytes()))
}

func (m *Manager) GovernorSetHasVoted(id common.Hash, voter common.Address) error {
	return m.put(hashKey(governorVotedPrefix, id.Bytes(), voter.Bytes()), true)
}

func (m *Manager) GovernorDeposit(id common.Hash, depositor common.Address) (*big.Int, error) {
	return m.getBig(hashKey(governorDepositPrefix, id.Bytes(), depositor.Bytes()))
}

func (m *Manager) GovernorSetDeposit(id common.Hash, depositor common.Address, amount *big.Int) error {
	return m.put(hashKey(governorDepositPrefix, id.Bytes(), depositor.Bytes()), nonNil(amount))
}

func (m *Manager) GovernorQuadraticVotingFlag() (*checkpoints.Flag, error) {
	return m.getFlag(hashKey(governorQuadraticKey))
}

func (m *Manager) GovernorPutQuadraticVotingFlag(flag *checkpoints.Flag) error {
	return m.putFlag(hashKey(governorQuadraticKey), flag)
}

func (m *Manager) GovernorQuorumTrace() (*checkpoints.Trace, error) {
	return m.getTrace(hashKey(governorQuorumKey))
}

func (m *Manager) GovernorPutQuorumTrace(trace *checkpoints.Trace) error {
	return m.putTrace(hashKey(governorQuorumKey), trace)
}
