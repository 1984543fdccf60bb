package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/checkpoints"
)

func (m *Manager) RewardsCycleTotal(cycle uint64) (*big.Int, error) {
	return m.getBig(hashKey(rewardsCycleTotalPrefix, uintBytes(cycle)))
}

func (m *Manager) SetRewardsCycleTotal(cycle uint64, total *big.Int) error {
	return m.put(hashKey(rewardsCycleTotalPrefix, uintBytes(cycle)), nonNil(total))
}

func (m *Manager) RewardsVoterTotal(cycle uint64, voter common.Address) (*big.Int, error) {
	return m.getBig(hashKey(rewardsVoterPrefix, uintBytes(cycle), voter.Bytes()))
}

func (m *Manager) SetRewardsVoterTotal(cycle uint64, voter common.Address, total *big.Int) error {
	return m.put(hashKey(rewardsVoterPrefix, uintBytes(cycle), voter.Bytes()), nonNil(total))
}

func (m *Manager) RewardsTokenVoted(proposalID common.Hash, tokenID uint64) (bool, error) {
	return m.getBool(hashKey(rewardsTokenVotedPrefix, proposalID.Bytes(), uintBytes(tokenID)))
}

func (m *Manager) SetRewardsTokenVoted(proposalID common.Hash, tokenID uint64) error {
	return m.put(hashKey(rewardsTokenVotedPrefix, proposalID.Bytes(), uintBytes(tokenID)), true)
}

func (m *Manager) RewardsNodeVoted(proposalID common.Hash, nodeID uint64) (bool, error) {
	return m.getBool(hashKey(rewardsNodeVotedPrefix, proposalID.Bytes(), uintBytes(nodeID)))
}

func (m *Manager) SetRewardsNodeVoted(proposalID common.Hash, nodeID uint64) error {
	return m.put(hashKey(rewardsNodeVotedPrefix, proposalID.Bytes(), uintBytes(nodeID)), true)
}

func (m *Manager) QuadraticRewardingFlag() (*checkpoints.Flag, error) {
	return m.getFlag(hashKey(rewardsQuadraticKey))
}

func (m *Manager) PutQuadraticRewardingFlag(flag *checkpoints.Flag) error {
	return m.putFlag(hashKey(rewardsQuadraticKey), flag)
}
