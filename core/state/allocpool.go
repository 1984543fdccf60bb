package state

import "github.com/ethereum/go-ethereum/common"

func (m *Manager) AllocationClaimed(roundID uint64, appID common.Hash) (bool, error) {
	return m.getBool(hashKey(allocpoolClaimedPrefix, uintBytes(roundID), appID.Bytes()))
}

func (m *Manager) SetAllocationClaimed(roundID uint64, appID common.Hash) error {
	return m.put(hashKey(allocpoolClaimedPrefix, uintBytes(roundID), appID.Bytes()), true)
}
