package state

import (
	"math/big"

	"vebetterdao/native/emissions"
)

// storedCycleAmounts is the RLP shape of one cycle's emission record.
type storedCycleAmounts struct {
	XAllocations *big.Int
	Vote2Earn    *big.Int
	Treasury     *big.Int
	StartBlock   uint64
}

func (m *Manager) EmissionsNextCycle() (uint64, error) {
	return m.getUint(hashKey(emissionsNextCycleKey))
}

func (m *Manager) EmissionsSetNextCycle(cycle uint64) error {
	return m.put(hashKey(emissionsNextCycleKey), cycle)
}

func (m *Manager) EmissionsLastBlock() (uint64, error) {
	return m.getUint(hashKey(emissionsLastBlockKey))
}

func (m *Manager) EmissionsSetLastBlock(block uint64) error {
	return m.put(hashKey(emissionsLastBlockKey), block)
}

func (m *Manager) EmissionsTotal() (*big.Int, error) {
	return m.getBig(hashKey(emissionsTotalKey))
}

func (m *Manager) EmissionsSetTotal(total *big.Int) error {
	return m.put(hashKey(emissionsTotalKey), nonNil(total))
}

func (m *Manager) EmissionsCycleAmounts(cycle uint64) (*emissions.CycleAmounts, bool, error) {
	var stored storedCycleAmounts
	ok, err := m.get(hashKey(emissionsCyclePrefix, uintBytes(cycle)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &emissions.CycleAmounts{
		XAllocations: stored.XAllocations,
		Vote2Earn:    stored.Vote2Earn,
		Treasury:     stored.Treasury,
		StartBlock:   stored.StartBlock,
	}, true, nil
}

func (m *Manager) EmissionsPutCycleAmounts(cycle uint64, amounts *emissions.CycleAmounts) error {
	clone := amounts.Clone()
	if clone == nil {
		clone = &emissions.CycleAmounts{}
	}
	stored := storedCycleAmounts{
		XAllocations: nonNil(clone.XAllocations),
		Vote2Earn:    nonNil(clone.Vote2Earn),
		Treasury:     nonNil(clone.Treasury),
		StartBlock:   clone.StartBlock,
	}
	return m.put(hashKey(emissionsCyclePrefix, uintBytes(cycle)), stored)
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
