package state

import (
	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/checkpoints"
)

func (m *Manager) IdentityPersonFlag(subject common.Address) (*checkpoints.Flag, error) {
	return m.getFlag(hashKey(identityPersonPrefix, subject.Bytes()))
}

func (m *Manager) IdentityPutPersonFlag(subject common.Address, flag *checkpoints.Flag) error {
	return m.putFlag(hashKey(identityPersonPrefix, subject.Bytes()), flag)
}

func (m *Manager) IdentityRevocationReason(subject common.Address) (string, error) {
	var reason string
	if _, err := m.get(hashKey(identityReasonPrefix, subject.Bytes()), &reason); err != nil {
		return "", err
	}
	return reason, nil
}

func (m *Manager) IdentitySetRevocationReason(subject common.Address, reason string) error {
	return m.put(hashKey(identityReasonPrefix, subject.Bytes()), reason)
}

// storedSelection wraps an optional uint64 so "unset" and "zero" stay
// distinguishable.
type storedSelection struct {
	Value uint64
	Set   bool
}

func (m *Manager) GalaxySelectedToken(owner common.Address) (uint64, bool, error) {
	var stored storedSelection
	ok, err := m.get(hashKey(galaxySelectedPrefix, owner.Bytes()), &stored)
	if err != nil || !ok {
		return 0, false, err
	}
	return stored.Value, stored.Set, nil
}

func (m *Manager) GalaxySetSelectedToken(owner common.Address, tokenID uint64) error {
	stored := storedSelection{Value: tokenID, Set: true}
	return m.put(hashKey(galaxySelectedPrefix, owner.Bytes()), stored)
}

func (m *Manager) GalaxyTokenLevel(tokenID uint64) (uint64, error) {
	return m.getUint(hashKey(galaxyLevelPrefix, uintBytes(tokenID)))
}

func (m *Manager) GalaxySetTokenLevel(tokenID uint64, level uint64) error {
	return m.put(hashKey(galaxyLevelPrefix, uintBytes(tokenID)), level)
}

func (m *Manager) GalaxyAttachedNode(tokenID uint64) (uint64, bool, error) {
	var stored storedSelection
	ok, err := m.get(hashKey(galaxyNodePrefix, uintBytes(tokenID)), &stored)
	if err != nil || !ok {
		return 0, false, err
	}
	return stored.Value, stored.Set, nil
}

func (m *Manager) GalaxySetAttachedNode(tokenID uint64, nodeID uint64) error {
	stored := storedSelection{Value: nodeID, Set: true}
	return m.put(hashKey(galaxyNodePrefix, uintBytes(tokenID)), stored)
}
