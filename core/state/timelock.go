package state

import (
	"github.com/ethereum/go-ethereum/common"

	"vebetterdao/native/timelock"
)

// storedTimelockOp is the RLP shape of a timelock operation.
type storedTimelockOp struct {
	ETA      uint64
	Done     bool
	Canceled bool
}

func (m *Manager) TimelockOperation(id common.Hash) (*timelock.Operation, bool, error) {
	var stored storedTimelockOp
	ok, err := m.get(hashKey(timelockOpPrefix, id.Bytes()), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &timelock.Operation{ETA: stored.ETA, Done: stored.Done, Canceled: stored.Canceled}, true, nil
}

func (m *Manager) TimelockPutOperation(id common.Hash, op *timelock.Operation) error {
	stored := storedTimelockOp{ETA: op.ETA, Done: op.Done, Canceled: op.Canceled}
	return m.put(hashKey(timelockOpPrefix, id.Bytes()), stored)
}

func (m *Manager) AuthHasPermission(permission string, addr common.Address) (bool, error) {
	return m.getBool(hashKey(authPermissionPrefix, []byte(permission), addr.Bytes()))
}

func (m *Manager) AuthSetPermission(permission string, addr common.Address, granted bool) error {
	return m.put(hashKey(authPermissionPrefix, []byte(permission), addr.Bytes()), granted)
}
