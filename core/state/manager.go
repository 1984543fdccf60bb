package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"vebetterdao/native/checkpoints"
	"vebetterdao/storage/trie"
)

// Manager persists all protocol state in the state trie. It implements the
// narrow state interfaces declared by each engine; every value is RLP encoded
// under a keccak-hashed, prefix-namespaced key.
type Manager struct {
	trie *trie.Trie
}

// NewManager creates a state manager operating on the provided trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{trie: tr}
}

// Root returns the current (uncommitted) state root.
func (m *Manager) Root() common.Hash {
	return m.trie.Hash()
}

// Commit flushes pending writes to the backing database and returns the new
// state root.
func (m *Manager) Commit(parent common.Hash, height uint64) (common.Hash, error) {
	return m.trie.Commit(parent, height)
}

// Reset discards pending writes and reloads the trie at root.
func (m *Manager) Reset(root common.Hash) error {
	return m.trie.Reset(root)
}

func hashKey(parts ...[]byte) []byte {
	var buf []byte
	for i, part := range parts {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

func (m *Manager) put(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %T: %w", value, err)
	}
	return m.trie.Update(key, encoded)
}

// get decodes the stored value into out and reports whether the key existed.
func (m *Manager) get(key []byte, out interface{}) (bool, error) {
	data, err := m.trie.Get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %T: %w", out, err)
	}
	return true, nil
}

func (m *Manager) getUint(key []byte) (uint64, error) {
	var value uint64
	if _, err := m.get(key, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func (m *Manager) getBig(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.get(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (m *Manager) getBool(key []byte) (bool, error) {
	var value bool
	if _, err := m.get(key, &value); err != nil {
		return false, err
	}
	return value, nil
}

// storedCheckpoint is the RLP shape of one trace entry.
type storedCheckpoint struct {
	Key   uint64
	Value *big.Int
}

func (m *Manager) putTrace(key []byte, tr *checkpoints.Trace) error {
	history := tr.Checkpoints()
	stored := make([]storedCheckpoint, len(history))
	for i, cp := range history {
		stored[i] = storedCheckpoint{Key: cp.Key, Value: cp.Value}
	}
	return m.put(key, stored)
}

func (m *Manager) getTrace(key []byte) (*checkpoints.Trace, error) {
	var stored []storedCheckpoint
	if _, err := m.get(key, &stored); err != nil {
		return nil, err
	}
	history := make([]checkpoints.Checkpoint, len(stored))
	for i, cp := range stored {
		history[i] = checkpoints.Checkpoint{Key: cp.Key, Value: cp.Value}
	}
	tr := new(checkpoints.Trace)
	if err := tr.Restore(history); err != nil {
		return nil, err
	}
	return tr, nil
}

func (m *Manager) putFlag(key []byte, flag *checkpoints.Flag) error {
	return m.putTrace(key, flag.Trace())
}

func (m *Manager) getFlag(key []byte) (*checkpoints.Flag, error) {
	tr, err := m.getTrace(key)
	if err != nil {
		return nil, err
	}
	flag := new(checkpoints.Flag)
	if err := flag.Trace().Restore(tr.Checkpoints()); err != nil {
		return nil, err
	}
	return flag, nil
}
