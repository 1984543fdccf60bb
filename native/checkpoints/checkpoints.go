package checkpoints

import (
	"math/big"
	"sort"
)

// Checkpoint pairs a monotonic timepoint key with the value recorded at that
// timepoint. Keys are block heights in practice but the store only requires a
// monotonically increasing counter.
type Checkpoint struct {
	Key   uint64
	Value *big.Int
}

// Trace is an append-only history of checkpointed values ordered by key. The
// zero value is an empty trace ready for use.
type Trace struct {
	checkpoints []Checkpoint
}

// Len returns the number of recorded checkpoints.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.checkpoints)
}

// At returns a copy of the checkpoint at position i.
func (t *Trace) At(i int) (Checkpoint, error) {
	if t == nil || i < 0 || i >= len(t.checkpoints) {
		return Checkpoint{}, ErrIndexOutOfBounds
	}
	cp := t.checkpoints[i]
	return Checkpoint{Key: cp.Key, Value: copyValue(cp.Value)}, nil
}

// Push records value at the supplied key. Keys must arrive in non-decreasing
// order: pushing a key equal to the latest checkpoint overwrites its value in
// place, pushing a lower key fails with ErrUnorderedInsertion. The previous
// latest value and the stored value are returned for event emission.
func (t *Trace) Push(key uint64, value *big.Int) (prev *big.Int, stored *big.Int, err error) {
	if t == nil {
		return nil, nil, ErrNilTrace
	}
	stored = copyValue(value)
	if len(t.checkpoints) == 0 {
		t.checkpoints = append(t.checkpoints, Checkpoint{Key: key, Value: stored})
		return big.NewInt(0), copyValue(stored), nil
	}
	last := &t.checkpoints[len(t.checkpoints)-1]
	prev = copyValue(last.Value)
	switch {
	case key < last.Key:
		return nil, nil, ErrUnorderedInsertion
	case key == last.Key:
		last.Value = stored
	default:
		t.checkpoints = append(t.checkpoints, Checkpoint{Key: key, Value: stored})
	}
	return prev, copyValue(stored), nil
}

// UpperLookupRecent returns the value of the latest checkpoint with a key at or
// below the supplied key, or zero when no such checkpoint exists. The latest
// checkpoint is probed first since lookups overwhelmingly target recent keys.
func (t *Trace) UpperLookupRecent(key uint64) *big.Int {
	if t == nil || len(t.checkpoints) == 0 {
		return big.NewInt(0)
	}
	last := t.checkpoints[len(t.checkpoints)-1]
	if last.Key <= key {
		return copyValue(last.Value)
	}
	// Index of the first checkpoint strictly above key.
	idx := sort.Search(len(t.checkpoints), func(i int) bool {
		return t.checkpoints[i].Key > key
	})
	if idx == 0 {
		return big.NewInt(0)
	}
	return copyValue(t.checkpoints[idx-1].Value)
}

// Latest returns the most recently recorded value, or zero for an empty trace.
func (t *Trace) Latest() *big.Int {
	if t == nil || len(t.checkpoints) == 0 {
		return big.NewInt(0)
	}
	return copyValue(t.checkpoints[len(t.checkpoints)-1].Value)
}

// LatestCheckpoint reports whether any checkpoint exists along with the latest
// key and value.
func (t *Trace) LatestCheckpoint() (exists bool, key uint64, value *big.Int) {
	if t == nil || len(t.checkpoints) == 0 {
		return false, 0, big.NewInt(0)
	}
	last := t.checkpoints[len(t.checkpoints)-1]
	return true, last.Key, copyValue(last.Value)
}

// Checkpoints returns a deep copy of the recorded history, primarily for
// persistence and inspection.
func (t *Trace) Checkpoints() []Checkpoint {
	if t == nil {
		return nil
	}
	out := make([]Checkpoint, len(t.checkpoints))
	for i, cp := range t.checkpoints {
		out[i] = Checkpoint{Key: cp.Key, Value: copyValue(cp.Value)}
	}
	return out
}

// Restore replaces the trace contents with the supplied history. Keys must be
// strictly increasing; Restore is intended for rehydrating a trace from the
// state backend, not for general mutation.
func (t *Trace) Restore(history []Checkpoint) error {
	if t == nil {
		return ErrNilTrace
	}
	restored := make([]Checkpoint, 0, len(history))
	for i, cp := range history {
		if i > 0 && cp.Key <= restored[i-1].Key {
			return ErrUnorderedInsertion
		}
		restored = append(restored, Checkpoint{Key: cp.Key, Value: copyValue(cp.Value)})
	}
	t.checkpoints = restored
	return nil
}

func copyValue(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
