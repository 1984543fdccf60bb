package checkpoints

import "math/big"

// Flag layers boolean semantics over a Trace. It backs the checkpointed
// quadratic-voting and quadratic-rewarding toggles: the effective value of a
// toggle is always read against a historical timepoint, never the call-time
// latest, so mid-window flips cannot change an in-flight round.
type Flag struct {
	trace Trace
}

// Set records the flag value at the supplied key and returns the previous
// effective value.
func (f *Flag) Set(key uint64, enabled bool) (bool, error) {
	if f == nil {
		return false, ErrNilTrace
	}
	value := big.NewInt(0)
	if enabled {
		value = big.NewInt(1)
	}
	prev, _, err := f.trace.Push(key, value)
	if err != nil {
		return false, err
	}
	return prev.Sign() != 0, nil
}

// Toggle flips the flag at the supplied key and returns the new value.
func (f *Flag) Toggle(key uint64) (bool, error) {
	if f == nil {
		return false, ErrNilTrace
	}
	next := !f.Enabled()
	if _, err := f.Set(key, next); err != nil {
		return false, err
	}
	return next, nil
}

// EnabledAt reports the flag value as of the supplied key.
func (f *Flag) EnabledAt(key uint64) bool {
	if f == nil {
		return false
	}
	return f.trace.UpperLookupRecent(key).Sign() != 0
}

// Enabled reports the most recently recorded flag value.
func (f *Flag) Enabled() bool {
	if f == nil {
		return false
	}
	return f.trace.Latest().Sign() != 0
}

// Trace exposes the underlying trace for persistence.
func (f *Flag) Trace() *Trace {
	if f == nil {
		return nil
	}
	return &f.trace
}
