package checkpoints

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushAppendsAndLooksUp(t *testing.T) {
	trace := &Trace{}
	keys := []uint64{3, 7, 12, 40}
	for i, key := range keys {
		_, _, err := trace.Push(key, big.NewInt(int64(i+1)))
		require.NoError(t, err)
	}
	require.Equal(t, len(keys), trace.Len())

	// Queries below the first key resolve to zero.
	require.Zero(t, trace.UpperLookupRecent(0).Sign())
	require.Zero(t, trace.UpperLookupRecent(2).Sign())

	// Each query returns the value of the last checkpoint at or below it.
	cases := map[uint64]int64{3: 1, 4: 1, 7: 2, 11: 2, 12: 3, 39: 3, 40: 4, 1000: 4}
	for key, want := range cases {
		require.Equal(t, want, trace.UpperLookupRecent(key).Int64(), "key %d", key)
	}
	require.Equal(t, int64(4), trace.Latest().Int64())
}

func TestPushEqualKeyOverwrites(t *testing.T) {
	trace := &Trace{}
	_, _, err := trace.Push(5, big.NewInt(10))
	require.NoError(t, err)
	prev, stored, err := trace.Push(5, big.NewInt(20))
	require.NoError(t, err)
	require.Equal(t, int64(10), prev.Int64())
	require.Equal(t, int64(20), stored.Int64())
	require.Equal(t, 1, trace.Len())
	require.Equal(t, int64(20), trace.Latest().Int64())
}

func TestPushRejectsUnorderedInsertion(t *testing.T) {
	trace := &Trace{}
	_, _, err := trace.Push(10, big.NewInt(1))
	require.NoError(t, err)
	_, _, err = trace.Push(9, big.NewInt(2))
	require.ErrorIs(t, err, ErrUnorderedInsertion)
	// The failed push must not disturb the recorded history.
	require.Equal(t, 1, trace.Len())
	require.Equal(t, int64(1), trace.Latest().Int64())
}

func TestLookupPropertySweep(t *testing.T) {
	trace := &Trace{}
	const step = 5
	for i := uint64(1); i <= 20; i++ {
		_, _, err := trace.Push(i*step, new(big.Int).SetUint64(i*100))
		require.NoError(t, err)
	}
	for q := uint64(0); q <= 21*step; q++ {
		want := big.NewInt(0)
		if q >= step {
			want = new(big.Int).SetUint64(q / step * 100)
		}
		if q/step > 20 {
			want = new(big.Int).SetUint64(2000)
		}
		require.Equal(t, want.String(), trace.UpperLookupRecent(q).String(), "query %d", q)
	}
}

func TestLatestCheckpointAndRestore(t *testing.T) {
	trace := &Trace{}
	exists, _, value := trace.LatestCheckpoint()
	require.False(t, exists)
	require.Zero(t, value.Sign())

	_, _, err := trace.Push(2, big.NewInt(7))
	require.NoError(t, err)
	exists, key, value := trace.LatestCheckpoint()
	require.True(t, exists)
	require.Equal(t, uint64(2), key)
	require.Equal(t, int64(7), value.Int64())

	restored := &Trace{}
	require.NoError(t, restored.Restore(trace.Checkpoints()))
	require.Equal(t, trace.Latest().String(), restored.Latest().String())

	require.ErrorIs(t, restored.Restore([]Checkpoint{
		{Key: 5, Value: big.NewInt(1)},
		{Key: 5, Value: big.NewInt(2)},
	}), ErrUnorderedInsertion)
}

func TestValuesAreCopiedDefensively(t *testing.T) {
	trace := &Trace{}
	original := big.NewInt(42)
	_, _, err := trace.Push(1, original)
	require.NoError(t, err)
	original.SetInt64(99)
	require.Equal(t, int64(42), trace.Latest().Int64())

	latest := trace.Latest()
	latest.SetInt64(1)
	require.Equal(t, int64(42), trace.Latest().Int64())
}

func TestFlagToggleAndHistoricalRead(t *testing.T) {
	flag := &Flag{}
	require.False(t, flag.Enabled())
	require.False(t, flag.EnabledAt(100))

	next, err := flag.Toggle(10)
	require.NoError(t, err)
	require.True(t, next)

	next, err = flag.Toggle(20)
	require.NoError(t, err)
	require.False(t, next)

	// Historical reads pin the value at the queried key, not the latest.
	require.False(t, flag.EnabledAt(5))
	require.True(t, flag.EnabledAt(10))
	require.True(t, flag.EnabledAt(19))
	require.False(t, flag.EnabledAt(20))
	require.False(t, flag.EnabledAt(500))
}
