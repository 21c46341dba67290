package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockmvcc/pkg/mvcc"
)

func TestMemStateGet(t *testing.T) {
	state := NewMemState()
	state.Set("k", mvcc.NumericValue(42))

	v, err := state.Get("k")
	require.NoError(t, err)
	n, ok := v.AsUint64()
	require.True(t, ok)
	assert.Equal(t, uint64(42), n)

	_, err = state.Get("missing")
	assert.ErrorIs(t, err, mvcc.ErrNotFound)
}

func TestMemStateResolvesUnresolvedRead(t *testing.T) {
	state := NewMemState()
	state.Set("counter", mvcc.NumericValue(100))

	store := mvcc.NewMultiVersionStore(mvcc.Options{})
	store.RecordDelta("counter", 2, mvcc.Add(5))
	store.RecordDelta("counter", 5, mvcc.Add(7))

	res, err := store.Read("counter", 10)
	require.NoError(t, err)
	require.Equal(t, mvcc.ReadUnresolved, res.Kind)

	v, err := state.Get("counter")
	require.NoError(t, err)
	base, ok := v.AsUint64()
	require.True(t, ok)

	resolved, err := res.ResolveBase(base)
	require.NoError(t, err)
	assert.Equal(t, uint64(112), resolved)
}
