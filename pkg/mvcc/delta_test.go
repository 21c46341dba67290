package mvcc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaApply(t *testing.T) {
	n, err := Add(5).Apply(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(105), n)

	n, err = Sub(5).Apply(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(95), n)
}

func TestDeltaApplyOverflow(t *testing.T) {
	_, err := Add(2).Apply(math.MaxUint64 - 1)
	assert.ErrorIs(t, err, ErrDeltaApplication)
}

func TestDeltaApplyUnderflow(t *testing.T) {
	_, err := Sub(101).Apply(100)
	assert.ErrorIs(t, err, ErrDeltaApplication)
}

func TestDeltaMergeNetsOut(t *testing.T) {
	merged, err := Add(7).Merge(Sub(10))
	require.NoError(t, err)
	assert.Equal(t, Sub(3), merged)

	merged, err = Add(5).Merge(Add(7))
	require.NoError(t, err)
	assert.Equal(t, Add(12), merged)

	merged, err = Sub(4).Merge(Add(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), merged.Magnitude)
}

func TestDeltaMergeCommutes(t *testing.T) {
	ops := []DeltaOp{Add(3), Sub(9), Add(20), Sub(1)}
	for _, a := range ops {
		for _, b := range ops {
			ab, err1 := a.Merge(b)
			ba, err2 := b.Merge(a)
			require.NoError(t, err1)
			require.NoError(t, err2)
			assert.Equal(t, ab.Magnitude, ba.Magnitude)
			if ab.Magnitude != 0 {
				assert.Equal(t, ab.Negative, ba.Negative)
			}
		}
	}
}

func TestDeltaMergeOverflow(t *testing.T) {
	_, err := Add(math.MaxUint64).Merge(Add(1))
	assert.ErrorIs(t, err, ErrDeltaApplication)

	_, err = Sub(math.MaxUint64).Merge(Sub(1))
	assert.ErrorIs(t, err, ErrDeltaApplication)
}
