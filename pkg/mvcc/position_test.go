package mvcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionRoundTrip(t *testing.T) {
	for i := TxnIndex(0); i < 10000; i++ {
		idx, ok := PositionOf(i).TxnIndex()
		require.True(t, ok)
		require.Equal(t, i, idx)
	}
}

func TestStoragePositionHasNoTxnIndex(t *testing.T) {
	_, ok := StoragePosition.TxnIndex()
	assert.False(t, ok)
}

func TestStoragePositionOrdersFirst(t *testing.T) {
	for i := TxnIndex(0); i < 1000; i++ {
		assert.Less(t, StoragePosition, PositionOf(i))
	}
}

func TestPositionPreservesOrdering(t *testing.T) {
	prev := PositionOf(0)
	for i := TxnIndex(1); i < 1000; i++ {
		pos := PositionOf(i)
		assert.Less(t, prev, pos)
		prev = pos
	}
}
