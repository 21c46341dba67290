package mvcc

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentWritersOnDistinctKeys(t *testing.T) {
	store := NewMultiVersionStore(Options{ShardCount: 8})

	const keys = 64
	const writersPerKey = 16

	var wg sync.WaitGroup
	for k := 0; k < keys; k++ {
		key := Key(fmt.Sprintf("key-%d", k))
		for w := 0; w < writersPerKey; w++ {
			wg.Add(1)
			go func(idx TxnIndex) {
				defer wg.Done()
				store.Write(key, Version{Index: idx}, NumericValue(uint64(idx)))
			}(TxnIndex(w))
		}
	}
	wg.Wait()

	for k := 0; k < keys; k++ {
		key := Key(fmt.Sprintf("key-%d", k))
		res, err := store.Read(key, writersPerKey)
		require.NoError(t, err)
		assert.Equal(t, TxnIndex(writersPerKey-1), res.Version.Index)
	}
}

func TestConcurrentReadersAndStaleMarking(t *testing.T) {
	store := NewMultiVersionStore(Options{ShardCount: 8})

	const writers = 32
	for i := 0; i < writers; i++ {
		store.Write("hot", Version{Index: TxnIndex(i)}, NumericValue(uint64(i)))
	}

	var wg sync.WaitGroup
	for r := 0; r < 64; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				res, err := store.Read("hot", writers)
				if err != nil {
					// The only acceptable failure is a dependency on a
					// concurrently invalidated record.
					_, ok := Dependency(err)
					assert.True(t, ok)
					continue
				}
				assert.Equal(t, ReadVersioned, res.Kind)
			}
		}()
	}
	for m := 0; m < 8; m++ {
		wg.Add(1)
		go func(idx TxnIndex) {
			defer wg.Done()
			assert.NoError(t, store.MarkStale("hot", idx))
		}(TxnIndex(writers - 1 - m))
	}
	wg.Wait()
}

func TestConcurrentDeltaRecordingRegistersKeyOnce(t *testing.T) {
	store := NewMultiVersionStore(Options{ShardCount: 8})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(idx TxnIndex) {
			defer wg.Done()
			store.RecordDelta("counter", idx, Add(1))
		}(TxnIndex(i))
	}
	wg.Wait()

	assert.Equal(t, []Key{"counter"}, store.TakeDeltaKeys())

	base := uint64(0)
	out := store.MaterializeDeltas("counter", &base)
	require.Len(t, out, 64)
	assert.Equal(t, uint64(64), out[len(out)-1].Value)
}
