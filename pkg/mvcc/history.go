package mvcc

import (
	"sync"

	"github.com/tidwall/btree"
)

// historyEntry pairs a record with its position in the key's history.
type historyEntry struct {
	pos Position
	rec *versionRecord
}

// keyHistory is the ordered per-key collection of version records, at most
// one per transaction index. The btree is guarded by mu; the records it
// holds carry their own atomic stale flag, so invalidation and the read
// scan only ever take the read side of the lock.
type keyHistory struct {
	mu       sync.RWMutex
	records  *btree.BTreeG[historyEntry]
	hasDelta bool
}

func newKeyHistory() *keyHistory {
	return &keyHistory{
		records: btree.NewBTreeG(func(a, b historyEntry) bool {
			return a.pos < b.pos
		}),
	}
}

// write records a tentative value for idx. Incarnations at a fixed index
// must strictly increase; anything else means the scheduler lost track of
// re-executions and the history can no longer be trusted.
func (h *keyHistory) write(idx TxnIndex, inc Incarnation, value *Value) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pos := PositionOf(idx)
	if prev, ok := h.records.Get(historyEntry{pos: pos}); ok {
		if prev.rec.kind == writeRecord && prev.rec.incarnation >= inc {
			invariantViolation("write at txn %d: incarnation %d does not exceed recorded %d",
				idx, inc, prev.rec.incarnation)
		}
	}
	h.records.Set(historyEntry{pos: pos, rec: newWriteRecord(inc, value)})
}

// recordDelta records a delta for idx, replacing any previous record there.
// It reports whether this is the first delta ever seen for the key.
func (h *keyHistory) recordDelta(idx TxnIndex, op DeltaOp) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records.Set(historyEntry{pos: PositionOf(idx), rec: newDeltaRecord(op)})
	if h.hasDelta {
		return false
	}
	h.hasDelta = true
	return true
}

// markStale flips the record's stale flag. The flag is atomic, so a read
// lock on the map is enough.
func (h *keyHistory) markStale(idx TxnIndex) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.records.Get(historyEntry{pos: PositionOf(idx)})
	if !ok {
		return ErrNotFound
	}
	e.rec.markStale()
	return nil
}

// delete removes the record for idx entirely.
func (h *keyHistory) delete(idx TxnIndex) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.records.Delete(historyEntry{pos: PositionOf(idx)}); !ok {
		return ErrNotFound
	}
	return nil
}

// read answers what transaction idx observes for this key: the latest
// fresh write below idx, with any run of deltas between that write and idx
// folded on top of it. Scanning backward keeps the common case (a plain
// write, no deltas) a single descent step.
func (h *keyHistory) read(idx TxnIndex) (ReadResult, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var (
		res       ReadResult
		resErr    error
		done      bool
		acc       DeltaOp
		accActive bool
		accFailed bool
	)

	// Positions at or below PositionOf(idx)-1 belong to transactions
	// strictly below idx; a transaction never observes its own record.
	pivot := historyEntry{pos: Position(idx)}
	h.records.Descend(pivot, func(e historyEntry) bool {
		if e.rec.isStale() {
			// Everything below a stale record is untrustworthy: the
			// re-execution that replaces it may change what it writes.
			recIdx, _ := e.pos.TxnIndex()
			resErr = &DependencyError{TxnIndex: recIdx}
			done = true
			return false
		}

		switch e.rec.kind {
		case writeRecord:
			recIdx, _ := e.pos.TxnIndex()
			version := Version{Index: recIdx, Incarnation: e.rec.incarnation}
			if !accActive {
				res = ReadResult{Kind: ReadVersioned, Version: version, Value: e.rec.value}
				done = true
				return false
			}
			base, numeric := e.rec.value.AsUint64()
			if !numeric {
				// A deletion ends the chain regardless of what the
				// accumulated deltas would have done to a number.
				res = ReadResult{Kind: ReadVersioned, Version: version, Value: e.rec.value}
				done = true
				return false
			}
			if accFailed {
				resErr = ErrDeltaApplication
				done = true
				return false
			}
			resolved, err := acc.Apply(base)
			if err != nil {
				resErr = ErrDeltaApplication
			} else {
				res = ReadResult{Kind: ReadResolved, Resolved: resolved}
			}
			done = true
			return false

		case deltaRecord:
			if !accActive {
				acc = e.rec.delta
				accActive = true
				return true
			}
			merged, err := acc.Merge(e.rec.delta)
			if err != nil {
				// Keep scanning; a write further down may turn out to
				// be a deletion, which takes precedence over the
				// accumulation failure.
				accFailed = true
				return true
			}
			acc = merged
			return true
		}
		return false
	})

	if done {
		return res, resErr
	}
	switch {
	case accActive && accFailed:
		return ReadResult{}, ErrDeltaApplication
	case accActive:
		return ReadResult{Kind: ReadUnresolved, Delta: acc}, nil
	default:
		return ReadResult{}, ErrNotFound
	}
}

// drain empties the history and returns its entries in ascending
// transaction-index order.
func (h *keyHistory) drain() []historyEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := make([]historyEntry, 0, h.records.Len())
	h.records.Scan(func(e historyEntry) bool {
		entries = append(entries, e)
		return true
	})
	h.records.Clear()
	return entries
}
