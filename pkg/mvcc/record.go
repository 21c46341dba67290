package mvcc

import "go.uber.org/atomic"

type recordKind uint8

const (
	writeRecord recordKind = iota
	deltaRecord
)

// versionRecord is one slot in a key's history: either a tentative write
// tagged with its incarnation, or a delta operation. The stale flag lives
// in a separate atomic so invalidation never touches the payload and never
// contends with a concurrent reader beyond a flag load.
type versionRecord struct {
	kind        recordKind
	incarnation Incarnation
	value       *Value
	delta       DeltaOp

	stale atomic.Bool
}

func newWriteRecord(inc Incarnation, value *Value) *versionRecord {
	return &versionRecord{kind: writeRecord, incarnation: inc, value: value}
}

func newDeltaRecord(op DeltaOp) *versionRecord {
	return &versionRecord{kind: deltaRecord, delta: op}
}

func (r *versionRecord) markStale() {
	r.stale.Store(true)
}

func (r *versionRecord) isStale() bool {
	return r.stale.Load()
}
