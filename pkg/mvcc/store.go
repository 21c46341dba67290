package mvcc

import (
	"sync"

	farm "github.com/dgryski/go-farm"
	"go.uber.org/zap"

	"blockmvcc/pkg/metrics"
)

const defaultShardCount = 64

// Options configures a MultiVersionStore. The zero value is usable.
type Options struct {
	// ShardCount is the number of buckets the key space is striped over.
	// Rounded up to a power of two; defaults to 64.
	ShardCount int
	// Logger receives commit-time debug events. Defaults to a no-op.
	Logger *zap.Logger
	// Metrics, when set, receives per-operation counters.
	Metrics *metrics.Metrics
}

// shard is one stripe of the key space. Distinct keys on distinct shards
// never contend; the shard lock covers only the map lookup, never a full
// history scan.
type shard struct {
	mu        sync.RWMutex
	histories map[Key]*keyHistory
}

// MultiVersionStore holds every tentative write and delta produced while a
// block executes. It lives for exactly one block: populated during
// execution, drained of delta keys at commit, then discarded.
//
// No operation ever blocks on another transaction; ordering conflicts
// surface as DependencyError and the scheduler decides when to retry.
type MultiVersionStore struct {
	shards []*shard
	mask   uint64

	logger *zap.Logger
	met    *metrics.Metrics

	deltaMu   sync.Mutex
	deltaKeys []Key
}

// NewMultiVersionStore creates an empty store for the next block.
func NewMultiVersionStore(opts Options) *MultiVersionStore {
	count := opts.ShardCount
	if count <= 0 {
		count = defaultShardCount
	}
	size := 1
	for size < count {
		size <<= 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	shards := make([]*shard, size)
	for i := range shards {
		shards[i] = &shard{histories: make(map[Key]*keyHistory)}
	}
	return &MultiVersionStore{
		shards: shards,
		mask:   uint64(size - 1),
		logger: logger,
		met:    opts.Metrics,
	}
}

func (s *MultiVersionStore) shardFor(key Key) *shard {
	return s.shards[farm.Hash64([]byte(key))&s.mask]
}

// history returns the key's history, optionally creating it.
func (s *MultiVersionStore) history(key Key, create bool) *keyHistory {
	sh := s.shardFor(key)

	sh.mu.RLock()
	h := sh.histories[key]
	sh.mu.RUnlock()
	if h != nil || !create {
		return h
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if h = sh.histories[key]; h == nil {
		h = newKeyHistory()
		sh.histories[key] = h
		if s.met != nil {
			s.met.TrackedKeys.Inc()
		}
	}
	return h
}

// Write records the value produced for key by the given execution attempt.
// Incarnations at a fixed (key, index) must strictly increase across
// calls; a violation panics, since tolerating it would let two readers
// observe two different incarnations of the same write.
func (s *MultiVersionStore) Write(key Key, version Version, value *Value) {
	s.history(key, true).write(version.Index, version.Incarnation, value)
	if s.met != nil {
		s.met.WritesTotal.Inc()
	}
}

// RecordDelta records a numeric delta for key at idx instead of a concrete
// value. The first delta for a key registers it for commit-time
// materialization, exactly once for the life of the store.
func (s *MultiVersionStore) RecordDelta(key Key, idx TxnIndex, op DeltaOp) {
	if s.history(key, true).recordDelta(idx, op) {
		s.deltaMu.Lock()
		s.deltaKeys = append(s.deltaKeys, key)
		s.deltaMu.Unlock()
	}
	if s.met != nil {
		s.met.DeltasTotal.Inc()
	}
}

// MarkStale flags the record at (key, idx) as invalidated pending
// re-execution. The record must exist; the scheduler only invalidates
// writes it has seen.
func (s *MultiVersionStore) MarkStale(key Key, idx TxnIndex) error {
	h := s.history(key, false)
	if h == nil {
		return ErrNotFound
	}
	if err := h.markStale(idx); err != nil {
		return err
	}
	if s.met != nil {
		s.met.StaleMarksTotal.Inc()
	}
	return nil
}

// Delete removes the record at (key, idx), used when the latest
// incarnation of a transaction no longer touches the key.
func (s *MultiVersionStore) Delete(key Key, idx TxnIndex) error {
	h := s.history(key, false)
	if h == nil {
		return ErrNotFound
	}
	if err := h.delete(idx); err != nil {
		return err
	}
	if s.met != nil {
		s.met.DeletesTotal.Inc()
	}
	return nil
}

// Read answers what transaction idx would observe for key given every
// record below idx currently in the store. It never blocks: a stale
// record below idx surfaces immediately as a DependencyError and the
// caller retries once the blocking transaction resolves.
func (s *MultiVersionStore) Read(key Key, idx TxnIndex) (ReadResult, error) {
	h := s.history(key, false)
	if h == nil {
		s.countRead(metrics.ReadOutcomeNotFound)
		return ReadResult{}, ErrNotFound
	}
	res, err := h.read(idx)
	s.countRead(readOutcome(res, err))
	return res, err
}

func readOutcome(res ReadResult, err error) string {
	switch {
	case err == nil && res.Kind == ReadVersioned:
		return metrics.ReadOutcomeVersioned
	case err == nil && res.Kind == ReadResolved:
		return metrics.ReadOutcomeResolved
	case err == nil:
		return metrics.ReadOutcomeUnresolved
	case err == ErrNotFound:
		return metrics.ReadOutcomeNotFound
	case err == ErrDeltaApplication:
		return metrics.ReadOutcomeDeltaError
	default:
		return metrics.ReadOutcomeDependency
	}
}

func (s *MultiVersionStore) countRead(outcome string) {
	if s.met != nil {
		s.met.ReadsTotal.WithLabelValues(outcome).Inc()
	}
}

// MaterializedDelta is the concrete value a delta-recording transaction is
// entitled to observe at block commit.
type MaterializedDelta struct {
	Index TxnIndex
	Value uint64
}

// MaterializeDeltas removes key's entire history and resolves its delta
// chain against base (the pre-block storage value, nil when storage holds
// nothing for the key). Destructive and one-shot: it runs exactly once per
// delta-bearing key at block commit. The key must have recorded a delta.
func (s *MultiVersionStore) MaterializeDeltas(key Key, base *uint64) []MaterializedDelta {
	sh := s.shardFor(key)
	sh.mu.Lock()
	h := sh.histories[key]
	delete(sh.histories, key)
	sh.mu.Unlock()

	if h == nil || !h.hasDelta {
		invariantViolation("materializing %q, which has no recorded delta", key)
	}
	if s.met != nil {
		s.met.TrackedKeys.Dec()
	}

	var (
		running uint64
		seeded  bool
	)
	if base != nil {
		running = *base
		seeded = true
	}

	entries := h.drain()
	out := make([]MaterializedDelta, 0, len(entries))
	for _, e := range entries {
		idx, _ := e.pos.TxnIndex()
		switch e.rec.kind {
		case writeRecord:
			n, numeric := e.rec.value.AsUint64()
			if numeric {
				running, seeded = n, true
			} else {
				// A deletion clears the base; only a fault if a later
				// delta still expects a number here.
				seeded = false
			}
		case deltaRecord:
			if !seeded {
				invariantViolation("materializing %q: delta at txn %d has no numeric base", key, idx)
			}
			n, err := e.rec.delta.Apply(running)
			if err != nil {
				invariantViolation("materializing %q: delta at txn %d left the numeric domain", key, idx)
			}
			running = n
			out = append(out, MaterializedDelta{Index: idx, Value: n})
		}
	}

	if s.met != nil {
		s.met.MaterializationsTotal.Inc()
		s.met.MaterializedDeltaCount.Observe(float64(len(out)))
	}
	s.logger.Debug("materialized delta key",
		zap.String("key", string(key)),
		zap.Int("deltas", len(out)))
	return out
}

// TakeDeltaKeys drains the list of keys that ever carried a delta. Each
// returned key requires one MaterializeDeltas call at block commit.
func (s *MultiVersionStore) TakeDeltaKeys() []Key {
	s.deltaMu.Lock()
	keys := s.deltaKeys
	s.deltaKeys = nil
	s.deltaMu.Unlock()

	s.logger.Debug("drained delta keys", zap.Int("count", len(keys)))
	return keys
}
