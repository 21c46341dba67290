// Package exec names the collaborators around the multi-version store.
// The store itself never schedules, re-executes or persists anything;
// these interfaces are the contract it is driven through.
package exec

import "blockmvcc/pkg/mvcc"

// BaseState supplies pre-block values: it answers reads that fall before
// the first in-block write and seeds delta materialization at commit.
// Implementations must be safe for concurrent use.
type BaseState interface {
	// Get returns the stored value for key, or ErrNotFound when storage
	// holds nothing for it.
	Get(key mvcc.Key) (*mvcc.Value, error)
}

// TxExecutor runs one execution attempt of one transaction, reading
// through the store and recording its writes and deltas back into it.
type TxExecutor interface {
	Execute(version mvcc.Version) error
}

// Scheduler owns transaction ordering: it assigns incarnations, decides
// when a transaction re-executes, validates read sets, and interprets the
// store's DependencyError results. It is the sole caller of MarkStale and
// the sole consumer of TakeDeltaKeys/MaterializeDeltas at block commit.
type Scheduler interface {
	// Abort reports that version's execution observed a dependency on
	// the given transaction and must be retried after it resolves.
	Abort(version mvcc.Version, dependsOn mvcc.TxnIndex)
	// Invalidated reports that validation found version's writes stale.
	Invalidated(version mvcc.Version)
}
