package mvcc

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound means no record exists for the requested key or
	// position. For Read this is a normal outcome and the caller falls
	// back to storage; for MarkStale and Delete it is a caller bug.
	ErrNotFound = errors.New("mvcc: record not found")

	// ErrDeltaApplication means merging or applying deltas overflowed or
	// underflowed the numeric domain. The triggering transaction fails,
	// not the block.
	ErrDeltaApplication = errors.New("mvcc: delta application failed")
)

// DependencyError is returned by Read when the scan hit a stale record.
// The caller must treat its execution as provisional and retry after the
// named transaction resolves. The store itself never waits.
type DependencyError struct {
	TxnIndex TxnIndex
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("mvcc: read depends on unresolved transaction %d", e.TxnIndex)
}

// Dependency extracts the blocking transaction index from a Read error.
func Dependency(err error) (TxnIndex, bool) {
	var dep *DependencyError
	if errors.As(err, &dep) {
		return dep.TxnIndex, true
	}
	return 0, false
}

// InvariantViolationError is the panic value raised when a caller breaks a
// documented precondition. Continuing would silently corrupt the version
// history, so this is deliberately fatal rather than a returned error.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "mvcc: invariant violation: " + e.Reason
}

func invariantViolation(format string, args ...interface{}) {
	panic(&InvariantViolationError{Reason: fmt.Sprintf(format, args...)})
}
