package mvcc

// Key identifies a single piece of state touched by a transaction.
type Key string

type (
	// TxnIndex is the position of a transaction within the current block.
	TxnIndex int

	// Incarnation counts how many times a transaction has been
	// (re-)executed within the current block.
	Incarnation uint
)

// Version identifies a specific execution attempt of a transaction.
type Version struct {
	Index       TxnIndex
	Incarnation Incarnation
}

// StorageVersion is the sentinel for the pre-block storage state.
var StorageVersion = Version{Index: -1}

// Valid reports whether the version refers to an in-block write.
// An invalid version means the value came from storage.
func (v Version) Valid() bool {
	return v.Index >= 0
}
