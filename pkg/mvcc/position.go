package mvcc

// Position is the internal ordered key of a record within a key's history.
// Transaction index i maps to position i+1, leaving position 0 free for the
// pre-block storage state. The mapping is total, invertible and preserves
// the ordering of transaction indexes.
type Position uint64

// StoragePosition orders strictly before every transaction position.
const StoragePosition Position = 0

// PositionOf maps a transaction index to its history position.
func PositionOf(idx TxnIndex) Position {
	return Position(idx) + 1
}

// TxnIndex maps a position back to its transaction index. The second
// return is false for StoragePosition, which has no transaction index.
func (p Position) TxnIndex() (TxnIndex, bool) {
	if p == StoragePosition {
		return StorageVersion.Index, false
	}
	return TxnIndex(p - 1), true
}
