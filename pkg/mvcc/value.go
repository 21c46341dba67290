package mvcc

import "encoding/binary"

// Value is a transaction's write payload. Values are shared by pointer
// between the store and any number of concurrent readers; they must be
// treated as immutable after construction. A nil payload is a logical
// deletion.
type Value struct {
	data []byte
}

// NewValue wraps raw executor output. Passing nil produces a deletion.
func NewValue(data []byte) *Value {
	return &Value{data: data}
}

// DeletionValue returns a value that marks the key as deleted.
func DeletionValue() *Value {
	return &Value{}
}

// NumericValue encodes n in the fixed-width numeric domain used by deltas.
func NumericValue(n uint64) *Value {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, n)
	return &Value{data: data}
}

// Slice returns the raw payload, nil for deletions.
func (v *Value) Slice() []byte {
	return v.data
}

// IsDeletion reports whether the value marks the key as deleted.
func (v *Value) IsDeletion() bool {
	return v.data == nil
}

// AsUint64 interprets the value as the numeric delta domain. It reports
// false for deletions and for payloads that are not fixed-width numbers.
func (v *Value) AsUint64() (uint64, bool) {
	if len(v.data) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(v.data), true
}
