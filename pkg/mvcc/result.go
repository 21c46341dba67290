package mvcc

// ReadKind discriminates the successful outcomes of Read.
type ReadKind uint8

const (
	// ReadVersioned means a concrete in-block write answered the read.
	ReadVersioned ReadKind = iota
	// ReadResolved means a run of deltas was applied to an in-block
	// numeric write, yielding a concrete number.
	ReadResolved
	// ReadUnresolved means only deltas were found; the caller must apply
	// the accumulated delta to a base value from storage.
	ReadUnresolved
)

// ReadResult is the answer Read gives for "what would transaction idx
// observe for this key". Which fields are meaningful depends on Kind.
type ReadResult struct {
	Kind ReadKind

	// Version and Value are set for ReadVersioned.
	Version Version
	Value   *Value

	// Resolved is set for ReadResolved.
	Resolved uint64

	// Delta is the accumulated operation for ReadUnresolved.
	Delta DeltaOp
}

// ResolveBase applies an unresolved result's accumulated delta to a base
// value fetched from storage. Calling it on any other kind is a caller bug.
func (r ReadResult) ResolveBase(base uint64) (uint64, error) {
	if r.Kind != ReadUnresolved {
		invariantViolation("ResolveBase on a %d result", r.Kind)
	}
	return r.Delta.Apply(base)
}
