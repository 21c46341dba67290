package mvcc

import "math"

// DeltaOp is a composable increment or decrement on the uint64 domain.
// It records the net effect of a transaction on a shared counter without
// fixing the counter's concrete value, so independent transactions do not
// serialize on the key. Composition is commutative and associative.
type DeltaOp struct {
	// Negative selects the direction of the net effect.
	Negative bool
	// Magnitude is the absolute size of the net effect.
	Magnitude uint64
}

// Add returns a delta that increments by n.
func Add(n uint64) DeltaOp {
	return DeltaOp{Magnitude: n}
}

// Sub returns a delta that decrements by n.
func Sub(n uint64) DeltaOp {
	return DeltaOp{Negative: true, Magnitude: n}
}

// Merge composes two deltas into their combined net effect. It fails with
// ErrDeltaApplication when the combined magnitude overflows the domain.
func (d DeltaOp) Merge(other DeltaOp) (DeltaOp, error) {
	if d.Negative == other.Negative {
		if d.Magnitude > math.MaxUint64-other.Magnitude {
			return DeltaOp{}, ErrDeltaApplication
		}
		return DeltaOp{Negative: d.Negative, Magnitude: d.Magnitude + other.Magnitude}, nil
	}
	if d.Magnitude >= other.Magnitude {
		return DeltaOp{Negative: d.Negative, Magnitude: d.Magnitude - other.Magnitude}, nil
	}
	return DeltaOp{Negative: other.Negative, Magnitude: other.Magnitude - d.Magnitude}, nil
}

// Apply resolves the delta against a concrete base value. It fails with
// ErrDeltaApplication on overflow or underflow.
func (d DeltaOp) Apply(base uint64) (uint64, error) {
	if d.Negative {
		if base < d.Magnitude {
			return 0, ErrDeltaApplication
		}
		return base - d.Magnitude, nil
	}
	if base > math.MaxUint64-d.Magnitude {
		return 0, ErrDeltaApplication
	}
	return base + d.Magnitude, nil
}
