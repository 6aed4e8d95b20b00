package packstream

import "bytes"

// valuesEqual compares two Values for semantic equality: Map comparison
// ignores key order (§3 invariant), everything else compares structurally.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && bytes.Equal(av, bv)
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv, ok := b.(*Map)
		return ok && av.Equal(bv)
	case Structure:
		bv, ok := b.(Structure)
		if !ok || av.Signature() != bv.Signature() {
			return false
		}
		af, bf := av.Fields(), bv.Fields()
		if len(af) != len(bf) {
			return false
		}
		for i := range af {
			if !valuesEqual(af[i], bf[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Equal reports whether a and b encode the same value, per the semantics
// described in valuesEqual (Map order-insensitive, everything else exact).
func Equal(a, b Value) bool {
	return valuesEqual(a, b)
}
