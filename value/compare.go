package value

import "strings"

// Equal reports whether a and b hold the same value.
//
// Numbers compare across int and float. Two nulls are equal.
func Equal(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == b.Kind
	}

	if a.IsNumber() && b.IsNumber() {
		// Prefer exact int compare when possible.
		if a.Kind == KindInt && b.Kind == KindInt {
			return a.I64 == b.I64
		}
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return af == bf
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.s == b.s
	case KindBool:
		return a.B == b.B
	case KindTuple:
		if len(a.T) != len(b.T) {
			return false
		}
		for i := range a.T {
			if !Equal(a.T[i], b.T[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders a and b. ok is false when the two are not comparable
// (nulls, mixed kinds other than int/float).
func Compare(a, b Value) (cmp int, ok bool) {
	switch {
	case a.IsNumber() && b.IsNumber():
		if a.Kind == KindInt && b.Kind == KindInt {
			return compareOrdered(a.I64, b.I64), true
		}
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return compareOrdered(af, bf), true
	case a.Kind != b.Kind:
		return 0, false
	}

	switch a.Kind {
	case KindString:
		return strings.Compare(a.s.Value(), b.s.Value()), true
	case KindBool:
		switch {
		case a.B == b.B:
			return 0, true
		case !a.B:
			return -1, true
		default:
			return 1, true
		}
	case KindTuple:
		n := min(len(a.T), len(b.T))
		for i := 0; i < n; i++ {
			c, ok := Compare(a.T[i], b.T[i])
			if !ok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		return compareOrdered(len(a.T), len(b.T)), true
	default:
		return 0, false
	}
}

// HasPrefix reports whether the leading levels of label equal prefix.
// A scalar prefix matches the first level.
func HasPrefix(label, prefix Value) bool {
	levels, ok := label.AsTuple()
	if !ok {
		return Equal(label, prefix)
	}
	want, ok := prefix.AsTuple()
	if !ok {
		want = []Value{prefix}
	}
	if len(want) > len(levels) {
		return false
	}
	for i := range want {
		if !Equal(levels[i], want[i]) {
			return false
		}
	}
	return true
}

func compareOrdered[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
