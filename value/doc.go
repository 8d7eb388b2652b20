// Package value provides the typed cell and label values used by colframe.
//
// A Value is a small tagged union: null, int64, float64, string, bool, or a
// tuple of values. Tuples only appear as multi-level index labels; columns
// store scalar kinds only.
//
//	v := value.Int(42)
//	label := value.Tuple(value.Int(3), value.String("a"))
//
// # DTypes
//
// A DType pairs a Kind with a nullability flag. Writes into a column widen its
// DType through Promote:
//
//   - int into float, or float into int: float
//   - null into anything: the same kind, nullable
//   - anything into an all-null column: that kind, nullable
//
// Every other combination is an *ErrIncompatibleType.
package value
