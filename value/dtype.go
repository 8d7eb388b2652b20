package value

import "fmt"

// DType is the storage type of a column.
type DType struct {
	Kind     Kind
	Nullable bool
}

// Common dtypes.
var (
	Int64   = DType{Kind: KindInt}
	Float64 = DType{Kind: KindFloat}
	Str     = DType{Kind: KindString}
	Boolean = DType{Kind: KindBool}
	AllNull = DType{Kind: KindNull, Nullable: true}
)

// String returns the dtype name; nullable dtypes carry a trailing "?".
func (d DType) String() string {
	if d.Nullable && d.Kind != KindNull {
		return d.Kind.String() + "?"
	}
	return d.Kind.String()
}

// WithNulls returns d marked nullable.
func (d DType) WithNulls() DType {
	d.Nullable = true
	return d
}

// ErrIncompatibleType is returned when a value kind cannot be stored in a
// column of the given dtype, even after widening.
type ErrIncompatibleType struct {
	DType DType
	Kind  Kind
}

func (e *ErrIncompatibleType) Error() string {
	return fmt.Sprintf("cannot store %s in %s column", e.Kind, e.DType)
}

func storable(k Kind) bool {
	switch k {
	case KindNull, KindInt, KindFloat, KindString, KindBool:
		return true
	}
	return false
}

// Promote returns the narrowest dtype that holds both the values of d and a
// value of kind k.
func Promote(d DType, k Kind) (DType, error) {
	if !storable(k) || !storable(d.Kind) {
		return DType{}, &ErrIncompatibleType{DType: d, Kind: k}
	}
	switch {
	case k == KindNull:
		return d.WithNulls(), nil
	case d.Kind == KindNull:
		return DType{Kind: k, Nullable: true}, nil
	case d.Kind == k:
		return d, nil
	case isNumericKind(d.Kind) && isNumericKind(k):
		// Allow upgrading Int to Float
		return DType{Kind: KindFloat, Nullable: d.Nullable}, nil
	}
	return DType{}, &ErrIncompatibleType{DType: d, Kind: k}
}

// Infer computes the dtype of a sequence of values. An empty or all-null
// sequence yields AllNull.
func Infer(vals []Value) (DType, error) {
	var (
		d     DType
		typed bool
	)
	for _, v := range vals {
		if !typed {
			if !storable(v.Kind) {
				return DType{}, &ErrIncompatibleType{DType: AllNull, Kind: v.Kind}
			}
			if v.Kind == KindNull {
				continue
			}
			d = DType{Kind: v.Kind}
			typed = true
			continue
		}
		var err error
		if d, err = Promote(d, v.Kind); err != nil {
			return DType{}, err
		}
	}
	if !typed {
		return AllNull, nil
	}
	for _, v := range vals {
		if v.Kind == KindNull {
			return d.WithNulls(), nil
		}
	}
	return d, nil
}

// Convert coerces v into the storage representation of d.
func Convert(v Value, d DType) (Value, error) {
	if v.Kind == KindNull {
		if !d.Nullable {
			return Value{}, &ErrIncompatibleType{DType: d, Kind: KindNull}
		}
		return v, nil
	}
	if v.Kind == d.Kind {
		return v, nil
	}
	if d.Kind == KindFloat && v.Kind == KindInt {
		return Float(float64(v.I64)), nil
	}
	return Value{}, &ErrIncompatibleType{DType: d, Kind: v.Kind}
}

func isNumericKind(k Kind) bool {
	return k == KindInt || k == KindFloat
}
