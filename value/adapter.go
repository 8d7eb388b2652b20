package value

import (
	"fmt"
	"math"
)

// FromAny converts a Go scalar into a typed Value. nil becomes Null.
//
// This exists as an adapter layer for user input.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint64(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint64(x)
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromUint64(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		// Avoid silently wrapping large values.
		return Value{}, fmt.Errorf("uint64 out of int64 range: %d", x)
	}
	return Int(int64(x)), nil
}

// SliceFromAny converts a Go slice into typed Values. ok is false when v is
// not a supported slice type.
func SliceFromAny(v any) (vals []Value, ok bool, err error) {
	switch x := v.(type) {
	case []Value:
		return append([]Value(nil), x...), true, nil
	case []any:
		vals = make([]Value, len(x))
		for i := range x {
			if vals[i], err = FromAny(x[i]); err != nil {
				return nil, true, err
			}
		}
		return vals, true, nil
	case []int:
		return convertSlice(x, func(e int) Value { return Int(int64(e)) }), true, nil
	case []int32:
		return convertSlice(x, func(e int32) Value { return Int(int64(e)) }), true, nil
	case []int64:
		return convertSlice(x, Int), true, nil
	case []float32:
		return convertSlice(x, func(e float32) Value { return Float(float64(e)) }), true, nil
	case []float64:
		return convertSlice(x, Float), true, nil
	case []string:
		return convertSlice(x, String), true, nil
	case []bool:
		return convertSlice(x, Bool), true, nil
	default:
		return nil, false, nil
	}
}

func convertSlice[T any](in []T, fn func(T) Value) []Value {
	out := make([]Value, len(in))
	for i := range in {
		out[i] = fn(in[i])
	}
	return out
}
