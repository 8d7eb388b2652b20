package column

import (
	"fmt"
	"math"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/colframe/internal/conv"
	"github.com/hupe1980/colframe/value"
)

// parallelChunk is the number of rows scanned per goroutine by EqualMask.
const parallelChunk = 1 << 16

// ErrLengthMismatch indicates values whose count does not fit the target.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrOutOfRange indicates a row position outside the column.
type ErrOutOfRange struct {
	Position int
	Len      int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("position %d out of range [0, %d)", e.Position, e.Len)
}

// Column is an immutable, typed, nullable buffer backed by an Arrow array.
//
// Writes never touch the existing buffer: Scatter and Take build a new
// Column, so readers holding the old one keep seeing the old values.
//
// Columns are reference counted like the arrays they wrap. A new column
// holds one reference, which its owner must Release.
type Column struct {
	dtype value.DType
	arr   arrow.Array
}

// New builds a column of dtype dt from vals.
func New(mem memory.Allocator, dt value.DType, vals []value.Value) (*Column, error) {
	return build(mem, dt, len(vals), func(i int) value.Value { return vals[i] })
}

// FromValues builds a column whose dtype is inferred from vals.
func FromValues(mem memory.Allocator, vals []value.Value) (*Column, error) {
	dt, err := value.Infer(vals)
	if err != nil {
		return nil, err
	}
	return New(mem, dt, vals)
}

// Broadcast builds a column of n copies of v.
func Broadcast(mem memory.Allocator, v value.Value, n int) (*Column, error) {
	dt, err := value.Infer([]value.Value{v})
	if err != nil {
		return nil, err
	}
	return build(mem, dt, n, func(int) value.Value { return v })
}

// Len returns the number of rows.
func (c *Column) Len() int { return c.arr.Len() }

// DType returns the storage dtype.
func (c *Column) DType() value.DType { return c.dtype }

// Array returns the underlying Arrow array. It must not be released by the
// caller.
func (c *Column) Array() arrow.Array { return c.arr }

// Retain adds a reference to the column's buffers.
func (c *Column) Retain() { c.arr.Retain() }

// Release drops a reference. The buffers go back to the allocator when the
// last reference is released.
func (c *Column) Release() { c.arr.Release() }

// Field describes the column as an Arrow field.
func (c *Column) Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: c.arr.DataType(), Nullable: c.dtype.Nullable}
}

// NullN returns the number of null rows.
func (c *Column) NullN() int {
	if c.dtype.Kind == value.KindNull {
		return c.arr.Len()
	}
	return c.arr.NullN()
}

// Value returns the value at row i.
func (c *Column) Value(i int) value.Value {
	if _, ok := c.arr.(*array.Null); ok || c.arr.IsNull(i) {
		return value.Null()
	}
	switch a := c.arr.(type) {
	case *array.Int64:
		return value.Int(a.Value(i))
	case *array.Float64:
		return value.Float(a.Value(i))
	case *array.String:
		return value.String(a.Value(i))
	case *array.Boolean:
		return value.Bool(a.Value(i))
	default:
		return value.Null()
	}
}

// Values materializes all rows.
func (c *Column) Values() []value.Value {
	out := make([]value.Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Bools returns the column as a []bool when it is a boolean column without
// nulls.
func (c *Column) Bools() ([]bool, bool) {
	a, ok := c.arr.(*array.Boolean)
	if !ok || a.NullN() > 0 {
		return nil, false
	}
	out := make([]bool, a.Len())
	for i := range out {
		out[i] = a.Value(i)
	}
	return out, true
}

// SizeInBytes returns the bytes held by the column's buffers.
func (c *Column) SizeInBytes() int64 {
	var n int64
	for _, b := range c.arr.Data().Buffers() {
		if b != nil {
			n += int64(b.Len())
		}
	}
	return n
}

// Equal reports whether both columns have the same dtype and values.
func (c *Column) Equal(other *Column) bool {
	if c == other {
		return true
	}
	if other == nil || c.dtype != other.dtype {
		return false
	}
	return array.Equal(c.arr, other.arr)
}

// Scatter returns a new column with vals written at positions. The dtype is
// widened as needed; the receiver is left untouched. When a position occurs
// more than once, the last write wins.
func (c *Column) Scatter(mem memory.Allocator, positions []int, vals []value.Value) (*Column, error) {
	if len(positions) != len(vals) {
		return nil, &ErrLengthMismatch{Expected: len(positions), Actual: len(vals)}
	}
	n := c.Len()
	overlay := make(map[int]int, len(positions))
	dt := c.dtype
	for j, p := range positions {
		if p < 0 || p >= n {
			return nil, &ErrOutOfRange{Position: p, Len: n}
		}
		var err error
		if dt, err = value.Promote(dt, vals[j].Kind); err != nil {
			return nil, err
		}
		overlay[p] = j
	}
	return build(mem, dt, n, func(i int) value.Value {
		if j, ok := overlay[i]; ok {
			return vals[j]
		}
		return c.Value(i)
	})
}

// Take returns a new column holding the rows at positions. A negative
// position yields a null row.
func (c *Column) Take(mem memory.Allocator, positions []int) (*Column, error) {
	n := c.Len()
	dt := c.dtype
	for _, p := range positions {
		if p >= n {
			return nil, &ErrOutOfRange{Position: p, Len: n}
		}
		if p < 0 {
			dt = dt.WithNulls()
		}
	}
	return build(mem, dt, len(positions), func(i int) value.Value {
		if p := positions[i]; p >= 0 {
			return c.Value(p)
		}
		return value.Null()
	})
}

// EqualMask returns the rows equal to v. A null v matches null rows and a
// NaN v matches NaN rows. Large columns are scanned in parallel chunks.
func (c *Column) EqualMask(v value.Value) (*roaring.Bitmap, error) {
	n := c.Len()
	match := func(x value.Value) bool { return value.Equal(x, v) }
	if isNaN(v) {
		match = isNaN
	}
	scan := func(lo, hi int) *roaring.Bitmap {
		bm := roaring.New()
		for i := lo; i < hi; i++ {
			if match(c.Value(i)) {
				bm.Add(uint32(i))
			}
		}
		return bm
	}
	if n <= parallelChunk {
		return scan(0, n), nil
	}

	chunks := (n + parallelChunk - 1) / parallelChunk
	parts := make([]*roaring.Bitmap, chunks)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for ci := range chunks {
		g.Go(func() error {
			lo := ci * parallelChunk
			parts[ci] = scan(lo, min(lo+parallelChunk, n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return roaring.FastOr(parts...), nil
}

func isNaN(v value.Value) bool {
	return v.Kind == value.KindFloat && math.IsNaN(v.F64)
}

func build(mem memory.Allocator, dt value.DType, n int, at func(int) value.Value) (*Column, error) {
	if err := conv.RowCount(n); err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	typ, err := arrowType(dt)
	if err != nil {
		return nil, err
	}

	b := array.NewBuilder(mem, typ)
	defer b.Release()
	b.Reserve(n)
	appendValue := appender(b)

	for i := 0; i < n; i++ {
		v, err := value.Convert(at(i), dt)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			b.AppendNull()
			continue
		}
		appendValue(v)
	}
	return &Column{dtype: dt, arr: b.NewArray()}, nil
}

func appender(b array.Builder) func(value.Value) {
	switch bb := b.(type) {
	case *array.Int64Builder:
		return func(v value.Value) { bb.Append(v.I64) }
	case *array.Float64Builder:
		return func(v value.Value) { bb.Append(v.F64) }
	case *array.StringBuilder:
		return func(v value.Value) { bb.Append(v.StringValue()) }
	case *array.BooleanBuilder:
		return func(v value.Value) { bb.Append(v.B) }
	default:
		// Null columns only ever receive nulls.
		return func(value.Value) { b.AppendNull() }
	}
}

func arrowType(dt value.DType) (arrow.DataType, error) {
	switch dt.Kind {
	case value.KindInt:
		return arrow.PrimitiveTypes.Int64, nil
	case value.KindFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case value.KindString:
		return arrow.BinaryTypes.String, nil
	case value.KindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case value.KindNull:
		return arrow.Null, nil
	default:
		return nil, &value.ErrIncompatibleType{DType: dt, Kind: dt.Kind}
	}
}
