package colframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colframe/resource"
	"github.com/hupe1980/colframe/selector"
	"github.com/hupe1980/colframe/testutil"
	"github.com/hupe1980/colframe/value"
)

func ints(is ...int64) []value.Value {
	out := make([]value.Value, len(is))
	for i, v := range is {
		out[i] = value.Int(v)
	}
	return out
}

func floats(fs ...float64) []value.Value {
	out := make([]value.Value, len(fs))
	for i, v := range fs {
		out[i] = value.Float(v)
	}
	return out
}

func mustTable(t *testing.T, cols []ColumnData, opts ...Option) *Table {
	t.Helper()
	tbl, err := NewTable(cols, opts...)
	require.NoError(t, err)
	return tbl
}

func mustValues(t *testing.T, tbl *Table, name string) []value.Value {
	t.Helper()
	vals, err := tbl.Values(name)
	require.NoError(t, err)
	return vals
}

func mustDType(t *testing.T, tbl *Table, name string) value.DType {
	t.Helper()
	dt, err := tbl.DType(name)
	require.NoError(t, err)
	return dt
}

func TestNewTable(t *testing.T) {
	t.Run("Columns", func(t *testing.T) {
		tbl := mustTable(t, []ColumnData{
			Col("a", []int{1, 2, 3}),
			Col("b", []any{"x", nil, "z"}),
		})
		assert.Equal(t, 3, tbl.Len())
		assert.Equal(t, 2, tbl.Width())
		assert.Equal(t, []string{"a", "b"}, tbl.Columns())
		assert.True(t, tbl.Index().IsRange())
		assert.Equal(t, value.Str.WithNulls(), mustDType(t, tbl, "b"))
	})

	t.Run("Labels", func(t *testing.T) {
		tbl := mustTable(t, []ColumnData{Col("a", []int{1, 2})}, WithLabels([]string{"x", "y"}))
		assert.Equal(t, value.String("y"), tbl.Index().Label(1))
	})

	t.Run("IndexOnly", func(t *testing.T) {
		tbl := mustTable(t, nil, WithLabels([]int{5, 6}))
		assert.Equal(t, 2, tbl.Len())
		assert.Zero(t, tbl.Width())
	})

	tests := []struct {
		name string
		cols []ColumnData
		opts []Option
		is   error
	}{
		{"DuplicateColumn", []ColumnData{Col("a", []int{1}), Col("a", []int{2})}, nil, ErrDuplicateColumn},
		{"RaggedColumns", []ColumnData{Col("a", []int{1}), Col("b", []int{1, 2})}, nil, ErrShape},
		{"IndexLength", []ColumnData{Col("a", []int{1})}, []Option{WithLabels([]int{1, 2})}, ErrShape},
		{"UnsupportedValues", []ColumnData{Col("a", 42)}, nil, ErrUnsupportedValue},
		{"MixedTypes", []ColumnData{Col("a", []any{1, "x"})}, nil, ErrTypeMismatch},
		{"LevelMismatch", []ColumnData{Col("a", []int{1})}, []Option{WithMultiIndex([]string{"b"}, []int{1}, []int{1})}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.cols, tt.opts...)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestNewTableFromSeries(t *testing.T) {
	s := mustSeries(t, []int{10, 20, 30}, WithLabels([]string{"x", "y", "z"}))

	t.Run("AlignsToLabels", func(t *testing.T) {
		tbl := mustTable(t, []ColumnData{Col("a", s), Col("b", []int{1, 2})}, WithLabels([]string{"z", "w"}))
		vals := mustValues(t, tbl, "a")
		assert.Equal(t, value.Int(30), vals[0])
		assert.True(t, vals[1].IsNull())
		assert.Equal(t, value.Int64.WithNulls(), mustDType(t, tbl, "a"))
	})

	t.Run("AdoptsSeriesIndex", func(t *testing.T) {
		other := mustSeries(t, []float64{1.5, 2.5}, WithLabels([]string{"z", "x"}))
		tbl := mustTable(t, []ColumnData{Col("p", []int{1, 2, 3}), Col("a", s), Col("b", other)})

		assert.Equal(t, value.String("x"), tbl.Index().Label(0))
		assert.Equal(t, ints(10, 20, 30), mustValues(t, tbl, "a"))
		b := mustValues(t, tbl, "b")
		assert.Equal(t, value.Float(2.5), b[0])
		assert.True(t, b[1].IsNull())
		assert.Equal(t, value.Float(1.5), b[2])
	})

	t.Run("WritesStayInTable", func(t *testing.T) {
		tbl := mustTable(t, []ColumnData{Col("a", s)})
		require.NoError(t, tbl.SetItem([]bool{true, false, false}, 0))
		assert.Equal(t, ints(0, 20, 30), mustValues(t, tbl, "a"))
		assert.Equal(t, ints(10, 20, 30), s.Values())
	})
}

func TestTableSetItemMask(t *testing.T) {
	tbl := mustTable(t, []ColumnData{Col("a", []int{1, 2, 3})})

	require.NoError(t, tbl.SetItem([]bool{true, false, true}, -1))
	assert.Equal(t, ints(-1, 2, -1), mustValues(t, tbl, "a"))
	assert.Equal(t, value.Int64, mustDType(t, tbl, "a"))

	t.Run("BooleanSeries", func(t *testing.T) {
		mask, err := NewSeries("m", []bool{false, true, false})
		require.NoError(t, err)
		require.NoError(t, tbl.SetItem(mask, 0))
		assert.Equal(t, ints(-1, 0, -1), mustValues(t, tbl, "a"))
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		err := tbl.SetItem([]bool{true, false}, 5)
		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 3, se.Expected)
		assert.Equal(t, 2, se.Actual)
		assert.Equal(t, ints(-1, 0, -1), mustValues(t, tbl, "a"))
	})

	t.Run("SequenceValue", func(t *testing.T) {
		require.NoError(t, tbl.SetItem([]bool{true, false, true}, []int{7, 8}))
		assert.Equal(t, ints(7, 0, 8), mustValues(t, tbl, "a"))

		err := tbl.SetItem([]bool{true, false, true}, []int{7, 8, 9})
		assert.ErrorIs(t, err, ErrShape)
	})

	t.Run("Widening", func(t *testing.T) {
		require.NoError(t, tbl.SetItem([]bool{false, true, false}, 0.5))
		assert.Equal(t, floats(7, 0.5, 8), mustValues(t, tbl, "a"))
		assert.Equal(t, value.Float64, mustDType(t, tbl, "a"))

		require.NoError(t, tbl.SetItem([]bool{true, false, false}, nil))
		assert.Equal(t, value.Float64.WithNulls(), mustDType(t, tbl, "a"))
		assert.True(t, mustValues(t, tbl, "a")[0].IsNull())
	})
}

func TestTableSetItemMaskProperty(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for i := range 20 {
		n := 1 + rng.Intn(200)
		data := rng.Ints(n, -100, 100)
		mask := rng.Mask(n, 0.4)

		tbl := mustTable(t, []ColumnData{Col("a", data), Col("b", rng.Floats(n))})
		before := tbl.Copy()

		require.NoError(t, tbl.SetItem(mask, 1000), "round %d", i)

		got := mustValues(t, tbl, "a")
		for j := range n {
			if mask[j] {
				assert.Equal(t, value.Int(1000), got[j])
			} else {
				assert.Equal(t, value.Int(int64(data[j])), got[j])
			}
		}

		// Idempotence.
		once := tbl.Copy()
		require.NoError(t, tbl.SetItem(mask, 1000))
		assert.True(t, tbl.Equal(once))
		assert.False(t, before.Equal(tbl) && containsTrue(mask))
	}
}

func containsTrue(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}

func TestTableSetItemColumnRoundTrip(t *testing.T) {
	tbl := mustTable(t, []ColumnData{
		Col("a", []any{1, nil, 3}),
		Col("b", []string{"x", "y", "z"}),
	}, WithLabels([]string{"r0", "r1", "r2"}))
	before := tbl.Copy()

	a, err := tbl.GetColumn("a")
	require.NoError(t, err)
	require.NoError(t, tbl.SetItem("a", a))

	assert.True(t, tbl.Equal(before))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestTableSetItemColumnList(t *testing.T) {
	tbl := mustTable(t, []ColumnData{Col("a", []int{1, 2, 3})})
	other := mustTable(t, []ColumnData{
		Col("0", []int{-1, -2, -3}),
		Col("1", []int{0, -10, -1}),
	})

	require.NoError(t, tbl.SetItem([]string{"b", "c"}, other))

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, ints(1, 2, 3), mustValues(t, tbl, "a"))
	assert.Equal(t, ints(-1, -2, -3), mustValues(t, tbl, "b"))
	assert.Equal(t, ints(0, -10, -1), mustValues(t, tbl, "c"))

	t.Run("ReplaceExisting", func(t *testing.T) {
		require.NoError(t, tbl.SetItem([]string{"c", "a"}, other))
		assert.Equal(t, ints(-1, -2, -3), mustValues(t, tbl, "c"))
		assert.Equal(t, ints(0, -10, -1), mustValues(t, tbl, "a"))
		assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())
	})

	t.Run("WidthMismatch", func(t *testing.T) {
		err := tbl.SetItem([]string{"d", "e", "f"}, other)
		assert.ErrorIs(t, err, ErrShape)
		assert.Equal(t, 3, tbl.Width())
	})

	t.Run("Scalar", func(t *testing.T) {
		require.NoError(t, tbl.SetItem([]string{"d", "e"}, "x"))
		assert.Equal(t, []value.Value{value.String("x"), value.String("x"), value.String("x")}, mustValues(t, tbl, "e"))
	})

	t.Run("SequencePerColumn", func(t *testing.T) {
		require.NoError(t, tbl.SetItem([]string{"d", "e"}, []any{1, true}))
		assert.Equal(t, ints(1, 1, 1), mustValues(t, tbl, "d"))
		assert.Equal(t, value.Boolean, mustDType(t, tbl, "e"))

		err := tbl.SetItem([]string{"d", "e"}, []int{1, 2, 3})
		assert.ErrorIs(t, err, ErrShape)
	})
}

func TestTableSetItemColumn(t *testing.T) {
	newTable := func(t *testing.T) *Table {
		return mustTable(t, []ColumnData{Col("a", []int{1, 2, 3})})
	}

	t.Run("ReplaceChangesDType", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem("a", []string{"x", "y", "z"}))
		assert.Equal(t, value.Str, mustDType(t, tbl, "a"))
	})

	t.Run("BroadcastScalar", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem("b", 1.5))
		assert.Equal(t, floats(1.5, 1.5, 1.5), mustValues(t, tbl, "b"))
	})

	t.Run("BroadcastSingleton", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem("b", []int{4}))
		assert.Equal(t, ints(4, 4, 4), mustValues(t, tbl, "b"))
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		tbl := newTable(t)
		err := tbl.SetItem("b", []int{1, 2})
		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 3, se.Expected)
		assert.False(t, tbl.HasColumn("b"))
	})

	t.Run("AlignsSeries", func(t *testing.T) {
		tbl := newTable(t)
		s, err := NewSeries("s", []int{20, 10, 99}, WithLabels([]int{2, 1, 7}))
		require.NoError(t, err)

		require.NoError(t, tbl.SetItem("b", s))
		assert.Equal(t, []value.Value{value.Null(), value.Int(10), value.Int(20)}, mustValues(t, tbl, "b"))
		assert.Equal(t, value.Int64.WithNulls(), mustDType(t, tbl, "b"))
	})

	t.Run("SingleColumnTable", func(t *testing.T) {
		tbl := newTable(t)
		v := mustTable(t, []ColumnData{Col("x", []bool{true, false, true})})
		require.NoError(t, tbl.SetItem("b", v))
		assert.Equal(t, value.Boolean, mustDType(t, tbl, "b"))

		wide := mustTable(t, []ColumnData{Col("x", []int{1, 2, 3}), Col("y", []int{1, 2, 3})})
		assert.ErrorIs(t, tbl.SetItem("c", wide), ErrShape)
	})

	t.Run("UnsupportedValue", func(t *testing.T) {
		tbl := newTable(t)
		err := tbl.SetItem("b", struct{}{})
		assert.ErrorIs(t, err, ErrUnsupportedValue)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestTableEmptyAdoptsRows(t *testing.T) {
	t.Run("Sequence", func(t *testing.T) {
		tbl := mustTable(t, nil)
		require.NoError(t, tbl.SetItem("a", []int{1, 2, 3}))
		assert.Equal(t, 3, tbl.Len())

		assert.ErrorIs(t, tbl.SetItem("b", []int{1, 2}), ErrShape)
	})

	t.Run("SeriesIndex", func(t *testing.T) {
		tbl := mustTable(t, nil)
		s, err := NewSeries("s", []int{1, 2}, WithLabels([]string{"x", "y"}))
		require.NoError(t, err)

		require.NoError(t, tbl.SetItem("a", s))
		assert.True(t, tbl.Index().Equal(s.Index()))
		assert.Equal(t, ints(1, 2), mustValues(t, tbl, "a"))
	})
}

func TestTableSetItemRowsFromTable(t *testing.T) {
	tbl := mustTable(t, []ColumnData{
		Col("a", []int{1, 2, 3}),
		Col("b", []int{4, 5, 6}),
	})
	v := mustTable(t, []ColumnData{Col("a", []int{-1, -2})})

	require.NoError(t, tbl.SetItem([]bool{true, false, true}, v))

	assert.Equal(t, []value.Value{value.Int(-1), value.Int(2), value.Null()}, mustValues(t, tbl, "a"))
	assert.Equal(t, []value.Value{value.Null(), value.Int(5), value.Null()}, mustValues(t, tbl, "b"))
}

func TestTableSetItemLabels(t *testing.T) {
	newTable := func(t *testing.T, opts ...Option) *Table {
		opts = append(opts, WithLabels([]string{"x", "y", "z"}))
		return mustTable(t, []ColumnData{Col("a", []int{1, 2, 3})}, opts...)
	}

	t.Run("StringLabelList", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem([]string{"z", "x"}, []int{30, 10}))
		assert.Equal(t, ints(10, 2, 30), mustValues(t, tbl, "a"))
		assert.Equal(t, 1, tbl.Width())
	})

	t.Run("LenientCreatesColumns", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem([]string{"x", "new"}, 0))
		assert.Equal(t, []string{"a", "x", "new"}, tbl.Columns())
	})

	t.Run("Strict", func(t *testing.T) {
		tbl := newTable(t, WithStrictKeys())
		err := tbl.SetItem([]string{"x", "new"}, 0)
		var ke *KeyLookupError
		require.ErrorAs(t, err, &ke)
		assert.Equal(t, "x,new", ke.Key)
		assert.Equal(t, 1, tbl.Width())
	})

	t.Run("MissingLabel", func(t *testing.T) {
		tbl := newTable(t)
		err := tbl.SetItem([]int{0, 1}, 5)
		assert.ErrorIs(t, err, ErrKeyLookup)
		assert.Equal(t, ints(1, 2, 3), mustValues(t, tbl, "a"))
	})

	t.Run("LabelSlice", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem(selector.Between("y", "z"), 0))
		assert.Equal(t, ints(1, 0, 0), mustValues(t, tbl, "a"))
	})

	t.Run("PositionalSlice", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem(selector.Slice{Start: -2}, 9))
		assert.Equal(t, ints(1, 9, 9), mustValues(t, tbl, "a"))

		require.NoError(t, tbl.SetItem(selector.Slice{Step: -2}, 0))
		assert.Equal(t, ints(0, 9, 0), mustValues(t, tbl, "a"))
	})
}

func TestTableMultiIndex(t *testing.T) {
	newTable := func(t *testing.T) *Table {
		return mustTable(t, []ColumnData{Col("a", []int{1, 2, 3})},
			WithMultiIndex([]string{"b", "c"}, []int{3, 2, 1}, []string{"a", "b", "c"}))
	}

	t.Run("ReplaceThroughView", func(t *testing.T) {
		tbl := newTable(t)
		a, err := tbl.GetColumn("a")
		require.NoError(t, err)

		n, err := a.Replace(1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, ints(10, 2, 3), mustValues(t, tbl, "a"))
	})

	t.Run("FullTuple", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem(value.Tuple(value.Int(2), value.String("b")), 0))
		assert.Equal(t, ints(1, 0, 3), mustValues(t, tbl, "a"))
	})

	t.Run("Prefix", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.SetItem(1, -1))
		assert.Equal(t, ints(1, 2, -1), mustValues(t, tbl, "a"))
	})

	t.Run("AlignsTuples", func(t *testing.T) {
		tbl := newTable(t)
		s, err := NewSeries("s", []int{30, 10}, WithMultiIndex(nil, []int{3, 1}, []string{"a", "c"}))
		require.NoError(t, err)
		require.NoError(t, tbl.SetItem("d", s))
		assert.Equal(t, []value.Value{value.Int(30), value.Null(), value.Int(10)}, mustValues(t, tbl, "d"))
	})
}

func TestTableAtomicity(t *testing.T) {
	tbl := mustTable(t, []ColumnData{
		Col("a", []int{1, 2, 3}),
		Col("b", []string{"x", "y", "z"}),
	})
	before := tbl.Copy()

	err := tbl.SetItem([]bool{true, false, false}, 1.5)
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, value.Str, tm.DType)
	assert.Equal(t, value.KindFloat, tm.Kind)

	assert.True(t, tbl.Equal(before))
	assert.Equal(t, value.Int64, mustDType(t, tbl, "a"))
}

func TestTableMemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 512})
	tbl := mustTable(t, []ColumnData{Col("a", make([]int, 100))}, WithResourceController(rc))
	before := tbl.Copy()

	err := tbl.SetItem(make([]bool, 100), 1)
	assert.ErrorIs(t, err, ErrMemoryLimit)
	assert.True(t, tbl.Equal(before))
	assert.Zero(t, rc.MemoryUsage())

	small := mustTable(t, []ColumnData{Col("a", []int{1})}, WithResourceController(rc))
	require.NoError(t, small.SetItem("a", 2))
	assert.Zero(t, rc.MemoryUsage())
}

func TestTableReplace(t *testing.T) {
	tbl := mustTable(t, []ColumnData{
		Col("a", []int{1, 2, 1}),
		Col("b", []float64{1, 3, 1}),
		Col("c", []string{"1", "x", "y"}),
	})

	n, err := tbl.Replace(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, ints(0, 2, 0), mustValues(t, tbl, "a"))
	assert.Equal(t, floats(0, 3, 0), mustValues(t, tbl, "b"))

	t.Run("Atomic", func(t *testing.T) {
		tbl := mustTable(t, []ColumnData{
			Col("s", []any{"x", nil}),
			Col("i", []any{1, nil}),
		})
		before := tbl.Copy()

		_, err := tbl.Replace(nil, "n")
		assert.ErrorIs(t, err, ErrTypeMismatch)
		assert.True(t, tbl.Equal(before))
	})
}

func TestTableViews(t *testing.T) {
	tbl := mustTable(t, []ColumnData{Col("a", []int{1, 2, 3})})
	a, err := tbl.GetColumn("a")
	require.NoError(t, err)
	assert.True(t, a.IsView())

	require.NoError(t, tbl.SetItem([]bool{true, false, false}, 0))
	assert.Equal(t, ints(0, 2, 3), a.Values())

	require.NoError(t, a.SetItem(2, 0.5))
	assert.Equal(t, floats(0, 2, 0.5), mustValues(t, tbl, "a"))
	assert.Equal(t, value.Float64, mustDType(t, tbl, "a"))

	c := a.Copy()
	assert.False(t, c.IsView())
	require.NoError(t, c.SetItem(0, 100))
	assert.Equal(t, value.Float(0), mustValues(t, tbl, "a")[0])

	require.NoError(t, tbl.SetItem("a", 7))
	assert.False(t, a.IsView())
	assert.Equal(t, floats(0, 2, 0.5), a.Values())

	_, err = tbl.GetColumn("missing")
	assert.ErrorIs(t, err, ErrKeyLookup)
}

func TestTableSchema(t *testing.T) {
	tbl := mustTable(t, []ColumnData{
		Col("a", []int{1, 2}),
		Col("b", []any{nil, 1.5}),
		Col("c", []any{nil, nil}),
	})

	schema := tbl.Schema()
	require.Equal(t, 3, schema.NumFields())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, schema.Field(0).Type)
	assert.False(t, schema.Field(0).Nullable)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, schema.Field(1).Type)
	assert.True(t, schema.Field(1).Nullable)
	assert.Equal(t, arrow.Null, schema.Field(2).Type)

	c, err := tbl.GetColumn("c")
	require.NoError(t, err)
	require.NoError(t, c.SetItem(0, "s"))
	assert.Equal(t, value.Str.WithNulls(), mustDType(t, tbl, "c"))
}

func TestTableSliceNonUniqueBound(t *testing.T) {
	tbl := mustTable(t, []ColumnData{Col("a", []int{1, 2, 3, 4})}, WithLabels([]string{"b", "a", "b", "c"}))

	err := tbl.SetItem(selector.Between("b", "a"), 0)
	var ke *KeyLookupError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, `"b"`, ke.Key)
	assert.Equal(t, ints(1, 2, 3, 4), mustValues(t, tbl, "a"))
}
