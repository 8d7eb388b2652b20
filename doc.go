// Package colframe provides label and positional indexing with in-place
// mutation for column-oriented tables.
//
// A Table is an ordered set of named, typed, nullable columns backed by
// Apache Arrow arrays, sharing one row index. A Series is a single column with
// its own index.
//
// # Quick Start
//
//	t, _ := colframe.NewTable([]colframe.ColumnData{
//	    colframe.Col("a", []int{1, 2, 3}),
//	})
//	t.SetItem([]bool{true, false, true}, -1)       // a == [-1, 2, -1]
//	t.SetItem([]string{"b", "c"}, other)           // new columns b, c
//	t.SetItem(selector.Between(1, 2), 0.5)         // label slice, a widens to float64
//
// # Selectors
//
// SetItem classifies its first argument into exactly one selector:
//
//   - string: a column (Table) or a label (Series)
//   - []string: columns if all exist, labels if all are index labels,
//     otherwise new columns (or a *KeyLookupError with WithStrictKeys)
//   - []bool or a boolean *Series: a row mask of exactly Len() entries
//   - selector.Slice: positional (Go int bounds) or label range
//   - any other scalar or value.Tuple: a label
//   - any other slice: a list of labels
//
// # Values
//
// Scalars are broadcast. Slices are written positionally and must match the
// selection length (or have length 1). A *Series or *Table value is aligned
// by label: every target row takes the value carrying the same label, or
// null when there is none.
//
// # Types
//
// Writes widen the column dtype where needed (int64 to float64, any dtype to
// its nullable form when a null is written). Other mismatches fail with a
// *TypeMismatchError.
//
// # Atomicity
//
// Every SetItem and Replace stages new column buffers and swaps them in only
// once all of them are built. On error the target is unchanged.
//
// # Views
//
// Table.GetColumn returns a write-through view. Writes through the view or
// the table are visible in both until the table replaces the column as a
// whole, which detaches the view. Series.Copy and Table.Copy return
// independent values.
package colframe
