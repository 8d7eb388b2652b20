// Package column implements the columnar storage layer: typed, nullable,
// fixed-length buffers backed by Apache Arrow arrays.
//
// Columns are immutable. Every write path (Scatter, Take, Broadcast) builds a
// fresh Arrow array through a builder and returns a new Column, which lets the
// owning table stage all writes of a mutation and swap them in at once.
// Columns are reference counted; the owner releases the buffers it replaces.
//
//	col, _ := column.FromValues(memory.DefaultAllocator, []value.Value{value.Int(1), value.Int(2)})
//	col, _ = col.Scatter(memory.DefaultAllocator, []int{1}, []value.Value{value.Float(2.5)})
//	col.DType() // float64
package column
