package colframe

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hupe1980/colframe/column"
	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/selector"
	"github.com/hupe1980/colframe/value"
)

// ColumnData names the values of one column passed to NewTable.
type ColumnData struct {
	Name   string
	Values any
}

// Col is shorthand for ColumnData{Name: name, Values: values}.
func Col(name string, values any) ColumnData {
	return ColumnData{Name: name, Values: values}
}

// Table is an ordered set of named columns of equal length sharing one row
// index.
//
// A Table is not safe for concurrent use. Every SetItem and Replace is
// atomic: on error the table is left as it was.
type Table struct {
	names []string
	slots map[string]*slot
	index *index.Index
	opts  *options
}

// NewTable builds a table from columns. Values accept the slice types
// understood by value.SliceFromAny ([]int, []float64, []string, []bool,
// []any with nil for null, []value.Value) or a *Series.
//
// Slices are taken positionally. A *Series is aligned by label onto the
// table index: the index given by WithIndex, WithLabels or WithMultiIndex,
// or else the index of the first *Series column.
func NewTable(cols []ColumnData, optFns ...Option) (_ *Table, err error) {
	o := applyOptions(optFns)
	if o.err != nil {
		return nil, translateError(o.err)
	}

	t := &Table{
		slots: make(map[string]*slot, len(cols)),
		opts:  o,
	}
	defer func() {
		if err != nil {
			t.Release()
		}
	}()

	ix := initialIndex(o, cols)
	rows := -1
	if ix != nil {
		rows = ix.Len()
	}
	for _, cd := range cols {
		if _, ok := t.slots[cd.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, cd.Name)
		}
		col, err := buildInitial(o, ix, cd.Values)
		if err != nil {
			return nil, translateError(err)
		}
		t.names = append(t.names, cd.Name)
		t.slots[cd.Name] = newSlot(col)
		if rows >= 0 && col.Len() != rows {
			return nil, &ShapeError{Expected: rows, Actual: col.Len()}
		}
		rows = col.Len()
	}

	t.index = ix
	if ix == nil {
		t.index = index.NewRange(max(rows, 0))
	}
	return t, nil
}

// initialIndex returns the index a new table is built on, nil when it is a
// range over the column length.
func initialIndex(o *options, cols []ColumnData) *index.Index {
	if o.index != nil {
		return o.index
	}
	for _, cd := range cols {
		if s, ok := cd.Values.(*Series); ok && s != nil {
			return s.index
		}
	}
	return nil
}

// buildInitial builds a new column owned by the caller.
func buildInitial(o *options, ix *index.Index, values any) (*column.Column, error) {
	if s, ok := values.(*Series); ok && s != nil {
		if ix == nil || ix == s.index {
			s.slot.col.Retain()
			return s.slot.col, nil
		}
		return alignColumn(o, s.index, s.slot.col, ix.Labels())
	}
	vals, ok, err := value.SliceFromAny(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: column values of type %T", ErrUnsupportedValue, values)
	}
	return column.FromValues(o.mem, vals)
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.index.Len() }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.names) }

// Columns returns the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.names...) }

// Index returns the row index.
func (t *Table) Index() *index.Index { return t.index }

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.slots[name]
	return ok
}

// IsTable implements selector.Target.
func (t *Table) IsTable() bool { return true }

// Schema describes the columns as an Arrow schema.
func (t *Table) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.names))
	for i, name := range t.names {
		fields[i] = t.slots[name].col.Field(name)
	}
	return arrow.NewSchema(fields, nil)
}

// DType returns the dtype of column name.
func (t *Table) DType(name string) (value.DType, error) {
	s, ok := t.slots[name]
	if !ok {
		return value.DType{}, &KeyLookupError{Key: name}
	}
	return s.col.DType(), nil
}

// Values returns the values of column name.
func (t *Table) Values(name string) ([]value.Value, error) {
	s, ok := t.slots[name]
	if !ok {
		return nil, &KeyLookupError{Key: name}
	}
	return s.col.Values(), nil
}

// GetColumn returns a view of column name. SetItem and Replace on the view
// write through to the table. Replacing the whole column on the table
// (t.SetItem(name, ...)) detaches the view, which keeps the old values.
//
// The view holds its own reference to the column; Release it when done.
func (t *Table) GetColumn(name string) (*Series, error) {
	s, ok := t.slots[name]
	if !ok {
		return nil, &KeyLookupError{Key: name}
	}
	s.retain()
	return &Series{
		name:   name,
		slot:   s,
		index:  t.index,
		opts:   t.opts,
		parent: t,
	}, nil
}

// Copy returns an independent table with the same columns and index.
func (t *Table) Copy() *Table {
	c := &Table{
		names: t.Columns(),
		slots: make(map[string]*slot, len(t.slots)),
		index: t.index,
		opts:  t.opts,
	}
	for name, s := range t.slots {
		// Columns are immutable, so the buffers can be shared.
		s.col.Retain()
		c.slots[name] = newSlot(s.col)
	}
	return c
}

// Release drops the table's references to its columns. Buffers still used by
// views or copies stay alive. The table must not be used afterwards.
func (t *Table) Release() {
	for _, s := range t.slots {
		s.release()
	}
}

// Equal reports whether both tables have the same columns, in the same
// order, with equal dtypes, values and index.
func (t *Table) Equal(other *Table) bool {
	if t == other {
		return true
	}
	if other == nil || len(t.names) != len(other.names) || !t.index.Equal(other.index) {
		return false
	}
	for i, name := range t.names {
		if other.names[i] != name || !t.slots[name].col.Equal(other.slots[name].col) {
			return false
		}
	}
	return true
}

// SetItem assigns val to the selection arg.
//
// arg is classified into exactly one selector: a column name or list of
// names, a boolean mask ([]bool or a boolean Series), a label, a list of
// labels, or a selector.Slice. val is a scalar, a slice (written
// positionally), or a *Series or *Table (aligned by label).
//
// Errors are *ShapeError, *KeyLookupError, *TypeMismatchError or
// ErrMemoryLimit; on error the table is unchanged.
func (t *Table) SetItem(arg, val any) (err error) {
	start := time.Now()
	kind := selector.KindInvalid
	rows := 0
	defer func() {
		err = translateError(err)
		t.opts.metricsCollector.RecordSetItem(kind.String(), rows, time.Since(start), err)
		t.opts.logger.LogSetItem(kind.String(), rows, err)
	}()

	sel, err := selector.Classify(arg, t, t.opts.selectorOptions())
	if err != nil {
		return err
	}
	kind = sel.Kind
	p, err := classifyPayload(val)
	if err != nil {
		return err
	}
	if sel.IsColumnar() {
		return t.setColumns(sel, p)
	}
	rows, err = t.setRows(sel, p)
	return err
}

// Replace sets every value equal to old, in every column, to replacement and
// returns the number of replaced values. Either all columns are updated or
// none is.
func (t *Table) Replace(old, replacement any) (n int, err error) {
	start := time.Now()
	defer func() {
		err = translateError(err)
		t.opts.metricsCollector.RecordReplace(n, time.Since(start), err)
		t.opts.logger.LogReplace(n, err)
	}()

	o, r, err := replaceArgs(old, replacement)
	if err != nil {
		return 0, err
	}
	st := newStage(t.opts)
	defer st.release()
	total := 0
	for _, name := range t.names {
		col, k, err := replaceIn(t.opts, t.slots[name].col, o, r)
		if err != nil {
			return 0, err
		}
		if col == nil {
			continue
		}
		if err := st.put(name, col); err != nil {
			return 0, err
		}
		total += k
	}
	for _, name := range st.names {
		t.slots[name].swap(st.take(name))
	}
	return total, nil
}

func replaceArgs(old, replacement any) (value.Value, value.Value, error) {
	o, err := value.FromAny(old)
	if err != nil {
		return value.Value{}, value.Value{}, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	r, err := value.FromAny(replacement)
	if err != nil {
		return value.Value{}, value.Value{}, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	return o, r, nil
}
