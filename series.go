package colframe

import (
	"fmt"
	"time"

	"github.com/hupe1980/colframe/column"
	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/selector"
	"github.com/hupe1980/colframe/value"
)

// Series is a named column with its own row index.
//
// A Series returned by Table.GetColumn is a view: it shares its column slot
// with the table, so writes through either are visible in both until the
// table replaces the column.
type Series struct {
	name   string
	slot   *slot
	index  *index.Index
	opts   *options
	parent *Table
}

// NewSeries builds an independent series from values (see NewTable for the
// accepted types). A *Series source keeps its index unless one is given, in
// which case it is aligned by label.
func NewSeries(name string, values any, optFns ...Option) (*Series, error) {
	o := applyOptions(optFns)
	if o.err != nil {
		return nil, translateError(o.err)
	}
	col, err := buildInitial(o, o.index, values)
	if err != nil {
		return nil, translateError(err)
	}
	ix := o.index
	switch {
	case ix == nil:
		ix = seriesIndex(values, col.Len())
	case ix.Len() != col.Len():
		col.Release()
		return nil, &ShapeError{Expected: col.Len(), Actual: ix.Len()}
	}
	return &Series{name: name, slot: newSlot(col), index: ix, opts: o}, nil
}

func seriesIndex(values any, n int) *index.Index {
	if src, ok := values.(*Series); ok && src != nil {
		return src.index
	}
	return index.NewRange(n)
}

// Len returns the number of rows.
func (s *Series) Len() int { return s.index.Len() }

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// DType returns the storage dtype.
func (s *Series) DType() value.DType { return s.slot.col.DType() }

// Index returns the row index.
func (s *Series) Index() *index.Index { return s.index }

// HasColumn implements selector.Target. A series has no columns.
func (s *Series) HasColumn(string) bool { return false }

// IsTable implements selector.Target.
func (s *Series) IsTable() bool { return false }

// Value returns the value at position i.
func (s *Series) Value(i int) value.Value { return s.slot.col.Value(i) }

// Values returns all values in row order.
func (s *Series) Values() []value.Value { return s.slot.col.Values() }

// Bools returns the values as a boolean mask when the series is boolean and
// has no nulls.
func (s *Series) Bools() ([]bool, bool) { return s.slot.col.Bools() }

// Loc returns the values at the rows carrying label.
func (s *Series) Loc(label any) ([]value.Value, error) {
	l, err := value.FromAny(label)
	if err != nil {
		return nil, translateError(fmt.Errorf("%w: %w", ErrUnsupportedValue, err))
	}
	positions, err := s.index.Locate(l)
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]value.Value, len(positions))
	for i, p := range positions {
		out[i] = s.Value(p)
	}
	return out, nil
}

// IsView reports whether the series still shares its column with a table.
func (s *Series) IsView() bool {
	return s.parent != nil && s.parent.slots[s.name] == s.slot
}

// Copy returns an independent series. Writes to the copy never reach a
// table.
func (s *Series) Copy() *Series {
	s.slot.col.Retain()
	return &Series{name: s.name, slot: newSlot(s.slot.col), index: s.index, opts: s.opts}
}

// Release drops the series' reference to its column. A view releases only
// its own reference; the table keeps its buffer. The series must not be used
// afterwards.
func (s *Series) Release() {
	s.slot.release()
}

// Equal reports whether both series have the same name, dtype, values and
// index.
func (s *Series) Equal(other *Series) bool {
	if s == other {
		return true
	}
	return other != nil && s.name == other.name && s.index.Equal(other.index) && s.slot.col.Equal(other.slot.col)
}

// SetItem assigns val to the rows selected by arg: a label, a list of
// labels, a boolean mask or a selector.Slice. Strings are labels. val is a
// scalar, a slice (written positionally) or a *Series (aligned by label).
//
// On error the series is unchanged.
func (s *Series) SetItem(arg, val any) (err error) {
	start := time.Now()
	kind := selector.KindInvalid
	rows := 0
	defer func() {
		err = translateError(err)
		s.opts.metricsCollector.RecordSetItem(kind.String(), rows, time.Since(start), err)
		s.opts.logger.WithTarget(s.name).LogSetItem(kind.String(), rows, err)
	}()

	sel, err := selector.Classify(arg, s, s.opts.selectorOptions())
	if err != nil {
		return err
	}
	kind = sel.Kind
	p, err := classifyPayload(val)
	if err != nil {
		return err
	}
	if p.kind == payloadTable {
		return fmt.Errorf("%w: cannot assign a table to a series", ErrUnsupportedValue)
	}

	positions, err := sel.Rows(s)
	if err != nil {
		return err
	}
	vals, err := p.rowValues(s.opts, s.name, s.index.Take(positions))
	if err != nil {
		return err
	}
	col, err := s.slot.col.Scatter(s.opts.mem, positions, vals)
	if err != nil {
		return err
	}
	if err := s.commit(col); err != nil {
		return err
	}
	rows = len(positions)
	return nil
}

// Replace sets every value equal to old to replacement and returns the
// number of replaced values.
func (s *Series) Replace(old, replacement any) (n int, err error) {
	start := time.Now()
	defer func() {
		err = translateError(err)
		s.opts.metricsCollector.RecordReplace(n, time.Since(start), err)
		s.opts.logger.WithTarget(s.name).LogReplace(n, err)
	}()

	o, r, err := replaceArgs(old, replacement)
	if err != nil {
		return 0, err
	}
	col, k, err := replaceIn(s.opts, s.slot.col, o, r)
	if err != nil || col == nil {
		return 0, err
	}
	if err := s.commit(col); err != nil {
		return 0, err
	}
	return k, nil
}

// commit swaps col into the series slot within the memory budget.
func (s *Series) commit(col *column.Column) error {
	st := newStage(s.opts)
	defer st.release()
	if err := st.put(s.name, col); err != nil {
		return err
	}
	s.slot.swap(st.take(s.name))
	return nil
}
