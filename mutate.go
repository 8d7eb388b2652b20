package colframe

import (
	"fmt"

	"github.com/hupe1980/colframe/column"
	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/internal/conv"
	"github.com/hupe1980/colframe/selector"
	"github.com/hupe1980/colframe/value"
)

// slot holds the current buffer of one column. A Table and the Series views
// taken from it share slots, so a buffer swapped into a slot is seen by both.
//
// The slot owns one reference to col. refs counts the tables and series
// holding the slot; the column is released when the last one lets go.
type slot struct {
	col  *column.Column
	refs int
}

func newSlot(col *column.Column) *slot {
	return &slot{col: col, refs: 1}
}

// swap installs col and releases the previous buffer.
func (s *slot) swap(col *column.Column) {
	old := s.col
	s.col = col
	old.Release()
}

func (s *slot) retain() { s.refs++ }

func (s *slot) release() {
	if s.refs <= 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.col.Release()
		s.col = nil
	}
}

// stage collects the new buffers of one mutation. Nothing is visible to the
// target until the caller swaps them in, and every buffer is staged before
// the first swap.
type stage struct {
	o        *options
	reserved int64
	names    []string
	cols     map[string]*column.Column
}

func newStage(o *options) *stage {
	return &stage{o: o, cols: make(map[string]*column.Column)}
}

// put takes ownership of col. On error col is released.
func (s *stage) put(name string, col *column.Column) error {
	n := col.SizeInBytes()
	if err := s.o.resources.Reserve(n); err != nil {
		col.Release()
		return err
	}
	s.reserved += n
	if prev, ok := s.cols[name]; ok {
		prev.Release()
	} else {
		s.names = append(s.names, name)
	}
	s.cols[name] = col
	return nil
}

// take hands the staged column for name over to the caller.
func (s *stage) take(name string) *column.Column {
	col := s.cols[name]
	delete(s.cols, name)
	return col
}

// release returns the reservation and drops every column not taken.
func (s *stage) release() {
	for _, col := range s.cols {
		col.Release()
	}
	clear(s.cols)
	s.o.resources.ReleaseMemory(s.reserved)
	s.reserved = 0
}

// setRows writes p into the selected rows of every column.
func (t *Table) setRows(sel selector.Selector, p payload) (int, error) {
	positions, err := sel.Rows(t)
	if err != nil {
		return 0, err
	}
	targets := t.index.Take(positions)

	st := newStage(t.opts)
	defer st.release()
	for _, name := range t.names {
		vals, err := p.rowValues(t.opts, name, targets)
		if err != nil {
			return 0, err
		}
		col, err := t.slots[name].col.Scatter(t.opts.mem, positions, vals)
		if err != nil {
			return 0, err
		}
		if err := st.put(name, col); err != nil {
			return 0, err
		}
	}

	for _, name := range st.names {
		t.slots[name].swap(st.take(name))
	}
	return len(positions), nil
}

// setColumns replaces or appends the named columns.
func (t *Table) setColumns(sel selector.Selector, p payload) error {
	names := sel.Names()
	list := sel.Kind == selector.KindColumnNameList

	if p.kind == payloadTable {
		want := 1
		if list {
			want = len(names)
		}
		if p.table.Width() != want {
			return &ShapeError{Expected: want, Actual: p.table.Width()}
		}
	}
	if p.kind == payloadSequence && list && len(p.seq) != len(names) {
		return &ShapeError{Expected: len(names), Actual: len(p.seq)}
	}

	ix := t.index
	if t.isEmpty() {
		ix = adoptedIndex(p, list)
	}
	n := ix.Len()

	st := newStage(t.opts)
	defer st.release()
	for i, name := range names {
		col, err := t.buildColumn(p, list, i, ix, n)
		if err != nil {
			return err
		}
		if err := st.put(name, col); err != nil {
			return err
		}
	}

	t.index = ix
	for _, name := range st.names {
		if old, ok := t.slots[name]; ok {
			old.release()
		} else {
			t.names = append(t.names, name)
		}
		// A fresh slot detaches views of the replaced column.
		t.slots[name] = newSlot(st.take(name))
	}
	return nil
}

// isEmpty reports whether the table has neither columns nor rows, in which
// case the first column assignment defines the rows.
func (t *Table) isEmpty() bool {
	return len(t.names) == 0 && t.index.Len() == 0
}

func adoptedIndex(p payload, list bool) *index.Index {
	switch {
	case p.kind == payloadSeries:
		return p.series.index
	case p.kind == payloadTable:
		return p.table.index
	case p.kind == payloadSequence && !list:
		return index.NewRange(len(p.seq))
	default:
		return index.NewRange(0)
	}
}

// buildColumn builds the i-th column of a column assignment over the n rows
// labeled by ix.
func (t *Table) buildColumn(p payload, list bool, i int, ix *index.Index, n int) (*column.Column, error) {
	mem := t.opts.mem
	switch p.kind {
	case payloadScalar:
		return column.Broadcast(mem, p.scalar, n)
	case payloadSequence:
		if list {
			return column.Broadcast(mem, p.seq[i], n)
		}
		switch len(p.seq) {
		case n:
			return column.FromValues(mem, p.seq)
		case 1:
			return column.Broadcast(mem, p.seq[0], n)
		}
		return nil, &ShapeError{Expected: n, Actual: len(p.seq)}
	case payloadSeries:
		return alignColumn(t.opts, p.series.index, p.series.slot.col, ix.Labels())
	case payloadTable:
		src := p.table.slots[p.table.names[i]].col
		return alignColumn(t.opts, p.table.index, src, ix.Labels())
	}
	return nil, fmt.Errorf("%w: payload kind %d", ErrUnsupportedValue, p.kind)
}

// replaceIn stages a copy of col with every value equal to old set to
// replacement. It returns nil when nothing matched.
func replaceIn(o *options, col *column.Column, old, replacement value.Value) (*column.Column, int, error) {
	bm, err := col.EqualMask(old)
	if err != nil {
		return nil, 0, err
	}
	if bm.IsEmpty() {
		return nil, 0, nil
	}
	positions := conv.Positions(bm)
	out, err := col.Scatter(o.mem, positions, repeat(replacement, len(positions)))
	if err != nil {
		return nil, 0, err
	}
	return out, len(positions), nil
}
