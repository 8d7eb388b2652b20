package selector

import (
	"errors"

	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/value"
)

// Slice selects a range of rows.
//
// Bounds that are nil or Go ints are positions with exclusive Stop and
// Python slice semantics (negative bounds count from the end). Any other
// bound is a label: the range is then inclusive of Stop. A zero Step means 1.
type Slice struct {
	Start any
	Stop  any
	Step  int
}

// Range returns the positional slice [start, stop).
func Range(start, stop int) Slice { return Slice{Start: start, Stop: stop} }

// Between returns the label slice [start, stop], both ends inclusive. Go
// int bounds are taken as labels here, not positions.
func Between(start, stop any) Slice {
	return Slice{Start: asLabel(start), Stop: asLabel(stop)}
}

func asLabel(b any) any {
	if b == nil {
		return nil
	}
	if v, err := value.FromAny(b); err == nil {
		return v
	}
	return b
}

func (s Slice) step() int {
	if s.Step == 0 {
		return 1
	}
	return s.Step
}

func (s Slice) positional() bool {
	isPos := func(b any) bool {
		if b == nil {
			return true
		}
		_, ok := b.(int)
		return ok
	}
	return isPos(s.Start) && isPos(s.Stop)
}

// Resolve returns the selected positions in traversal order.
func (s Slice) Resolve(ix *index.Index) ([]int, error) {
	n := ix.Len()
	step := s.step()

	var start, stop int
	if s.positional() {
		start, stop = s.positionalBounds(n, step)
	} else {
		var err error
		if start, stop, err = s.labelBounds(ix, step); err != nil {
			return nil, err
		}
	}

	var out []int
	if step > 0 {
		for p := start; p < stop; p += step {
			out = append(out, p)
		}
	} else {
		for p := start; p > stop; p += step {
			out = append(out, p)
		}
	}
	return out, nil
}

// positionalBounds mirrors Python's slice.indices.
func (s Slice) positionalBounds(n, step int) (start, stop int) {
	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	clamp := func(b any, def int) int {
		if b == nil {
			return def
		}
		p := b.(int)
		if p < 0 {
			p += n
			if p < lower {
				p = lower
			}
		} else if p > upper {
			p = upper
		}
		return p
	}
	if step > 0 {
		return clamp(s.Start, lower), clamp(s.Stop, upper)
	}
	return clamp(s.Start, upper), clamp(s.Stop, lower)
}

// labelBounds converts label bounds to traversal bounds: start is the first
// visited position, stop the first position past the range.
func (s Slice) labelBounds(ix *index.Index, step int) (start, stop int, err error) {
	n := ix.Len()
	if step > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}

	if s.Start != nil {
		if start, err = boundPosition(ix, s.Start, step > 0); err != nil {
			return 0, 0, err
		}
	}
	if s.Stop != nil {
		if stop, err = boundPosition(ix, s.Stop, step < 0); err != nil {
			return 0, 0, err
		}
		if step > 0 {
			stop++
		} else {
			stop--
		}
	}
	return start, stop, nil
}

// boundPosition locates a label bound. For a present label it returns the
// first occurrence when first is set, the last otherwise. A label whose
// occurrences are not adjacent cannot bound a slice. An absent label on
// a monotonic increasing index resolves to the first position after it
// (first) or the last position before it.
func boundPosition(ix *index.Index, bound any, first bool) (int, error) {
	label, err := value.FromAny(bound)
	if err != nil {
		return 0, errors.Join(ErrUnsupported, err)
	}
	pos, err := ix.Locate(label)
	if err == nil {
		if !contiguous(pos) {
			return 0, &ErrAmbiguousBound{Label: label, Count: len(pos)}
		}
		if first {
			return pos[0], nil
		}
		return pos[len(pos)-1], nil
	}
	if !ix.IsMonotonicIncreasing() {
		return 0, err
	}
	ins, serr := ix.SearchSorted(label, false)
	if serr != nil {
		return 0, err
	}
	if first {
		return ins, nil
	}
	return ins - 1, nil
}

func contiguous(pos []int) bool {
	return pos[len(pos)-1]-pos[0] == len(pos)-1
}
