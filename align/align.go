package align

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hupe1980/colframe/column"
	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/value"
)

// ErrDuplicateLabel is returned when a target label occurs more than once in
// the source index, so the source value for it is ambiguous.
type ErrDuplicateLabel struct {
	Label value.Value
	Count int
}

func (e *ErrDuplicateLabel) Error() string {
	return fmt.Sprintf("cannot align on duplicate label %s (%d occurrences)", e.Label, e.Count)
}

// Plan maps every target label to a source position, -1 where the source
// has no such label.
type Plan struct {
	Positions []int
	Matched   int
}

// Disjoint reports whether no target label was found in the source. Every
// aligned value is null in that case.
func (p Plan) Disjoint() bool {
	return p.Matched == 0 && len(p.Positions) > 0
}

// Missing returns the number of targets without a source label.
func (p Plan) Missing() int {
	return len(p.Positions) - p.Matched
}

// Reindex plans the alignment of src onto targets.
func Reindex(src *index.Index, targets []value.Value) (Plan, error) {
	if identity(src, targets) {
		pos := make([]int, len(targets))
		for i := range pos {
			pos[i] = i
		}
		return Plan{Positions: pos, Matched: len(pos)}, nil
	}

	unique := src.IsUnique()
	plan := Plan{Positions: make([]int, len(targets))}
	for i, l := range targets {
		bm, ok := src.Get(l)
		if !ok || bm.IsEmpty() {
			plan.Positions[i] = -1
			continue
		}
		if n := bm.GetCardinality(); !unique && n > 1 {
			return Plan{}, &ErrDuplicateLabel{Label: l, Count: int(n)}
		}
		plan.Positions[i] = int(bm.Minimum())
		plan.Matched++
	}
	return plan, nil
}

// Apply gathers the values of src according to p.
func Apply(mem memory.Allocator, src *column.Column, p Plan) (*column.Column, error) {
	return src.Take(mem, p.Positions)
}

// Column aligns src, indexed by srcIndex, onto targets.
func Column(mem memory.Allocator, srcIndex *index.Index, src *column.Column, targets []value.Value) (*column.Column, Plan, error) {
	plan, err := Reindex(srcIndex, targets)
	if err != nil {
		return nil, Plan{}, err
	}
	col, err := Apply(mem, src, plan)
	if err != nil {
		return nil, Plan{}, err
	}
	return col, plan, nil
}

func identity(src *index.Index, targets []value.Value) bool {
	if src.Len() != len(targets) {
		return false
	}
	for i, l := range targets {
		if !value.Equal(src.Label(i), l) {
			return false
		}
	}
	return true
}
