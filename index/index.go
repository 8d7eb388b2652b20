package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colframe/internal/conv"
	"github.com/hupe1980/colframe/value"
)

var (
	// ErrLevelMismatch is returned when labels of one index have different
	// numbers of levels.
	ErrLevelMismatch = errors.New("labels have mismatched levels")

	// ErrNotComparable is returned by ordered operations on an index whose
	// labels cannot be ordered against the probe.
	ErrNotComparable = errors.New("labels are not comparable")
)

// ErrLabelNotFound indicates a label that is not present in the index.
type ErrLabelNotFound struct {
	Label value.Value
}

func (e *ErrLabelNotFound) Error() string {
	return fmt.Sprintf("label not found: %s", e.Label)
}

// Index maps row labels to row positions.
//
// Labels are scalars, or tuples for a multi-level index. Duplicates are
// allowed; a label maps to the set of positions that carry it.
//
// An Index is immutable once built and is safe to share between a Table and
// the Series views taken from it. Postings are built lazily on first lookup.
type Index struct {
	labels  []value.Value
	names   []string
	nlevels int
	isRange bool

	once     sync.Once
	postings map[string]*roaring.Bitmap

	monoOnce sync.Once
	mono     bool
}

// NewRange returns the default index 0..n-1.
func NewRange(n int) *Index {
	n = max(n, 0)
	labels := make([]value.Value, n)
	for i := range labels {
		labels[i] = value.Int(int64(i))
	}
	return &Index{labels: labels, nlevels: 1, isRange: true}
}

// New builds an index from labels. All labels must have the same number of
// levels.
func New(labels []value.Value, names ...string) (*Index, error) {
	if err := conv.RowCount(len(labels)); err != nil {
		return nil, err
	}
	nlevels := 1
	if len(labels) > 0 {
		nlevels = labels[0].Levels()
	}
	for _, l := range labels {
		if l.Levels() != nlevels {
			return nil, fmt.Errorf("%w: %s has %d, want %d", ErrLevelMismatch, l, l.Levels(), nlevels)
		}
	}
	if len(names) > 0 && len(names) != nlevels {
		return nil, fmt.Errorf("%w: %d names for %d levels", ErrLevelMismatch, len(names), nlevels)
	}
	return &Index{
		labels:  append([]value.Value(nil), labels...),
		names:   append([]string(nil), names...),
		nlevels: nlevels,
	}, nil
}

// NewMulti builds a multi-level index from one slice of values per level.
func NewMulti(levels [][]value.Value, names []string) (*Index, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrLevelMismatch)
	}
	n := len(levels[0])
	for _, lvl := range levels[1:] {
		if len(lvl) != n {
			return nil, fmt.Errorf("%w: level lengths differ (%d vs %d)", ErrLevelMismatch, len(lvl), n)
		}
	}
	labels := make([]value.Value, n)
	for i := range labels {
		tuple := make([]value.Value, len(levels))
		for l := range levels {
			tuple[l] = levels[l][i]
		}
		labels[i] = value.Tuple(tuple...)
	}
	return New(labels, names...)
}

// Len returns the number of labels.
func (ix *Index) Len() int { return len(ix.labels) }

// NLevels returns the number of label levels.
func (ix *Index) NLevels() int { return ix.nlevels }

// Names returns the level names, if any.
func (ix *Index) Names() []string { return append([]string(nil), ix.names...) }

// IsRange reports whether the index is the default 0..n-1 index.
func (ix *Index) IsRange() bool { return ix.isRange }

// Label returns the label at position i.
func (ix *Index) Label(i int) value.Value { return ix.labels[i] }

// Labels returns a copy of all labels.
func (ix *Index) Labels() []value.Value { return append([]value.Value(nil), ix.labels...) }

// Take returns the labels at the given positions.
func (ix *Index) Take(positions []int) []value.Value {
	out := make([]value.Value, len(positions))
	for i, p := range positions {
		out[i] = ix.labels[p]
	}
	return out
}

// Get returns the positions carrying exactly label. The returned bitmap is
// shared and must not be modified.
func (ix *Index) Get(label value.Value) (*roaring.Bitmap, bool) {
	if ix.isRange {
		f, ok := label.AsFloat64()
		if !ok || f < 0 || f >= float64(len(ix.labels)) || f != float64(int64(f)) {
			return nil, false
		}
		return roaring.BitmapOf(uint32(f)), true
	}
	ix.once.Do(ix.buildPostings)
	bm, ok := ix.postings[label.Key()]
	return bm, ok
}

// Contains reports whether Locate would find label.
func (ix *Index) Contains(label value.Value) bool {
	_, err := ix.Locate(label)
	return err == nil
}

// Locate returns the ascending positions of label. On a multi-level index a
// scalar or a shorter tuple matches the leading levels.
func (ix *Index) Locate(label value.Value) ([]int, error) {
	levels := label.Levels()
	switch {
	case ix.nlevels > 1 && levels < ix.nlevels:
		return ix.locatePrefix(label)
	case levels > ix.nlevels && label.Kind == value.KindTuple:
		return nil, &ErrLabelNotFound{Label: label}
	}
	bm, ok := ix.Get(label)
	if !ok || bm.IsEmpty() {
		return nil, &ErrLabelNotFound{Label: label}
	}
	return conv.Positions(bm), nil
}

func (ix *Index) locatePrefix(prefix value.Value) ([]int, error) {
	var out []int
	for i, l := range ix.labels {
		if value.HasPrefix(l, prefix) {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return nil, &ErrLabelNotFound{Label: prefix}
	}
	return out, nil
}

// IsUnique reports whether every label occurs once.
func (ix *Index) IsUnique() bool {
	if ix.isRange {
		return true
	}
	ix.once.Do(ix.buildPostings)
	return len(ix.postings) == len(ix.labels)
}

// IsMonotonicIncreasing reports whether labels are sorted ascending
// (duplicates allowed).
func (ix *Index) IsMonotonicIncreasing() bool {
	if ix.isRange {
		return true
	}
	ix.monoOnce.Do(func() {
		ix.mono = true
		for i := 1; i < len(ix.labels); i++ {
			c, ok := value.Compare(ix.labels[i-1], ix.labels[i])
			if !ok || c > 0 {
				ix.mono = false
				return
			}
		}
	})
	return ix.mono
}

// SearchSorted returns the insertion position of label in a monotonic
// increasing index: the first position whose label is >= label, or > label
// when right is true.
func (ix *Index) SearchSorted(label value.Value, right bool) (int, error) {
	if !ix.IsMonotonicIncreasing() {
		return 0, fmt.Errorf("%w: index is not monotonic increasing", ErrNotComparable)
	}
	var cmpErr error
	pos := sort.Search(len(ix.labels), func(i int) bool {
		c, ok := value.Compare(ix.labels[i], label)
		if !ok {
			cmpErr = fmt.Errorf("%w: %s vs %s", ErrNotComparable, ix.labels[i], label)
			return true
		}
		if right {
			return c > 0
		}
		return c >= 0
	})
	if cmpErr != nil {
		return 0, cmpErr
	}
	return pos, nil
}

// Equal reports whether both indexes carry the same labels in the same order.
func (ix *Index) Equal(other *Index) bool {
	if ix == other {
		return true
	}
	if other == nil || len(ix.labels) != len(other.labels) {
		return false
	}
	if ix.isRange && other.isRange {
		return true
	}
	for i := range ix.labels {
		if !value.Equal(ix.labels[i], other.labels[i]) {
			return false
		}
	}
	return true
}

func (ix *Index) buildPostings() {
	ix.postings = make(map[string]*roaring.Bitmap, len(ix.labels))
	for i, l := range ix.labels {
		k := l.Key()
		bm, ok := ix.postings[k]
		if !ok {
			bm = roaring.New()
			ix.postings[k] = bm
		}
		bm.Add(uint32(i))
	}
}
