package selector

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/internal/conv"
	"github.com/hupe1980/colframe/value"
)

// Kind identifies the Selector variant.
type Kind uint8

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	// KindColumnName selects (or creates) one column.
	KindColumnName
	// KindColumnNameList selects (or creates) several columns.
	KindColumnNameList
	// KindBooleanMask selects the rows where the mask is true.
	KindBooleanMask
	// KindLabelList selects the rows carrying any of the labels, in list order.
	KindLabelList
	// KindLabel selects the rows carrying one label.
	KindLabel
	// KindSlice selects a positional or label range of rows.
	KindSlice
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindColumnName:
		return "column"
	case KindColumnNameList:
		return "columns"
	case KindBooleanMask:
		return "mask"
	case KindLabelList:
		return "labels"
	case KindLabel:
		return "label"
	case KindSlice:
		return "slice"
	default:
		return "invalid"
	}
}

var (
	// ErrUnsupported is returned for arguments that cannot act as a selector.
	ErrUnsupported = errors.New("unsupported selector")
)

// ErrMaskLength indicates a boolean mask whose length differs from the row
// count.
type ErrMaskLength struct {
	Expected int
	Actual   int
}

func (e *ErrMaskLength) Error() string {
	return fmt.Sprintf("boolean mask length %d does not match %d rows", e.Actual, e.Expected)
}

// ErrUnknownKeys indicates string keys that match neither the columns nor
// the index of a table while strict key checking is on.
type ErrUnknownKeys struct {
	Keys []string
}

func (e *ErrUnknownKeys) Error() string {
	return fmt.Sprintf("keys %q match neither columns nor index labels", e.Keys)
}

// ErrAmbiguousBound indicates a slice bound label that occurs at
// non-adjacent positions of the index.
type ErrAmbiguousBound struct {
	Label value.Value
	Count int
}

func (e *ErrAmbiguousBound) Error() string {
	return fmt.Sprintf("cannot bound slice on non-unique label %s (%d occurrences)", e.Label, e.Count)
}

// Target is the schema and index a selector is resolved against.
type Target interface {
	Len() int
	Index() *index.Index
	HasColumn(name string) bool
	// IsTable reports whether string keys address columns.
	IsTable() bool
}

// Masker is implemented by values that can act as a boolean mask, such as a
// boolean Series.
type Masker interface {
	Bools() ([]bool, bool)
}

// Valuer is implemented by values whose elements can act as a label list.
type Valuer interface {
	Values() []value.Value
}

// Options configure classification.
type Options struct {
	// Strict rejects string lists that match neither columns nor labels
	// instead of treating them as new columns.
	Strict bool
}

// Selector is the classified form of an indexing argument. Exactly one of
// the payload fields is meaningful, as given by Kind.
type Selector struct {
	Kind    Kind
	Column  string
	Columns []string
	Mask    *roaring.Bitmap
	Labels  []value.Value
	Label   value.Value
	Slice   Slice
}

// IsColumnar reports whether the selector addresses whole columns.
func (s Selector) IsColumnar() bool {
	return s.Kind == KindColumnName || s.Kind == KindColumnNameList
}

// Names returns the addressed column names for columnar selectors.
func (s Selector) Names() []string {
	switch s.Kind {
	case KindColumnName:
		return []string{s.Column}
	case KindColumnNameList:
		return s.Columns
	default:
		return nil
	}
}

// Classify turns an indexing argument into exactly one Selector variant.
func Classify(arg any, t Target, opts Options) (Selector, error) {
	switch x := arg.(type) {
	case nil:
		return Selector{}, fmt.Errorf("%w: nil", ErrUnsupported)
	case Slice:
		return Selector{Kind: KindSlice, Slice: x}, nil
	case *Slice:
		return Selector{Kind: KindSlice, Slice: *x}, nil
	case []bool:
		return classifyMask(x, t)
	case string:
		return classifyString(x, t), nil
	case []string:
		return classifyStrings(x, t, opts)
	case Masker:
		if mask, ok := x.Bools(); ok {
			return classifyMask(mask, t)
		}
		if v, ok := x.(Valuer); ok {
			return classifyList(v.Values(), t, opts)
		}
		return Selector{}, fmt.Errorf("%w: %T", ErrUnsupported, arg)
	case Valuer:
		return classifyList(x.Values(), t, opts)
	}

	vals, isSlice, err := value.SliceFromAny(arg)
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if isSlice {
		return classifyList(vals, t, opts)
	}

	v, err := value.FromAny(arg)
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if s, ok := v.AsString(); ok {
		return classifyString(s, t), nil
	}
	return Selector{Kind: KindLabel, Label: v}, nil
}

func classifyMask(mask []bool, t Target) (Selector, error) {
	if len(mask) != t.Len() {
		return Selector{}, &ErrMaskLength{Expected: t.Len(), Actual: len(mask)}
	}
	return Selector{Kind: KindBooleanMask, Mask: conv.Mask(mask)}, nil
}

func classifyString(s string, t Target) Selector {
	if t.IsTable() {
		return Selector{Kind: KindColumnName, Column: s}
	}
	return Selector{Kind: KindLabel, Label: value.String(s)}
}

// classifyList handles generic value lists: all-bool lists are masks, all-string
// lists follow the string-list rules, everything else is a label list.
func classifyList(vals []value.Value, t Target, opts Options) (Selector, error) {
	if len(vals) > 0 {
		allBool, allString := true, true
		for _, v := range vals {
			allBool = allBool && v.Kind == value.KindBool
			allString = allString && v.Kind == value.KindString
		}
		switch {
		case allBool:
			mask := make([]bool, len(vals))
			for i, v := range vals {
				mask[i] = v.B
			}
			return classifyMask(mask, t)
		case allString:
			names := make([]string, len(vals))
			for i, v := range vals {
				names[i] = v.StringValue()
			}
			return classifyStrings(names, t, opts)
		}
	}
	return Selector{Kind: KindLabelList, Labels: vals}, nil
}

func classifyStrings(names []string, t Target, opts Options) (Selector, error) {
	labels := make([]value.Value, len(names))
	for i, n := range names {
		labels[i] = value.String(n)
	}
	if !t.IsTable() {
		return Selector{Kind: KindLabelList, Labels: labels}, nil
	}

	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return Selector{Kind: KindColumnNameList, Columns: append([]string(nil), names...)}, nil
	}

	ix := t.Index()
	allLabels := len(names) > 0
	for _, l := range labels {
		if !ix.Contains(l) {
			allLabels = false
			break
		}
	}
	if allLabels {
		return Selector{Kind: KindLabelList, Labels: labels}, nil
	}
	if opts.Strict {
		return Selector{}, &ErrUnknownKeys{Keys: missing}
	}
	return Selector{Kind: KindColumnNameList, Columns: append([]string(nil), names...)}, nil
}

// Rows resolves a row selector to positions. Mask and slice positions are
// ascending; label lists keep list order.
func (s Selector) Rows(t Target) ([]int, error) {
	ix := t.Index()
	switch s.Kind {
	case KindBooleanMask:
		return conv.Positions(s.Mask), nil
	case KindLabel:
		return ix.Locate(s.Label)
	case KindLabelList:
		var out []int
		for _, l := range s.Labels {
			pos, err := ix.Locate(l)
			if err != nil {
				return nil, err
			}
			out = append(out, pos...)
		}
		return out, nil
	case KindSlice:
		return s.Slice.Resolve(ix)
	default:
		return nil, fmt.Errorf("%w: %s selector does not address rows", ErrUnsupported, s.Kind)
	}
}
