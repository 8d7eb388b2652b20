package colframe

import (
	"fmt"

	"github.com/hupe1980/colframe/align"
	"github.com/hupe1980/colframe/column"
	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/value"
)

type payloadKind uint8

const (
	payloadScalar payloadKind = iota
	payloadSequence
	payloadSeries
	payloadTable
)

// payload is the classified form of an assigned value. Series and Table
// payloads carry an index and are aligned by label; the others are written
// positionally.
type payload struct {
	kind   payloadKind
	scalar value.Value
	seq    []value.Value
	series *Series
	table  *Table
}

func classifyPayload(v any) (payload, error) {
	switch x := v.(type) {
	case *Series:
		if x == nil {
			return payload{kind: payloadScalar, scalar: value.Null()}, nil
		}
		return payload{kind: payloadSeries, series: x}, nil
	case *Table:
		if x == nil {
			return payload{kind: payloadScalar, scalar: value.Null()}, nil
		}
		return payload{kind: payloadTable, table: x}, nil
	case value.Value:
		return payload{kind: payloadScalar, scalar: x}, nil
	}

	vals, ok, err := value.SliceFromAny(v)
	if err != nil {
		return payload{}, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	if ok {
		return payload{kind: payloadSequence, seq: vals}, nil
	}
	s, err := value.FromAny(v)
	if err != nil {
		return payload{}, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	return payload{kind: payloadScalar, scalar: s}, nil
}

// rowValues returns the values written at k selected rows of the column
// name. targets are the labels of the selected rows.
func (p payload) rowValues(o *options, name string, targets []value.Value) ([]value.Value, error) {
	k := len(targets)
	switch p.kind {
	case payloadScalar:
		return repeat(p.scalar, k), nil
	case payloadSequence:
		switch len(p.seq) {
		case k:
			return p.seq, nil
		case 1:
			return repeat(p.seq[0], k), nil
		}
		return nil, &ShapeError{Expected: k, Actual: len(p.seq)}
	case payloadSeries:
		return alignedValues(o, p.series.index, p.series.slot.col, targets)
	default:
		s, ok := p.table.slots[name]
		if !ok {
			return repeat(value.Null(), k), nil
		}
		return alignedValues(o, p.table.index, s.col, targets)
	}
}

func alignedValues(o *options, srcIndex *index.Index, src *column.Column, targets []value.Value) ([]value.Value, error) {
	col, err := alignColumn(o, srcIndex, src, targets)
	if err != nil {
		return nil, err
	}
	defer col.Release()
	return col.Values(), nil
}

// alignColumn reindexes src, labeled by srcIndex, onto targets.
func alignColumn(o *options, srcIndex *index.Index, src *column.Column, targets []value.Value) (*column.Column, error) {
	col, plan, err := align.Column(o.mem, srcIndex, src, targets)
	if err != nil {
		return nil, err
	}
	o.logger.LogAlignment(plan)
	return col, nil
}

func repeat(v value.Value, n int) []value.Value {
	out := make([]value.Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}
