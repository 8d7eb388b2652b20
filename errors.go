package colframe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/colframe/align"
	"github.com/hupe1980/colframe/column"
	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/resource"
	"github.com/hupe1980/colframe/selector"
	"github.com/hupe1980/colframe/value"
)

var (
	// ErrShape matches every *ShapeError.
	ErrShape = errors.New("shape mismatch")

	// ErrKeyLookup matches every *KeyLookupError.
	ErrKeyLookup = errors.New("key lookup failed")

	// ErrTypeMismatch matches every *TypeMismatchError.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMemoryLimit is returned when staging a mutation would exceed the
	// configured resource controller limit.
	ErrMemoryLimit = resource.ErrMemoryLimit

	// ErrUnsupportedValue is returned for assigned values of an unsupported
	// Go type. It is wrapped in a *TypeMismatchError.
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrDuplicateColumn is returned when a table is built with a repeated
	// column name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// ShapeError indicates a mask, value or selection whose length is
// incompatible with its target.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ShapeError struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ShapeError) Error() string {
	if e.cause != nil {
		return "shape mismatch: " + e.cause.Error()
	}
	return fmt.Sprintf("shape mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ShapeError) Unwrap() error { return e.cause }

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// KeyLookupError indicates a selector referencing an unknown column or label.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type KeyLookupError struct {
	Key   string
	cause error
}

func (e *KeyLookupError) Error() string {
	if e.cause != nil {
		return "key lookup failed: " + e.cause.Error()
	}
	return fmt.Sprintf("key lookup failed: %s", e.Key)
}

func (e *KeyLookupError) Unwrap() error { return e.cause }

// Is reports whether target is ErrKeyLookup.
func (e *KeyLookupError) Is(target error) bool { return target == ErrKeyLookup }

// TypeMismatchError indicates a value that cannot be stored in a column even
// after widening, or an argument of an unsupported type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type TypeMismatchError struct {
	DType value.DType
	Kind  value.Kind
	cause error
}

func (e *TypeMismatchError) Error() string {
	if e.cause != nil {
		return "type mismatch: " + e.cause.Error()
	}
	return fmt.Sprintf("type mismatch: cannot store %s in %s column", e.Kind, e.DType)
}

func (e *TypeMismatchError) Unwrap() error { return e.cause }

// Is reports whether target is ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already translated.
	var (
		se *ShapeError
		ke *KeyLookupError
		te *TypeMismatchError
	)
	if errors.As(err, &se) || errors.As(err, &ke) || errors.As(err, &te) {
		return err
	}
	if errors.Is(err, ErrMemoryLimit) {
		return err
	}

	// Shape normalization.
	var ml *selector.ErrMaskLength
	if errors.As(err, &ml) {
		return &ShapeError{Expected: ml.Expected, Actual: ml.Actual, cause: err}
	}
	var lm *column.ErrLengthMismatch
	if errors.As(err, &lm) {
		return &ShapeError{Expected: lm.Expected, Actual: lm.Actual, cause: err}
	}
	var oor *column.ErrOutOfRange
	if errors.As(err, &oor) {
		return &ShapeError{Expected: oor.Len, Actual: oor.Position + 1, cause: err}
	}
	var dl *align.ErrDuplicateLabel
	if errors.As(err, &dl) {
		return &ShapeError{Expected: 1, Actual: dl.Count, cause: err}
	}

	// Key lookups.
	var lnf *index.ErrLabelNotFound
	if errors.As(err, &lnf) {
		return &KeyLookupError{Key: lnf.Label.String(), cause: err}
	}
	var ab *selector.ErrAmbiguousBound
	if errors.As(err, &ab) {
		return &KeyLookupError{Key: ab.Label.String(), cause: err}
	}
	var uk *selector.ErrUnknownKeys
	if errors.As(err, &uk) {
		return &KeyLookupError{Key: strings.Join(uk.Keys, ","), cause: err}
	}

	// Types.
	var it *value.ErrIncompatibleType
	if errors.As(err, &it) {
		return &TypeMismatchError{DType: it.DType, Kind: it.Kind, cause: err}
	}
	if errors.Is(err, selector.ErrUnsupported) || errors.Is(err, ErrUnsupportedValue) || errors.Is(err, index.ErrNotComparable) {
		return &TypeMismatchError{cause: err}
	}

	return err
}
