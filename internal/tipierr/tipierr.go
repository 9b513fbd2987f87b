// Package tipierr defines the shared error taxonomy used across every
// TiPi-Go package: a small closed set of Kind values plus an Error
// wrapper that carries the operation name, the kind, and the
// underlying cause so callers can errors.Is/errors.As against either.
package tipierr

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies why an operation failed. It mirrors the taxonomy
// every TiPi-Go component is required to surface (array bounds,
// shape mismatches, optimizer state machine violations, ...).
type Kind int

const (
	// InvalidArgument: a precondition was violated (bad dimensions,
	// wrong defocus-vector length, epsilon <= 0, a non-finite parameter).
	InvalidArgument Kind = iota
	// ShapeMismatch: two arrays/vectors are not conformable.
	ShapeMismatch
	// IncorrectSpace: a vector does not belong to the required vector space.
	IncorrectSpace
	// OutOfBounds: an index, offset, or strided view reaches outside
	// its backing buffer.
	OutOfBounds
	// InvalidType: an element-type tag is unsupported for the operation.
	InvalidType
	// InvalidState: an operation was invoked before its required setup
	// (convolve before set_psf, cost before setData, ...).
	InvalidState
	// Overflow: an element count or log-factorial exceeded 64/32-bit
	// capacity.
	Overflow
	// Unsupported: a rank or combination falls outside the implemented
	// subset (convolution ranks 1..3, TV ranks 1..3).
	Unsupported
)

// String renders the Kind using its canonical uppercase tag.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case ShapeMismatch:
		return "SHAPE_MISMATCH"
	case IncorrectSpace:
		return "INCORRECT_SPACE"
	case OutOfBounds:
		return "OUT_OF_BOUNDS"
	case InvalidType:
		return "INVALID_TYPE"
	case InvalidState:
		return "INVALID_STATE"
	case Overflow:
		return "OVERFLOW"
	case Unsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// Error is the concrete error type returned by every fallible
// TiPi-Go operation. Op names the failing function ("array.View",
// "convolve.SetPSF", ...); Kind classifies the failure; Cause, when
// non-nil, is wrapped so errors.Unwrap keeps working.
type Error struct {
	Op    string
	Kind  Kind
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Kind, so
// callers can write errors.Is(err, tipierr.New("", tipierr.OutOfBounds, nil)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error for op, classified as kind, optionally
// wrapping cause. A non-nil cause is captured with pkg/errors.WithStack
// so the failure site's call stack survives beyond this constructor,
// while Unwrap still reaches the original cause for errors.Is/As.
func New(op string, kind Kind, cause error) *Error {
	if cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return &Error{Op: op, Kind: kind, Cause: cause}
}

// Newf constructs an *Error for op and kind with a formatted,
// stack-carrying cause.
func Newf(op string, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Op: op, Kind: kind, Cause: pkgerrors.WithStack(fmt.Errorf(format, args...))}
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error,
// reporting ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return 0, false
}

// asError is a tiny local errors.As to avoid importing "errors" twice
// for a single-purpose helper.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
