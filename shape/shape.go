// Package shape defines the immutable dimension vector shared by the
// array and vector packages, plus the small set of global constants
// (storage-order tags, element-type tags, machine epsilons) exposed
// by the core.
//
// A Shape is a value type: two shapes with the same dimensions in the
// same order are equal, and construction rejects non-positive
// dimensions and overflowing products up front so every downstream
// package can assume a Shape is always valid.
package shape

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/internal/tipierr"
)

// MaxRank is the highest array rank the core supports.
const MaxRank = 9

// Order classifies how a view's strides traverse its backing buffer.
type Order int

const (
	// NonspecificOrder: neither column- nor row-major; strides are
	// not monotonic in either direction.
	NonspecificOrder Order = 0
	// ColumnMajor: the first index varies fastest. Preferred on ties.
	ColumnMajor Order = 1
	// RowMajor: the last index varies fastest.
	RowMajor Order = 2
)

// String renders the Order tag.
func (o Order) String() string {
	switch o {
	case ColumnMajor:
		return "COLUMN_MAJOR"
	case RowMajor:
		return "ROW_MAJOR"
	default:
		return "NONSPECIFIC_ORDER"
	}
}

// Kind is the element-type tag used to describe a buffer's numeric
// representation independently of any particular Array[T] instance.
type Kind int

const (
	Byte Kind = iota
	Short
	Int
	Long
	Float
	Double
	Char
	Boolean
	Object
	Void Kind = -1
)

// ByteSize returns the fixed element width for numeric kinds.
func (k Kind) ByteSize() int {
	switch k {
	case Byte:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Byte:
		return "BYTE"
	case Short:
		return "SHORT"
	case Int:
		return "INT"
	case Long:
		return "LONG"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Char:
		return "CHAR"
	case Boolean:
		return "BOOLEAN"
	case Object:
		return "OBJECT"
	default:
		return "VOID"
	}
}

// Machine epsilons, computed once at package init as the smallest
// positive x such that 1 + x/2 != 1.
var (
	FloatEpsilon  float32
	DoubleEpsilon float64
)

func init() {
	fe := float32(1)
	for float32(1)+fe/4 != 1 {
		fe /= 2
	}
	FloatEpsilon = fe

	de := float64(1)
	for 1+de/4 != 1 {
		de /= 2
	}
	DoubleEpsilon = de
}

// Shape is an immutable, ordered sequence of positive dimensions with
// a cached element count.
type Shape struct {
	dims  []int
	count int64
}

// shapeErrorf wraps an underlying error with a Shape-package op tag.
func shapeErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("shape."+op, kind, cause)
}

// New constructs a Shape from explicit dimensions. It fails with
// InvalidArgument when any dimension is <= 0, with Overflow when the
// running 64-bit product would overflow, and again with Overflow when
// the product does not fit in a positive 32-bit integer (the array
// package indexes flat buffers with int, but TiPi's on-disk contract
// and C-level FFT plans assume 32-bit-safe counts).
func New(dims ...int) (Shape, error) {
	if len(dims) > MaxRank {
		return Shape{}, shapeErrorf("New", tipierr.Unsupported,
			fmt.Errorf("rank %d exceeds max rank %d", len(dims), MaxRank))
	}
	var count int64 = 1
	cp := make([]int, len(dims))
	for i, d := range dims {
		if d <= 0 {
			return Shape{}, shapeErrorf("New", tipierr.InvalidArgument,
				fmt.Errorf("dimension %d (index %d) must be > 0", d, i))
		}
		if d > math.MaxInt32 {
			return Shape{}, shapeErrorf("New", tipierr.Overflow,
				fmt.Errorf("dimension %d (index %d) exceeds int32 range", d, i))
		}
		cp[i] = d
		next := count * int64(d)
		if count != 0 && next/count != int64(d) {
			return Shape{}, shapeErrorf("New", tipierr.Overflow,
				fmt.Errorf("product of dimensions overflows int64"))
		}
		count = next
	}
	if count > math.MaxInt32 {
		return Shape{}, shapeErrorf("New", tipierr.Overflow,
			fmt.Errorf("total element count %d exceeds int32 range", count))
	}
	return Shape{dims: cp, count: count}, nil
}

// MustNew is New but panics on error; reserved for internal callers
// building shapes from already-validated data (e.g. after a Reshape
// whose element count was verified against the source Shape).
func MustNew(dims ...int) Shape {
	s, err := New(dims...)
	if err != nil {
		panic(err)
	}
	return s
}

// Scalar is the distinguished rank-0 shape with one element.
var Scalar = Shape{dims: nil, count: 1}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s.dims) }

// Number returns the total element count, equal to the product of
// all dimensions (1 for the scalar shape).
func (s Shape) Number() int { return int(s.count) }

// Dimension returns the 0-based k-th dimension.
func (s Shape) Dimension(k int) int {
	if k < 0 || k >= len(s.dims) {
		panic(shapeErrorf("Dimension", tipierr.OutOfBounds,
			fmt.Errorf("axis %d out of range [0,%d)", k, len(s.dims))))
	}
	return s.dims[k]
}

// CopyDimensions returns a fresh copy of the dimension list so callers
// cannot mutate the Shape through an aliased slice.
func (s Shape) CopyDimensions() []int {
	out := make([]int, len(s.dims))
	copy(out, s.dims)
	return out
}

// Dims returns the shape's own dimension slice without copying it,
// for callers that need read-only access; the returned slice must not
// be mutated.
func (s Shape) Dims() []int { return s.dims }

// Equals reports whether s and t have identical dimensions in the
// same order. Equality is element-wise and identity-insensitive.
func (s Shape) Equals(t Shape) bool {
	if len(s.dims) != len(t.dims) {
		return false
	}
	for i := range s.dims {
		if s.dims[i] != t.dims[i] {
			return false
		}
	}
	return true
}

// String renders the Shape as e.g. "(3,4,2)".
func (s Shape) String() string {
	if len(s.dims) == 0 {
		return "()"
	}
	out := "("
	for i, d := range s.dims {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", d)
	}
	return out + ")"
}

// ClassifyOrder determines the storage-order tag for a stridden view
// with the given dimensions and strides: column-major if
// |s[k-1]| <= |s[k]| for all k>=1, row-major if |s[k-1]| >= |s[k]|
// for all k>=1, nonspecific otherwise. Column-major is preferred on
// ties (e.g. rank <= 1, or every stride equal).
func ClassifyOrder(dims, strides []int) Order {
	if len(dims) <= 1 {
		return ColumnMajor
	}
	isCol, isRow := true, true
	for k := 1; k < len(strides); k++ {
		a, b := abs(strides[k-1]), abs(strides[k])
		if a > b {
			isCol = false
		}
		if a < b {
			isRow = false
		}
	}
	switch {
	case isCol:
		return ColumnMajor
	case isRow:
		return RowMajor
	default:
		return NonspecificOrder
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
