package array

import (
	"fmt"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
)

// Numeric constrains the element types an Array may hold: the six
// numeric kinds of shape.Kind (BYTE..DOUBLE). Complex data never
// appears as a first-class Array element type; it only ever lives
// inside the fft/convolve work buffers as []complex128.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// backingKind discriminates the three runtime backing variants an
// Array can hold.
type backingKind int

const (
	kindFlat backingKind = iota
	kindStrided
	kindSelected
)

// backing is the unexported sum type over the three storage
// representations an Array can hold. Array never type-switches
// outside this file (and its sibling files in this package); every
// other package only ever sees *Array[T].
type backing[T Numeric] interface {
	kind() backingKind
	data() []T
}

// flatBacking is a contiguous, column-major, owning (or wrapped)
// buffer: index(idx) == sum(idx[k] * canonicalStride(k)).
type flatBacking[T Numeric] struct {
	d []T
}

func (b *flatBacking[T]) kind() backingKind { return kindFlat }
func (b *flatBacking[T]) data() []T         { return b.d }

// stridedBacking is an explicit (offset, per-axis strides) view into
// a shared buffer.
type stridedBacking[T Numeric] struct {
	d       []T
	offset  int
	strides []int
}

func (b *stridedBacking[T]) kind() backingKind { return kindStrided }
func (b *stridedBacking[T]) data() []T         { return b.d }

// selectedBacking addresses elements through per-axis indirection
// tables: index(idx) == base + sum_k tables[k][idx[k]]. This single
// representation captures index-list selection, range-subselection of
// an already-selected view, and cyclic rolls, by construction rather
// than by special-casing each transform.
type selectedBacking[T Numeric] struct {
	d      []T
	base   int
	tables [][]int
}

func (b *selectedBacking[T]) kind() backingKind { return kindSelected }
func (b *selectedBacking[T]) data() []T         { return b.d }

// Array is a typed, shape-aware, n-dimensional view over a buffer of
// T. See the package doc for the backing/view/ownership contract.
type Array[T Numeric] struct {
	shp  shape.Shape
	back backing[T]
}

func arrErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("array."+op, kind, cause)
}

func canonicalStrides(dims []int) []int {
	strides := make([]int, len(dims))
	s := 1
	for k, d := range dims {
		strides[k] = s
		s *= d
	}
	return strides
}

// Create allocates a fresh, zero-valued, flat, column-major Array of
// shp.
func Create[T Numeric](shp shape.Shape) *Array[T] {
	return &Array[T]{shp: shp, back: &flatBacking[T]{d: make([]T, shp.Number())}}
}

// Wrap adopts buf as a flat, column-major Array of shp, sharing buf
// (no copy). It fails with ShapeMismatch when len(buf) != shp.Number().
func Wrap[T Numeric](buf []T, shp shape.Shape) (*Array[T], error) {
	if len(buf) != shp.Number() {
		return nil, arrErrorf("Wrap", tipierr.ShapeMismatch,
			fmt.Errorf("buffer length %d does not match shape %s (%d elements)", len(buf), shp, shp.Number()))
	}
	return &Array[T]{shp: shp, back: &flatBacking[T]{d: buf}}, nil
}

// WrapStrided adopts buf as a stridden view (offset, per-axis strides,
// shp), sharing buf. It fails with OutOfBounds when any valid index
// tuple would address outside buf.
func WrapStrided[T Numeric](buf []T, offset int, strides []int, shp shape.Shape) (*Array[T], error) {
	dims := shp.Dims()
	if len(strides) != len(dims) {
		return nil, arrErrorf("WrapStrided", tipierr.ShapeMismatch,
			fmt.Errorf("%d strides for rank-%d shape", len(strides), len(dims)))
	}
	minIdx, maxIdx := offset, offset
	for k, d := range dims {
		s := strides[k]
		reach := (d - 1) * s
		if reach >= 0 {
			maxIdx += reach
		} else {
			minIdx += reach
		}
	}
	if minIdx < 0 || maxIdx >= len(buf) {
		return nil, arrErrorf("WrapStrided", tipierr.OutOfBounds,
			fmt.Errorf("reachable index range [%d,%d] outside buffer of length %d", minIdx, maxIdx, len(buf)))
	}
	st := make([]int, len(strides))
	copy(st, strides)
	return &Array[T]{shp: shp, back: &stridedBacking[T]{d: buf, offset: offset, strides: st}}, nil
}

// Shape returns the array's shape.
func (a *Array[T]) Shape() shape.Shape { return a.shp }

// Rank is a shorthand for Shape().Rank().
func (a *Array[T]) Rank() int { return a.shp.Rank() }

// IsFlat reports whether the array is a contiguous, column-major,
// fully-owning buffer.
func (a *Array[T]) IsFlat() bool {
	b, ok := a.back.(*flatBacking[T])
	return ok && len(b.d) == a.shp.Number()
}

// Order reports the storage-order classification of the array.
// Selected backings are always classified NONSPECIFIC: their
// indirection tables are not guaranteed to be monotonic.
func (a *Array[T]) Order() shape.Order {
	switch b := a.back.(type) {
	case *flatBacking[T]:
		return shape.ColumnMajor
	case *stridedBacking[T]:
		return shape.ClassifyOrder(a.shp.Dims(), b.strides)
	default:
		return shape.NonspecificOrder
	}
}

func (a *Array[T]) buf() []T { return a.back.data() }

// index computes the flat offset for idx, validating rank and bounds.
func (a *Array[T]) index(idx []int) (int, error) {
	dims := a.shp.Dims()
	if len(idx) != len(dims) {
		return 0, arrErrorf("index", tipierr.InvalidArgument,
			fmt.Errorf("%d indices for rank-%d array", len(idx), len(dims)))
	}
	for k, i := range idx {
		if i < 0 || i >= dims[k] {
			return 0, arrErrorf("index", tipierr.OutOfBounds,
				fmt.Errorf("index %d out of range [0,%d) on axis %d", i, dims[k], k))
		}
	}
	return a.unsafeIndex(idx), nil
}

// unsafeIndex computes the flat offset without bounds checking;
// callers must have already validated idx against a.shp.
func (a *Array[T]) unsafeIndex(idx []int) int {
	switch b := a.back.(type) {
	case *flatBacking[T]:
		off, stride := 0, 1
		for k, i := range idx {
			off += i * stride
			stride *= a.shp.Dimension(k)
		}
		return off
	case *stridedBacking[T]:
		off := b.offset
		for k, i := range idx {
			off += i * b.strides[k]
		}
		return off
	case *selectedBacking[T]:
		off := b.base
		for k, i := range idx {
			off += b.tables[k][i]
		}
		return off
	default:
		panic("array: unknown backing kind")
	}
}

// Get retrieves the element at idx.
func (a *Array[T]) Get(idx ...int) (T, error) {
	var zero T
	off, err := a.index(idx)
	if err != nil {
		return zero, err
	}
	return a.buf()[off], nil
}

// Set assigns v at idx.
func (a *Array[T]) Set(v T, idx ...int) error {
	off, err := a.index(idx)
	if err != nil {
		return err
	}
	a.buf()[off] = v
	return nil
}

// perAxisTables derives, for every axis, the address contribution of
// each logical index relative to the array's shared data buffer, plus
// a scalar base offset: index(idx) == base + sum_k tables[k][idx[k]].
// This single decomposition is what lets View, Select, and Roll share
// one composition routine regardless of the current backing kind.
func (a *Array[T]) perAxisTables() (base int, tables [][]int) {
	dims := a.shp.Dims()
	switch b := a.back.(type) {
	case *flatBacking[T]:
		strides := canonicalStrides(dims)
		tables = make([][]int, len(dims))
		for k, d := range dims {
			t := make([]int, d)
			for i := 0; i < d; i++ {
				t[i] = i * strides[k]
			}
			tables[k] = t
		}
		return 0, tables
	case *stridedBacking[T]:
		tables = make([][]int, len(dims))
		for k, d := range dims {
			t := make([]int, d)
			for i := 0; i < d; i++ {
				t[i] = i * b.strides[k]
			}
			tables[k] = t
		}
		return b.offset, tables
	case *selectedBacking[T]:
		return b.base, b.tables
	default:
		panic("array: unknown backing kind")
	}
}
