package vector

import (
	"fmt"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
)

func vecErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("vector."+op, kind, cause)
}

// VectorSpace is the identity a ShapedVector belongs to: a shape plus
// an element kind, held by reference so two vectors can be checked for
// conformability by comparing the space pointer rather than
// re-validating dimensions on every operation.
type VectorSpace[T array.Numeric] struct {
	shp shape.Shape
}

// NewSpace creates a vector space over shp.
func NewSpace[T array.Numeric](shp shape.Shape) *VectorSpace[T] {
	return &VectorSpace[T]{shp: shp}
}

// Shape returns the space's shape.
func (s *VectorSpace[T]) Shape() shape.Shape { return s.shp }

// Create allocates a zero-filled vector belonging to this space.
func (s *VectorSpace[T]) Create() *ShapedVector[T] {
	return &ShapedVector[T]{space: s, buf: make([]T, s.shp.Number())}
}

// Wrap adopts buf as a vector belonging to this space, sharing buf.
// Fails with ShapeMismatch when len(buf) != s.Shape().Number().
func (s *VectorSpace[T]) Wrap(buf []T) (*ShapedVector[T], error) {
	if len(buf) != s.shp.Number() {
		return nil, vecErrorf("Wrap", tipierr.ShapeMismatch,
			fmt.Errorf("buffer length %d does not match space %s (%d elements)", len(buf), s.shp, s.shp.Number()))
	}
	return &ShapedVector[T]{space: s, buf: buf}, nil
}

// ShapedVector is a flat buffer of T bound to a VectorSpace identity.
type ShapedVector[T array.Numeric] struct {
	space *VectorSpace[T]
	buf   []T
}

// Space returns the vector's owning space.
func (v *ShapedVector[T]) Space() *VectorSpace[T] { return v.space }

// Shape is a shorthand for Space().Shape().
func (v *ShapedVector[T]) Shape() shape.Shape { return v.space.shp }

// Buffer exposes the underlying flat buffer; callers must not retain
// it beyond the vector's lifetime nor resize it.
func (v *ShapedVector[T]) Buffer() []T { return v.buf }

// AsArray wraps the vector's buffer as a flat *array.Array[T] sharing
// the same backing, for interop with array-level operations.
func (v *ShapedVector[T]) AsArray() (*array.Array[T], error) {
	return array.Wrap(v.buf, v.space.shp)
}

func sameSpace[T array.Numeric](op string, a, b *ShapedVector[T]) error {
	if a.space != b.space {
		return vecErrorf(op, tipierr.IncorrectSpace,
			fmt.Errorf("operands belong to different vector spaces"))
	}
	return nil
}
