package vector

import (
	"math"

	"github.com/emmt/tipi-go/array"
	"gonum.org/v1/gonum/floats"
)

// Fill sets every component to v.
func (v *ShapedVector[T]) Fill(x T) {
	for i := range v.buf {
		v.buf[i] = x
	}
}

// Scale multiplies every component by x, in place.
func (v *ShapedVector[T]) Scale(x T) {
	for i := range v.buf {
		v.buf[i] *= x
	}
}

// Copy returns a fresh vector in the same space with the same values.
func (v *ShapedVector[T]) Copy() *ShapedVector[T] {
	out := make([]T, len(v.buf))
	copy(out, v.buf)
	return &ShapedVector[T]{space: v.space, buf: out}
}

// Assign copies src's components into v, failing with IncorrectSpace
// when the two vectors do not share a space.
func (v *ShapedVector[T]) Assign(src *ShapedVector[T]) error {
	if err := sameSpace("Assign", v, src); err != nil {
		return err
	}
	copy(v.buf, src.buf)
	return nil
}

// Multiply sets v[i] *= other[i] component-wise.
func (v *ShapedVector[T]) Multiply(other *ShapedVector[T]) error {
	if err := sameSpace("Multiply", v, other); err != nil {
		return err
	}
	for i := range v.buf {
		v.buf[i] *= other.buf[i]
	}
	return nil
}

// Dot returns the inner product of v and other, widened to float64.
// When T is float64 the contraction dispatches to gonum/floats.
func Dot[T array.Numeric](v, other *ShapedVector[T]) (float64, error) {
	if err := sameSpace("Dot", v, other); err != nil {
		return 0, err
	}
	if av, ok := any(v.buf).([]float64); ok {
		bv := any(other.buf).([]float64)
		return floats.Dot(av, bv), nil
	}
	var sum float64
	for i, x := range v.buf {
		sum += float64(x) * float64(other.buf[i])
	}
	return sum, nil
}

// Norm2 returns the Euclidean (L2) norm of v.
func (v *ShapedVector[T]) Norm2() float64 {
	if fv, ok := any(v.buf).([]float64); ok {
		return floats.Norm(fv, 2)
	}
	var sum float64
	for _, x := range v.buf {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}

// Norm1 returns the L1 (sum of absolute values) norm of v.
func (v *ShapedVector[T]) Norm1() float64 {
	if fv, ok := any(v.buf).([]float64); ok {
		return floats.Norm(fv, 1)
	}
	var sum float64
	for _, x := range v.buf {
		sum += math.Abs(float64(x))
	}
	return sum
}

// NormInf returns the maximum absolute component of v.
func (v *ShapedVector[T]) NormInf() float64 {
	if fv, ok := any(v.buf).([]float64); ok {
		return floats.Norm(fv, math.Inf(1))
	}
	var m float64
	for _, x := range v.buf {
		a := math.Abs(float64(x))
		if a > m {
			m = a
		}
	}
	return m
}

// AddScaled computes v += alpha*x, failing with IncorrectSpace when v
// and x do not share a space.
func (v *ShapedVector[T]) AddScaled(alpha T, x *ShapedVector[T]) error {
	if err := sameSpace("AddScaled", v, x); err != nil {
		return err
	}
	for i, xi := range x.buf {
		v.buf[i] += alpha * xi
	}
	return nil
}

// Combine sets v = alpha*x + beta*y (a linear combination of two
// vectors sharing v's space), failing with IncorrectSpace when any
// pair of operands does not share a space.
func (v *ShapedVector[T]) Combine(alpha T, x *ShapedVector[T], beta T, y *ShapedVector[T]) error {
	if err := sameSpace("Combine", v, x); err != nil {
		return err
	}
	if err := sameSpace("Combine", v, y); err != nil {
		return err
	}
	for i := range v.buf {
		v.buf[i] = alpha*x.buf[i] + beta*y.buf[i]
	}
	return nil
}
