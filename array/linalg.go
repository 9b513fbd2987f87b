package array

import (
	"fmt"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
)

// Dot contracts the last axis of m (treated as a "matrix": all axes
// but the last are batch axes) against the 1-D vector, producing an
// array of m's leading dimensions. It fails with ShapeMismatch unless
// vector is rank 1 and its length equals m's last dimension.
func (m *Array[T]) Dot(vector *Array[T]) (*Array[T], error) {
	dims := m.shp.Dims()
	if len(dims) == 0 {
		return nil, arrErrorf("Dot", tipierr.Unsupported, fmt.Errorf("matrix operand must have rank >= 1"))
	}
	if vector.Rank() != 1 {
		return nil, arrErrorf("Dot", tipierr.ShapeMismatch, fmt.Errorf("vector operand must be rank 1, got rank %d", vector.Rank()))
	}
	k := dims[len(dims)-1]
	if vector.shp.Dimension(0) != k {
		return nil, arrErrorf("Dot", tipierr.ShapeMismatch,
			fmt.Errorf("matrix last dimension %d != vector length %d", k, vector.shp.Dimension(0)))
	}
	outDims := dims[:len(dims)-1]
	var outShp shape.Shape
	var err error
	if len(outDims) == 0 {
		outShp = shape.Scalar
	} else if outShp, err = shape.New(outDims...); err != nil {
		return nil, err
	}
	out := Create[T](outShp)
	outBuf := out.buf()
	vbuf := vector.buf()

	idx := make([]int, len(dims))
	eachIndex(outDims, func(oidx []int) {
		copy(idx, oidx)
		var acc T
		for i := 0; i < k; i++ {
			idx[len(dims)-1] = i
			acc += m.buf()[m.unsafeIndex(idx)] * vbuf[vector.unsafeIndex([]int{i})]
		}
		outBuf[out.unsafeIndex(oidx)] = acc
	})
	return out, nil
}

// Outer returns the outer product of a and vector (rank 1), appending
// one dimension of vector's length to a's shape.
func (a *Array[T]) Outer(vector *Array[T]) (*Array[T], error) {
	if vector.Rank() != 1 {
		return nil, arrErrorf("Outer", tipierr.ShapeMismatch, fmt.Errorf("vector operand must be rank 1, got rank %d", vector.Rank()))
	}
	n := vector.shp.Dimension(0)
	newDims := append(append([]int{}, a.shp.Dims()...), n)
	outShp, err := shape.New(newDims...)
	if err != nil {
		return nil, err
	}
	out := Create[T](outShp)
	outBuf := out.buf()
	vbuf := vector.buf()
	r := a.Rank()
	eachIndex(outShp.Dims(), func(idx []int) {
		lhs := a.buf()[a.unsafeIndex(idx[:r])]
		rhs := vbuf[vector.unsafeIndex([]int{idx[r]})]
		outBuf[out.unsafeIndex(idx)] = lhs * rhs
	})
	return out, nil
}

// DotWiden is the cross-type counterpart of Dot, contracting m's last
// axis against vector (possibly of a different element kind) and
// always widening the result to float64, since Go's Numeric set spans
// both integer and floating kinds with no total order between them.
func DotWiden[A, B Numeric](m *Array[A], vector *Array[B]) (*Array[float64], error) {
	dims := m.shp.Dims()
	if len(dims) == 0 {
		return nil, arrErrorf("DotWiden", tipierr.Unsupported, fmt.Errorf("matrix operand must have rank >= 1"))
	}
	if vector.Rank() != 1 {
		return nil, arrErrorf("DotWiden", tipierr.ShapeMismatch, fmt.Errorf("vector operand must be rank 1, got rank %d", vector.Rank()))
	}
	k := dims[len(dims)-1]
	if vector.shp.Dimension(0) != k {
		return nil, arrErrorf("DotWiden", tipierr.ShapeMismatch,
			fmt.Errorf("matrix last dimension %d != vector length %d", k, vector.shp.Dimension(0)))
	}
	outDims := dims[:len(dims)-1]
	var outShp shape.Shape
	var err error
	if len(outDims) == 0 {
		outShp = shape.Scalar
	} else if outShp, err = shape.New(outDims...); err != nil {
		return nil, err
	}
	out := Create[float64](outShp)
	outBuf := out.buf()
	vbuf := vector.buf()

	idx := make([]int, len(dims))
	eachIndex(outDims, func(oidx []int) {
		copy(idx, oidx)
		var acc float64
		for i := 0; i < k; i++ {
			idx[len(dims)-1] = i
			acc += float64(m.buf()[m.unsafeIndex(idx)]) * float64(vbuf[vector.unsafeIndex([]int{i})])
		}
		outBuf[out.unsafeIndex(oidx)] = acc
	})
	return out, nil
}
