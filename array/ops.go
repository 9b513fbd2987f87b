package array

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// iterate invokes visit(idx, off) once per valid index tuple, in
// column-major order (first axis fastest) unless the array's declared
// order is row-major, in which case it iterates last-axis-fastest.
// Fill/map/scan pick column-major whenever the order is flat or
// nonspecific; only a genuinely row-major stridden view iterates the
// other way.
func (a *Array[T]) iterate(visit func(idx []int, off int)) {
	dims := a.shp.Dims()
	if len(dims) == 0 {
		visit(nil, a.unsafeIndex(nil))
		return
	}
	idx := make([]int, len(dims))
	if a.Order() == shape.RowMajor {
		for {
			visit(idx, a.unsafeIndex(idx))
			k := len(dims) - 1
			for k >= 0 {
				idx[k]++
				if idx[k] < dims[k] {
					break
				}
				idx[k] = 0
				k--
			}
			if k < 0 {
				return
			}
		}
	}
	for {
		visit(idx, a.unsafeIndex(idx))
		k := 0
		for k < len(dims) {
			idx[k]++
			if idx[k] < dims[k] {
				break
			}
			idx[k] = 0
			k++
		}
		if k == len(dims) {
			return
		}
	}
}

// Fill sets every element to v.
func (a *Array[T]) Fill(v T) {
	buf := a.buf()
	a.iterate(func(_ []int, off int) { buf[off] = v })
}

// FillFunc sets every element to generator(idx), where idx is the
// (shared, do-not-retain) index tuple being visited.
func (a *Array[T]) FillFunc(generator func(idx []int) T) {
	buf := a.buf()
	a.iterate(func(idx []int, off int) { buf[off] = generator(idx) })
}

// Increment adds v to every element.
func (a *Array[T]) Increment(v T) {
	buf := a.buf()
	a.iterate(func(_ []int, off int) { buf[off] += v })
}

// Decrement subtracts v from every element.
func (a *Array[T]) Decrement(v T) {
	buf := a.buf()
	a.iterate(func(_ []int, off int) { buf[off] -= v })
}

// Scale multiplies every element by v.
func (a *Array[T]) Scale(v T) {
	buf := a.buf()
	a.iterate(func(_ []int, off int) { buf[off] *= v })
}

// Map replaces every element x with f(x).
func (a *Array[T]) Map(f func(T) T) {
	buf := a.buf()
	a.iterate(func(_ []int, off int) { buf[off] = f(buf[off]) })
}

// Scan replaces every element with the running fold of scanner over
// the iteration order, i.e. a prefix scan: acc starts at the zero
// value of T, and element i becomes scanner(acc, x_i) which also
// becomes the next acc.
func (a *Array[T]) Scan(scanner func(acc, v T) T) {
	buf := a.buf()
	var acc T
	a.iterate(func(_ []int, off int) {
		acc = scanner(acc, buf[off])
		buf[off] = acc
	})
}

// Min returns the smallest element. Fails with InvalidState on an
// empty array (rank 0 with 0 elements never occurs since Shape.New
// rejects zero dimensions, so this only triggers for the degenerate
// zero-length flatBacking produced by Wrap on an empty buffer, which
// Wrap itself already rejects; Min therefore never errors in practice
// but keeps the signature uniform with Max/GetMinAndMax).
func (a *Array[T]) Min() (T, error) {
	lo, _, err := a.GetMinAndMax()
	return lo, err
}

// Max returns the largest element.
func (a *Array[T]) Max() (T, error) {
	_, hi, err := a.GetMinAndMax()
	return hi, err
}

// GetMinAndMax returns both the smallest and largest elements in a
// single pass.
func (a *Array[T]) GetMinAndMax() (lo, hi T, err error) {
	if a.shp.Number() == 0 {
		return lo, hi, arrErrorf("GetMinAndMax", tipierr.InvalidState, fmt.Errorf("array has no elements"))
	}
	first := true
	a.iterate(func(_ []int, off int) {
		v := a.buf()[off]
		if first {
			lo, hi = v, v
			first = false
			return
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	})
	return lo, hi, nil
}

// Sum returns the sum of all elements, widened to float64. When the
// array is flat, the reduction dispatches to gonum/floats for a
// contiguous fast path; strided/selected backings fall back to the
// generic iteration order.
func (a *Array[T]) Sum() float64 {
	if fb, ok := a.back.(*flatBacking[T]); ok {
		return floats.Sum(toFloat64Slice(fb.d))
	}
	var sum float64
	a.iterate(func(_ []int, off int) { sum += float64(a.buf()[off]) })
	return sum
}

// Average returns the arithmetic mean of all elements, widened to
// float64.
func (a *Array[T]) Average() float64 {
	if fb, ok := a.back.(*flatBacking[T]); ok && len(fb.d) > 0 {
		return stat.Mean(toFloat64Slice(fb.d), nil)
	}
	n := a.shp.Number()
	if n == 0 {
		return math.NaN()
	}
	return a.Sum() / float64(n)
}

func toFloat64Slice[T Numeric](d []T) []float64 {
	out := make([]float64, len(d))
	for i, v := range d {
		out[i] = float64(v)
	}
	return out
}

// eachIndex enumerates every index tuple over dims in plain
// column-major order, reusing the same backing slice across calls so
// cross-array operations (Copy, Assign, AssignConvert) can address two
// arrays by the identical logical position rather than by matching
// iteration order (which may legitimately differ between the two
// arrays' declared storage orders).
func eachIndex(dims []int, visit func(idx []int)) {
	if len(dims) == 0 {
		visit(nil)
		return
	}
	idx := make([]int, len(dims))
	for {
		visit(idx)
		k := 0
		for k < len(dims) {
			idx[k]++
			if idx[k] < dims[k] {
				break
			}
			idx[k] = 0
			k++
		}
		if k == len(dims) {
			return
		}
	}
}

// Copy returns a fresh, owning, flat, column-major Array with the same
// shape and element values, never aliasing the source's backing.
func (a *Array[T]) Copy() *Array[T] {
	out := Create[T](a.shp)
	dst := out.buf()
	eachIndex(a.shp.Dims(), func(idx []int) {
		dst[out.unsafeIndex(idx)] = a.buf()[a.unsafeIndex(idx)]
	})
	return out
}

// Assign copies src into a element-wise by logical position, failing
// with ShapeMismatch when the shapes differ.
func (a *Array[T]) Assign(src *Array[T]) error {
	if !a.shp.Equals(src.shp) {
		return arrErrorf("Assign", tipierr.ShapeMismatch,
			fmt.Errorf("destination shape %s != source shape %s", a.shp, src.shp))
	}
	dst := a.buf()
	eachIndex(a.shp.Dims(), func(idx []int) {
		dst[a.unsafeIndex(idx)] = src.buf()[src.unsafeIndex(idx)]
	})
	return nil
}

// AssignConvert copies src into dst element-wise by logical position,
// converting U to T, failing with ShapeMismatch when shapes differ.
// This is the cross-type counterpart of Assign, expressed as a free
// function since Go methods cannot introduce a second type parameter.
func AssignConvert[T, U Numeric](dst *Array[T], src *Array[U]) error {
	if !dst.shp.Equals(src.shp) {
		return arrErrorf("AssignConvert", tipierr.ShapeMismatch,
			fmt.Errorf("destination shape %s != source shape %s", dst.shp, src.shp))
	}
	out := dst.buf()
	eachIndex(dst.shp.Dims(), func(idx []int) {
		out[dst.unsafeIndex(idx)] = T(src.buf()[src.unsafeIndex(idx)])
	})
	return nil
}

// Flatten returns a contiguous, column-major buffer holding a's
// elements. When a is already flat and forceCopy is false, the
// backing buffer itself is returned (no allocation); otherwise a
// freshly allocated buffer is built by iterating a in column-major
// order. The output ordering is always canonical regardless of a's
// own declared order.
func (a *Array[T]) Flatten(forceCopy bool) []T {
	if fb, ok := a.back.(*flatBacking[T]); ok && !forceCopy && len(fb.d) == a.shp.Number() {
		return fb.d
	}
	out := make([]T, a.shp.Number())
	dims := a.shp.Dims()
	idx := make([]int, len(dims))
	for i := range out {
		out[i] = a.buf()[a.unsafeIndex(idx)]
		k := 0
		for k < len(dims) {
			idx[k]++
			if idx[k] < dims[k] {
				break
			}
			idx[k] = 0
			k++
		}
	}
	return out
}

// As1D returns a rank-1 view (or flattened copy, when the current
// backing cannot express a rank-1 reshape as a view) of a.
func (a *Array[T]) As1D() (*Array[T], error) {
	return a.Reshape(shape.MustNew(a.shp.Number()))
}

// Reshape returns a view (or, when the current backing does not admit
// a pure reshape, a flattened copy) with the given shape, failing with
// ShapeMismatch when the element counts differ.
func (a *Array[T]) Reshape(newShape shape.Shape) (*Array[T], error) {
	if newShape.Number() != a.shp.Number() {
		return nil, arrErrorf("Reshape", tipierr.ShapeMismatch,
			fmt.Errorf("new shape %s has %d elements, source has %d", newShape, newShape.Number(), a.shp.Number()))
	}
	if fb, ok := a.back.(*flatBacking[T]); ok && len(fb.d) == a.shp.Number() {
		return &Array[T]{shp: newShape, back: &flatBacking[T]{d: fb.d}}, nil
	}
	flat := a.Flatten(true)
	return &Array[T]{shp: newShape, back: &flatBacking[T]{d: flat}}, nil
}

// MoveDim cyclically permutes the dimension at position src to
// position dst (0-based), returning a fresh, contiguous array (never
// a view, since the general permutation cannot always be expressed as
// a single affine stride transform over the source's current
// backing).
func (a *Array[T]) MoveDim(src, dst int) (*Array[T], error) {
	dims := a.shp.Dims()
	r := len(dims)
	if src < 0 || src >= r || dst < 0 || dst >= r {
		return nil, arrErrorf("MoveDim", tipierr.OutOfBounds,
			fmt.Errorf("src=%d dst=%d out of range [0,%d)", src, dst, r))
	}
	perm := make([]int, r)
	for i := range perm {
		perm[i] = i
	}
	// Remove src and reinsert it at dst: a cyclic permutation of the
	// single affected run between src and dst.
	v := perm[src]
	perm = append(perm[:src], perm[src+1:]...)
	perm = append(perm[:dst], append([]int{v}, perm[dst:]...)...)

	newDims := make([]int, r)
	for i, p := range perm {
		newDims[i] = dims[p]
	}
	newShp, err := shape.New(newDims...)
	if err != nil {
		return nil, err
	}
	out := Create[T](newShp)
	dstBuf := out.buf()
	srcIdx := make([]int, r)
	eachIndex(newDims, func(idx []int) {
		for k, p := range perm {
			srcIdx[p] = idx[k]
		}
		dstBuf[out.unsafeIndex(idx)] = a.buf()[a.unsafeIndex(srcIdx)]
	})
	return out, nil
}
