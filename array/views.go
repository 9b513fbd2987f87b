package array

import (
	"fmt"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
)

// normalizeAxisIndex maps a possibly-negative index (-1 == last) to a
// 0-based position on an axis of size d, failing with OutOfBounds when
// the normalized position still falls outside [0,d).
func normalizeAxisIndex(op string, idx, d int) (int, error) {
	if idx < 0 {
		idx += d
	}
	if idx < 0 || idx >= d {
		return 0, arrErrorf(op, tipierr.OutOfBounds,
			fmt.Errorf("index %d out of range for axis of size %d", idx, d))
	}
	return idx, nil
}

// SliceDim fixes axis dim at idx (negative counts from the end,
// -1 == last), returning a rank-(r-1) view that shares the backing
// buffer.
func (a *Array[T]) SliceDim(idx, dim int) (*Array[T], error) {
	dims := a.shp.Dims()
	if dim < 0 || dim >= len(dims) {
		return nil, arrErrorf("SliceDim", tipierr.OutOfBounds,
			fmt.Errorf("axis %d out of range [0,%d)", dim, len(dims)))
	}
	fixed, err := normalizeAxisIndex("SliceDim", idx, dims[dim])
	if err != nil {
		return nil, err
	}

	base, tables := a.perAxisTables()
	base += tables[dim][fixed]

	newDims := make([]int, 0, len(dims)-1)
	newTables := make([][]int, 0, len(dims)-1)
	for k := range dims {
		if k == dim {
			continue
		}
		newDims = append(newDims, dims[k])
		newTables = append(newTables, tables[k])
	}
	if len(newDims) == 0 {
		newShp := shape.Scalar
		return &Array[T]{shp: newShp, back: &selectedBacking[T]{d: a.buf(), base: base, tables: nil}}, nil
	}
	newShp, err := shape.New(newDims...)
	if err != nil {
		return nil, err
	}
	return &Array[T]{shp: newShp, back: &selectedBacking[T]{d: a.buf(), base: base, tables: newTables}}, nil
}

// Slice fixes the last dimension at idx; equivalent to
// SliceDim(idx, Rank()-1).
func (a *Array[T]) Slice(idx int) (*Array[T], error) {
	if a.Rank() == 0 {
		return nil, arrErrorf("Slice", tipierr.Unsupported, fmt.Errorf("cannot slice a rank-0 array"))
	}
	return a.SliceDim(idx, a.Rank()-1)
}

// Range describes a strided sub-range of one axis: elements at
// First, First+Step, ..., up to and including Last (inclusive). First
// and Last may be negative, counting from the end (-1 == last
// element). An empty resulting range is an error.
type Range struct {
	First, Last, Step int
}

// normalize resolves r against an axis of size d, returning the
// normalized (first, last, step, count).
func (r Range) normalize(op string, axis, d int) (first, last, step, count int, err error) {
	step = r.Step
	if step == 0 {
		return 0, 0, 0, 0, arrErrorf(op, tipierr.InvalidArgument,
			fmt.Errorf("axis %d: step must not be 0", axis))
	}
	first, err = normalizeAxisIndex(op, r.First, d)
	if err != nil {
		return
	}
	last, err = normalizeAxisIndex(op, r.Last, d)
	if err != nil {
		return
	}
	if step > 0 {
		if last < first {
			return 0, 0, 0, 0, arrErrorf(op, tipierr.InvalidArgument,
				fmt.Errorf("axis %d: empty range (first=%d last=%d step=%d)", axis, first, last, step))
		}
		count = (last-first)/step + 1
	} else {
		if last > first {
			return 0, 0, 0, 0, arrErrorf(op, tipierr.InvalidArgument,
				fmt.Errorf("axis %d: empty range (first=%d last=%d step=%d)", axis, first, last, step))
		}
		count = (first-last)/(-step) + 1
	}
	return
}

// View returns a strided sub-view selecting ranges[k] along axis k.
// When the array's current backing carries genuine per-axis strides
// (flat or strided), the result is itself a strided view, so Order()
// can still classify it column-/row-major. Over a selected backing,
// the result composes into a new selected view.
func (a *Array[T]) View(ranges ...Range) (*Array[T], error) {
	dims := a.shp.Dims()
	if len(ranges) != len(dims) {
		return nil, arrErrorf("View", tipierr.ShapeMismatch,
			fmt.Errorf("%d ranges for rank-%d array", len(ranges), len(dims)))
	}
	newDims := make([]int, len(dims))
	firsts := make([]int, len(dims))
	steps := make([]int, len(dims))
	for k, r := range ranges {
		first, _, step, count, err := r.normalize("View", k, dims[k])
		if err != nil {
			return nil, err
		}
		newDims[k] = count
		firsts[k] = first
		steps[k] = step
	}
	newShp, err := shape.New(newDims...)
	if err != nil {
		return nil, err
	}

	switch b := a.back.(type) {
	case *flatBacking[T]:
		strides := canonicalStrides(dims)
		newOffset := 0
		newStrides := make([]int, len(dims))
		for k := range dims {
			newOffset += firsts[k] * strides[k]
			newStrides[k] = steps[k] * strides[k]
		}
		return &Array[T]{shp: newShp, back: &stridedBacking[T]{d: b.d, offset: newOffset, strides: newStrides}}, nil
	case *stridedBacking[T]:
		newOffset := b.offset
		newStrides := make([]int, len(dims))
		for k := range dims {
			newOffset += firsts[k] * b.strides[k]
			newStrides[k] = steps[k] * b.strides[k]
		}
		return &Array[T]{shp: newShp, back: &stridedBacking[T]{d: b.d, offset: newOffset, strides: newStrides}}, nil
	default:
		_, tables := a.perAxisTables()
		newTables := make([][]int, len(dims))
		for k := range dims {
			nt := make([]int, newDims[k])
			pos := firsts[k]
			for i := 0; i < newDims[k]; i++ {
				nt[i] = tables[k][pos]
				pos += steps[k]
			}
			newTables[k] = nt
		}
		base, _ := a.perAxisTables()
		return &Array[T]{shp: newShp, back: &selectedBacking[T]{d: a.buf(), base: base, tables: newTables}}, nil
	}
}

// Select returns a view selecting, for each axis k, the logical
// indices listed in sel[k] (in the given order, with repeats allowed).
// Applying Select to an already-selected view composes by indirection
// rather than nesting.
func (a *Array[T]) Select(sel ...[]int) (*Array[T], error) {
	dims := a.shp.Dims()
	if len(sel) != len(dims) {
		return nil, arrErrorf("Select", tipierr.ShapeMismatch,
			fmt.Errorf("%d selections for rank-%d array", len(sel), len(dims)))
	}
	base, tables := a.perAxisTables()
	newDims := make([]int, len(dims))
	newTables := make([][]int, len(dims))
	for k, s := range sel {
		if len(s) == 0 {
			return nil, arrErrorf("Select", tipierr.InvalidArgument,
				fmt.Errorf("axis %d: empty selection", k))
		}
		nt := make([]int, len(s))
		for i, idx := range s {
			if idx < 0 || idx >= dims[k] {
				return nil, arrErrorf("Select", tipierr.OutOfBounds,
					fmt.Errorf("axis %d: index %d out of range [0,%d)", k, idx, dims[k]))
			}
			nt[i] = tables[k][idx]
		}
		newTables[k] = nt
		newDims[k] = len(s)
	}
	newShp, err := shape.New(newDims...)
	if err != nil {
		return nil, err
	}
	return &Array[T]{shp: newShp, back: &selectedBacking[T]{d: a.buf(), base: base, tables: newTables}}, nil
}

// Roll returns a view cyclically shifted by offsets along each axis:
// element i of the result is element (i - offsets[k]) mod d of the
// source along axis k. The normalized per-axis offset is
// (d + (off mod d)) mod d; when every normalized offset is zero, Roll
// returns the original array unchanged (no new view is allocated).
func (a *Array[T]) Roll(offsets []int) (*Array[T], error) {
	dims := a.shp.Dims()
	if len(offsets) != len(dims) {
		return nil, arrErrorf("Roll", tipierr.ShapeMismatch,
			fmt.Errorf("%d offsets for rank-%d array", len(offsets), len(dims)))
	}
	norm := make([]int, len(dims))
	allZero := true
	for k, d := range dims {
		n := (d + (offsets[k] % d)) % d
		norm[k] = n
		if n != 0 {
			allZero = false
		}
	}
	if allZero {
		return a, nil
	}

	base, tables := a.perAxisTables()
	newTables := make([][]int, len(dims))
	for k, d := range dims {
		nt := make([]int, d)
		for i := 0; i < d; i++ {
			src := (i - norm[k] + d) % d
			nt[i] = tables[k][src]
		}
		newTables[k] = nt
	}
	return &Array[T]{shp: a.shp, back: &selectedBacking[T]{d: a.buf(), base: base, tables: newTables}}, nil
}
