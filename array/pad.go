package array

import (
	"fmt"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
)

// Extract returns a fresh array of outShape built by reading a through
// offset: output index idx corresponds to source index idx-offset[k]
// on each axis k. Output positions whose corresponding source index
// falls outside a's bounds are filled with value. This single routine
// is the shared workhorse behind Pad and Crop: padding is extraction
// into a larger shape at a positive offset, cropping is extraction
// into a smaller shape at a (possibly zero) offset, both expressed as
// the same "place the source sub-box inside the destination box"
// operation.
func Extract[T Numeric](a *Array[T], outShape shape.Shape, offset []int, value T) (*Array[T], error) {
	srcDims := a.shp.Dims()
	dstDims := outShape.Dims()
	if len(offset) != len(srcDims) || len(dstDims) != len(srcDims) {
		return nil, arrErrorf("Extract", tipierr.ShapeMismatch,
			fmt.Errorf("rank mismatch: source rank %d, destination rank %d, %d offsets", len(srcDims), len(dstDims), len(offset)))
	}

	out := Create[T](outShape)
	out.Fill(value)
	if out.shp.Number() == 0 {
		return out, nil
	}
	dstBuf := out.buf()
	srcIdx := make([]int, len(srcDims))
	eachIndex(dstDims, func(idx []int) {
		inBounds := true
		for k, d := range srcDims {
			s := idx[k] - offset[k]
			if s < 0 || s >= d {
				inBounds = false
				break
			}
			srcIdx[k] = s
		}
		if inBounds {
			dstBuf[out.unsafeIndex(idx)] = a.buf()[a.unsafeIndex(srcIdx)]
		}
	})
	return out, nil
}

// centeredOffset computes, for each axis, floor(outer/2) - floor(inner/2),
// TiPi-Go's default alignment for Pad/Crop when the caller does not
// specify an explicit offset: the source box is centered inside the
// destination box, biased towards the lower-index side on odd
// differences.
func centeredOffset(outer, inner []int) []int {
	offset := make([]int, len(outer))
	for k := range outer {
		offset[k] = outer[k]/2 - inner[k]/2
	}
	return offset
}

// Pad returns a with its shape enlarged to outShape, centered, filling
// newly introduced border elements with the zero value of T. Fails
// with InvalidArgument when any output dimension is smaller than the
// corresponding source dimension.
func (a *Array[T]) Pad(outShape shape.Shape) (*Array[T], error) {
	var zero T
	return a.PadValue(outShape, zero)
}

// PadValue is Pad with an explicit fill value for newly introduced
// border elements.
func (a *Array[T]) PadValue(outShape shape.Shape, value T) (*Array[T], error) {
	if err := checkGrows("Pad", a.shp.Dims(), outShape.Dims()); err != nil {
		return nil, err
	}
	offset := centeredOffset(outShape.Dims(), a.shp.Dims())
	return Extract(a, outShape, offset, value)
}

// PadOffset is Pad with an explicit per-axis offset instead of
// centering.
func (a *Array[T]) PadOffset(outShape shape.Shape, offset []int, value T) (*Array[T], error) {
	if err := checkGrows("Pad", a.shp.Dims(), outShape.Dims()); err != nil {
		return nil, err
	}
	return Extract(a, outShape, offset, value)
}

// Crop returns a with its shape reduced to outShape, centered. Fails
// with InvalidArgument when any output dimension is larger than the
// corresponding source dimension.
func (a *Array[T]) Crop(outShape shape.Shape) (*Array[T], error) {
	if err := checkShrinks("Crop", a.shp.Dims(), outShape.Dims()); err != nil {
		return nil, err
	}
	offset := centeredOffset(a.shp.Dims(), outShape.Dims())
	// Extract's offset convention is dst = src + offset, but Crop walks
	// the smaller destination over the larger source, so offset is
	// applied with the opposite sign relative to PadOffset's usage.
	neg := make([]int, len(offset))
	for k, o := range offset {
		neg[k] = -o
	}
	var zero T
	return Extract(a, outShape, neg, zero)
}

// CropOffset is Crop with an explicit per-axis source offset instead
// of centering: output idx reads source idx+offset.
func (a *Array[T]) CropOffset(outShape shape.Shape, offset []int) (*Array[T], error) {
	if err := checkShrinks("Crop", a.shp.Dims(), outShape.Dims()); err != nil {
		return nil, err
	}
	neg := make([]int, len(offset))
	for k, o := range offset {
		neg[k] = -o
	}
	var zero T
	return Extract(a, outShape, neg, zero)
}

func checkGrows(op string, inner, outer []int) error {
	if len(inner) != len(outer) {
		return arrErrorf(op, tipierr.ShapeMismatch,
			fmt.Errorf("rank mismatch: %d vs %d", len(inner), len(outer)))
	}
	for k := range inner {
		if outer[k] < inner[k] {
			return arrErrorf(op, tipierr.InvalidArgument,
				fmt.Errorf("axis %d: output dimension %d smaller than source dimension %d", k, outer[k], inner[k]))
		}
	}
	return nil
}

func checkShrinks(op string, outer, inner []int) error {
	if len(inner) != len(outer) {
		return arrErrorf(op, tipierr.ShapeMismatch,
			fmt.Errorf("rank mismatch: %d vs %d", len(inner), len(outer)))
	}
	for k := range inner {
		if inner[k] > outer[k] {
			return arrErrorf(op, tipierr.InvalidArgument,
				fmt.Errorf("axis %d: output dimension %d larger than source dimension %d", k, inner[k], outer[k]))
		}
	}
	return nil
}
