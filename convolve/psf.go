package convolve

import (
	"fmt"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
)

// SetPSF adjusts psf to the operator's work shape (padding or
// cropping, centered), optionally normalizes it to unit sum, rolls it
// so that offset becomes the array origin, and caches its forward
// transform as the MTF. The MTF is multiplied by 1/N (N the number of
// work-space elements) so that the unnormalized Forward/Backward pair
// used by Convolve needs no further scaling.
func (op *Operator) SetPSF(psf *array.Array[float64], offset []int, normalize bool) error {
	adjusted, err := adjustToWorkShape(psf, op.workShape)
	if err != nil {
		return err
	}
	return op.setPSFWorkShape(adjusted, offset, normalize)
}

// SetPSFVector is SetPSF for a psf array already sized to the work
// shape; it skips the pad/crop adjustment.
func (op *Operator) SetPSFVector(psf *array.Array[float64], offset []int, normalize bool) error {
	if !psf.Shape().Equals(op.workShape) {
		return cnvlErrorf("SetPSFVector", tipierr.ShapeMismatch,
			fmt.Errorf("psf shape %s does not match work shape %s", psf.Shape(), op.workShape))
	}
	return op.setPSFWorkShape(psf, offset, normalize)
}

// adjustToWorkShape extracts psf into the work shape, centered: axes
// where the work shape is larger are zero-padded, axes where it is
// smaller are cropped, combined in a single array.Extract since a psf
// need not grow or shrink consistently across every axis.
func adjustToWorkShape(psf *array.Array[float64], workShape shape.Shape) (*array.Array[float64], error) {
	if psf.Shape().Equals(workShape) {
		return psf, nil
	}
	srcDims := psf.Shape().Dims()
	dstDims := workShape.Dims()
	if len(srcDims) != len(dstDims) {
		return nil, cnvlErrorf("SetPSF", tipierr.ShapeMismatch,
			fmt.Errorf("psf rank %d does not match work rank %d", len(srcDims), len(dstDims)))
	}
	offset := make([]int, len(dstDims))
	for k := range dstDims {
		offset[k] = dstDims[k]/2 - srcDims[k]/2
	}
	return array.Extract(psf, workShape, offset, 0)
}

func (op *Operator) setPSFWorkShape(psf *array.Array[float64], offset []int, normalize bool) error {
	r := op.workShape.Rank()
	if len(offset) != r {
		return cnvlErrorf("SetPSF", tipierr.ShapeMismatch,
			fmt.Errorf("%d offsets for rank-%d work shape", len(offset), r))
	}

	work := psf.Copy()
	if normalize {
		sum := work.Sum()
		if sum != 0 {
			work.Scale(1 / sum)
		}
	}

	shifted := make([]int, r)
	dims := op.workShape.Dims()
	for k, o := range offset {
		shifted[k] = ((dims[k] - o) % dims[k] + dims[k]) % dims[k]
	}
	rolled, err := work.Roll(shifted)
	if err != nil {
		return err
	}

	flat := rolled.Flatten(true)
	n := op.workShape.Number()
	for i := 0; i < n; i++ {
		op.mtf[2*i] = flat[i]
		op.mtf[2*i+1] = 0
	}
	if err := op.engine.Forward(op.mtf); err != nil {
		return err
	}
	scale := 1 / float64(n)
	for i := range op.mtf {
		op.mtf[i] *= scale
	}
	op.hasPSF = true
	op.logger.Debugf("convolve: cached MTF for psf shape %s normalize=%v", psf.Shape(), normalize)
	return nil
}
