package convolve

import (
	"fmt"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/vector"
)

func wrongPhase(op string, got phase) error {
	return cnvlErrorf(op, tipierr.InvalidState, fmt.Errorf("called out of sequence (phase=%d)", got))
}

// Push copies src into the work buffer, zero-filling outside the
// relevant region and zeroing every imaginary part. When adjoint is
// false, src belongs to the input space and is placed at offInp
// (operator S); when true, src belongs to the output space and is
// placed at offOut (operator R^T).
func (op *Operator) Push(src *vector.ShapedVector[float64], adjoint bool) error {
	if op.ph != phaseIdle {
		return wrongPhase("Push", op.ph)
	}
	var region []int
	var offset []int
	var want *vector.VectorSpace[float64]
	if !adjoint {
		region = op.inputSpace.Shape().Dims()
		offset = op.offInp
		want = op.inputSpace
	} else {
		region = op.outputSpace.Shape().Dims()
		offset = op.offOut
		want = op.outputSpace
	}
	if src.Space() != want {
		return cnvlErrorf("Push", tipierr.IncorrectSpace, fmt.Errorf("source vector belongs to a different vector space"))
	}

	for i := range op.work {
		op.work[i] = 0
	}

	workDims := op.workShape.Dims()
	workStrides := canonicalStrides(workDims)
	srcBuf := src.Buffer()
	srcStrides := canonicalStrides(region)

	idx := make([]int, len(region))
	total := 1
	for _, d := range region {
		total *= d
	}
	for n := 0; n < total; n++ {
		srcOff := 0
		workOff := 0
		for k, i := range idx {
			srcOff += i * srcStrides[k]
			workOff += (i + offset[k]) * workStrides[k]
		}
		op.work[2*workOff] = srcBuf[srcOff]
		op.work[2*workOff+1] = 0

		for k := 0; k < len(idx); k++ {
			idx[k]++
			if idx[k] < region[k] {
				break
			}
			idx[k] = 0
		}
	}

	op.ph = phasePushed
	return nil
}

// Pull extracts the real part of the work buffer into dst: when
// adjoint is false, the output region at offOut (inverse of S's
// counterpart, R); when true, the input region at offInp (inverse of
// R^T's counterpart, S^T).
func (op *Operator) Pull(dst *vector.ShapedVector[float64], adjoint bool) error {
	if op.ph != phaseBackwarded {
		return wrongPhase("Pull", op.ph)
	}
	var region []int
	var offset []int
	var want *vector.VectorSpace[float64]
	if !adjoint {
		region = op.outputSpace.Shape().Dims()
		offset = op.offOut
		want = op.outputSpace
	} else {
		region = op.inputSpace.Shape().Dims()
		offset = op.offInp
		want = op.inputSpace
	}
	if dst.Space() != want {
		return cnvlErrorf("Pull", tipierr.IncorrectSpace, fmt.Errorf("destination vector belongs to a different vector space"))
	}

	workDims := op.workShape.Dims()
	workStrides := canonicalStrides(workDims)
	dstBuf := dst.Buffer()
	dstStrides := canonicalStrides(region)

	idx := make([]int, len(region))
	total := 1
	for _, d := range region {
		total *= d
	}
	for n := 0; n < total; n++ {
		dstOff := 0
		workOff := 0
		for k, i := range idx {
			dstOff += i * dstStrides[k]
			workOff += (i + offset[k]) * workStrides[k]
		}
		dstBuf[dstOff] = op.work[2*workOff]

		for k := 0; k < len(idx); k++ {
			idx[k]++
			if idx[k] < region[k] {
				break
			}
			idx[k] = 0
		}
	}

	op.ph = phaseIdle
	return nil
}

// ForwardFFT transforms the work buffer in place.
func (op *Operator) ForwardFFT() error {
	if op.ph != phasePushed {
		return wrongPhase("ForwardFFT", op.ph)
	}
	if err := op.engine.Forward(op.work); err != nil {
		return err
	}
	op.ph = phaseForwarded
	return nil
}

// BackwardFFT transforms the work buffer in place.
func (op *Operator) BackwardFFT() error {
	if op.ph != phaseConvolved {
		return wrongPhase("BackwardFFT", op.ph)
	}
	if err := op.engine.Backward(op.work); err != nil {
		return err
	}
	op.ph = phaseBackwarded
	return nil
}

// Convolve multiplies the (already forward-transformed) work buffer
// by the cached MTF, or its conjugate when conj is true. Fails with
// InvalidState when no PSF has been set or the operator is not in the
// forward-transformed phase.
func (op *Operator) Convolve(conj bool) error {
	if op.ph != phaseForwarded {
		return wrongPhase("Convolve", op.ph)
	}
	if !op.hasPSF {
		return cnvlErrorf("Convolve", tipierr.InvalidState, fmt.Errorf("no PSF has been set"))
	}
	n := len(op.work) / 2
	for i := 0; i < n; i++ {
		wr, wi := op.work[2*i], op.work[2*i+1]
		mr, mi := op.mtf[2*i], op.mtf[2*i+1]
		if conj {
			mi = -mi
		}
		op.work[2*i] = wr*mr - wi*mi
		op.work[2*i+1] = wr*mi + wi*mr
	}
	op.ph = phaseConvolved
	return nil
}

// Apply runs the full forward convolution: pushes src as input,
// transforms, multiplies by the MTF, transforms back, and pulls the
// result into dst.
func (op *Operator) Apply(dst, src *vector.ShapedVector[float64]) error {
	if err := op.Push(src, false); err != nil {
		return err
	}
	if err := op.ForwardFFT(); err != nil {
		return err
	}
	if err := op.Convolve(false); err != nil {
		return err
	}
	if err := op.BackwardFFT(); err != nil {
		return err
	}
	return op.Pull(dst, false)
}

// ApplyAdjoint runs the full adjoint convolution: pushes src
// (belonging to the output space) as the adjoint input, transforms,
// multiplies by the conjugate MTF, transforms back, and pulls the
// result into dst (belonging to the input space).
func (op *Operator) ApplyAdjoint(dst, src *vector.ShapedVector[float64]) error {
	if err := op.Push(src, true); err != nil {
		return err
	}
	if err := op.ForwardFFT(); err != nil {
		return err
	}
	if err := op.Convolve(true); err != nil {
		return err
	}
	if err := op.BackwardFFT(); err != nil {
		return err
	}
	return op.Pull(dst, true)
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
