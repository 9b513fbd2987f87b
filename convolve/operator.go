package convolve

import (
	"fmt"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/fft"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/internal/tlog"
	"github.com/emmt/tipi-go/shape"
	"github.com/emmt/tipi-go/vector"
)

func cnvlErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("convolve."+op, kind, cause)
}

// phase tracks the operator's position in the push/forward_fft/
// convolve/backward_fft/pull cycle.
type phase int

const (
	phaseIdle phase = iota
	phasePushed
	phaseForwarded
	phaseConvolved
	phaseBackwarded
)

// Operator is a padded-work-space FFT convolution between an input
// vector space and an output vector space of equal rank (1..3).
type Operator struct {
	inputSpace  *vector.VectorSpace[float64]
	outputSpace *vector.VectorSpace[float64]
	workShape   shape.Shape
	offInp      []int
	offOut      []int

	engine *fft.Engine
	work   []float64 // complex-interleaved, length 2*workShape.Number()
	mtf    []float64 // complex-interleaved MTF, same length

	hasPSF bool
	ph     phase
	logger tlog.Logger
}

// Option configures an Operator at construction time.
type Option func(*Operator)

// WithLogger installs a logging sink for PSF/MTF cache events; the
// default is tlog.Discard.
func WithLogger(logger tlog.Logger) Option {
	return func(op *Operator) {
		if logger != nil {
			op.logger = logger
		}
	}
}

// NewOperator constructs an Operator over the given input/output
// spaces, work shape, and per-axis placement offsets. Fails with
// Unsupported when the common rank is not in {1,2,3}, with
// ShapeMismatch when input/output ranks differ, and with
// InvalidArgument when an offset or the work shape cannot
// accommodate the corresponding user shape.
func NewOperator(inputSpace, outputSpace *vector.VectorSpace[float64], workShape shape.Shape, offInp, offOut []int, opts ...Option) (*Operator, error) {
	inpDims := inputSpace.Shape().Dims()
	outDims := outputSpace.Shape().Dims()
	workDims := workShape.Dims()
	r := len(workDims)
	if r < 1 || r > 3 {
		return nil, cnvlErrorf("NewOperator", tipierr.Unsupported,
			fmt.Errorf("rank %d not in {1,2,3}", r))
	}
	if len(inpDims) != r || len(outDims) != r {
		return nil, cnvlErrorf("NewOperator", tipierr.ShapeMismatch,
			fmt.Errorf("input/output/work ranks must agree: inp=%d out=%d work=%d", len(inpDims), len(outDims), r))
	}
	if len(offInp) != r || len(offOut) != r {
		return nil, cnvlErrorf("NewOperator", tipierr.ShapeMismatch,
			fmt.Errorf("%d/%d offsets for rank-%d spaces", len(offInp), len(offOut), r))
	}
	for k := 0; k < r; k++ {
		if workDims[k] < inpDims[k] || workDims[k] < outDims[k] {
			return nil, cnvlErrorf("NewOperator", tipierr.InvalidArgument,
				fmt.Errorf("axis %d: work dimension %d smaller than input %d or output %d", k, workDims[k], inpDims[k], outDims[k]))
		}
		if offInp[k] < 0 || offInp[k] > workDims[k]-inpDims[k] {
			return nil, cnvlErrorf("NewOperator", tipierr.InvalidArgument,
				fmt.Errorf("axis %d: input offset %d out of range [0,%d]", k, offInp[k], workDims[k]-inpDims[k]))
		}
		if offOut[k] < 0 || offOut[k] > workDims[k]-outDims[k] {
			return nil, cnvlErrorf("NewOperator", tipierr.InvalidArgument,
				fmt.Errorf("axis %d: output offset %d out of range [0,%d]", k, offOut[k], workDims[k]-outDims[k]))
		}
	}

	engine, err := fft.NewEngine(workDims...)
	if err != nil {
		return nil, err
	}
	n := engine.Len()
	op := &Operator{
		inputSpace:  inputSpace,
		outputSpace: outputSpace,
		workShape:   workShape,
		offInp:      append([]int(nil), offInp...),
		offOut:      append([]int(nil), offOut...),
		engine:      engine,
		work:        make([]float64, n),
		mtf:         make([]float64, n),
		logger:      tlog.Discard,
	}
	for _, opt := range opts {
		opt(op)
	}
	op.logger.Infof("convolve: new operator work shape %s", workShape)
	return op, nil
}

// NewCenteredOperator is NewOperator with both offsets centered via
// offset[k] = workDim[k]/2 - userDim[k]/2.
func NewCenteredOperator(inputSpace, outputSpace *vector.VectorSpace[float64], workShape shape.Shape, opts ...Option) (*Operator, error) {
	inpDims := inputSpace.Shape().Dims()
	outDims := outputSpace.Shape().Dims()
	workDims := workShape.Dims()
	offInp := make([]int, len(workDims))
	offOut := make([]int, len(workDims))
	for k := range workDims {
		if k < len(inpDims) {
			offInp[k] = workDims[k]/2 - inpDims[k]/2
		}
		if k < len(outDims) {
			offOut[k] = workDims[k]/2 - outDims[k]/2
		}
	}
	return NewOperator(inputSpace, outputSpace, workShape, offInp, offOut, opts...)
}

// WorkShape returns the operator's internal work shape.
func (op *Operator) WorkShape() shape.Shape { return op.workShape }

// InputSpace returns the operator's input vector space.
func (op *Operator) InputSpace() *vector.VectorSpace[float64] { return op.inputSpace }

// OutputSpace returns the operator's output vector space.
func (op *Operator) OutputSpace() *vector.VectorSpace[float64] { return op.outputSpace }
