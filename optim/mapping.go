package optim

import (
	"fmt"

	"github.com/emmt/tipi-go/convolve"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/vector"
)

func optimErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("optim."+op, kind, cause)
}

// Mapping is a map between two vector spaces.
type Mapping interface {
	InputSpace() *vector.VectorSpace[float64]
	OutputSpace() *vector.VectorSpace[float64]
	// Apply computes dst = M(src), failing with IncorrectSpace when
	// src or dst does not belong to the expected space.
	Apply(dst, src *vector.ShapedVector[float64]) error
}

// DifferentiableMapping additionally exposes its Jacobian applied to
// a direction vector at a given point.
type DifferentiableMapping interface {
	Mapping
	// ApplyJacobian computes y = J(x)*v, failing with IncorrectSpace
	// when x or v does not belong to the input space, or y to the
	// output space.
	ApplyJacobian(y, x, v *vector.ShapedVector[float64]) error
}

// CheckApply validates that src belongs to m's input space and dst to
// its output space. Concrete Mapping implementations call this before
// doing any work so every implementation surfaces the same
// IncorrectSpace failure on a foreign vector.
func CheckApply(op string, m Mapping, dst, src *vector.ShapedVector[float64]) error {
	if src.Space() != m.InputSpace() {
		return optimErrorf(op, tipierr.IncorrectSpace, fmt.Errorf("src belongs to a different space"))
	}
	if dst.Space() != m.OutputSpace() {
		return optimErrorf(op, tipierr.IncorrectSpace, fmt.Errorf("dst belongs to a different space"))
	}
	return nil
}

// ConvolutionMapping adapts a convolve.Operator to the Mapping /
// DifferentiableMapping contracts. A convolution is linear, so its
// Jacobian at any point equals the operator itself: ApplyJacobian
// ignores x and applies the operator directly to v.
type ConvolutionMapping struct {
	Op *convolve.Operator
}

// InputSpace returns the wrapped operator's input space.
func (c *ConvolutionMapping) InputSpace() *vector.VectorSpace[float64] { return c.Op.InputSpace() }

// OutputSpace returns the wrapped operator's output space.
func (c *ConvolutionMapping) OutputSpace() *vector.VectorSpace[float64] { return c.Op.OutputSpace() }

// Apply runs the forward convolution.
func (c *ConvolutionMapping) Apply(dst, src *vector.ShapedVector[float64]) error {
	if err := CheckApply("ConvolutionMapping.Apply", c, dst, src); err != nil {
		return err
	}
	return c.Op.Apply(dst, src)
}

// ApplyJacobian applies the (x-independent) linear operator to v.
func (c *ConvolutionMapping) ApplyJacobian(y, x, v *vector.ShapedVector[float64]) error {
	if x.Space() != c.InputSpace() {
		return optimErrorf("ConvolutionMapping.ApplyJacobian", tipierr.IncorrectSpace, fmt.Errorf("x belongs to a different space"))
	}
	if err := CheckApply("ConvolutionMapping.ApplyJacobian", c, y, v); err != nil {
		return err
	}
	return c.Op.Apply(y, v)
}
