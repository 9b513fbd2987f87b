package cost

import (
	"fmt"

	"github.com/emmt/tipi-go/convolve"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/vector"
)

func costErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("cost."+op, kind, cause)
}

// Operator computes a weighted quadratic data-fidelity cost and its
// gradient against a shared convolution operator: the convolution
// maps object space to data space, and the residual (cnvl(x) - dat),
// optionally weighted, is propagated back via the adjoint.
type Operator struct {
	cnvl *convolve.Operator

	dat *vector.ShapedVector[float64]
	wgt *vector.ShapedVector[float64]

	hasData    bool
	hasWeights bool

	y   *vector.ShapedVector[float64] // scratch: cnvl(x)
	res *vector.ShapedVector[float64] // scratch: w*(y-dat)
}

// NewOperator builds a cost Operator sharing cnvl's output space for
// data and weights.
func NewOperator(cnvl *convolve.Operator) *Operator {
	return &Operator{
		cnvl: cnvl,
		y:    cnvl.OutputSpace().Create(),
		res:  cnvl.OutputSpace().Create(),
	}
}

// SetData records the target data vector. dat must belong to cnvl's
// output space, else IncorrectSpace.
func (op *Operator) SetData(dat *vector.ShapedVector[float64]) error {
	if dat.Space() != op.cnvl.OutputSpace() {
		return costErrorf("SetData", tipierr.IncorrectSpace, fmt.Errorf("data vector belongs to a different space"))
	}
	op.dat = dat
	op.hasData = true
	return nil
}

// SetWeights records the per-sample weight vector. wgt must belong to
// cnvl's output space, else IncorrectSpace. A nil weight vector is
// equivalent to uniform weights of 1.
func (op *Operator) SetWeights(wgt *vector.ShapedVector[float64]) error {
	if wgt != nil && wgt.Space() != op.cnvl.OutputSpace() {
		return costErrorf("SetWeights", tipierr.IncorrectSpace, fmt.Errorf("weight vector belongs to a different space"))
	}
	op.wgt = wgt
	op.hasWeights = wgt != nil
	return nil
}

// Cost computes f = (alpha/2) * sum(w*(cnvl(x)-dat)^2). Fails with
// InvalidState when no data has been set, or when cnvl has no PSF.
func (op *Operator) Cost(alpha float64, x *vector.ShapedVector[float64]) (float64, error) {
	return op.evaluate(alpha, x, nil, false)
}

// CostGrad computes f as Cost does and, in addition, fills g (or
// increments it when clear is false) with alpha * cnvl^T(w*(cnvl(x)-dat)).
func (op *Operator) CostGrad(alpha float64, x *vector.ShapedVector[float64], g *vector.ShapedVector[float64], clear bool) (float64, error) {
	if g.Space() != op.cnvl.InputSpace() {
		return 0, costErrorf("CostGrad", tipierr.IncorrectSpace, fmt.Errorf("gradient vector belongs to a different space"))
	}
	f, err := op.evaluate(alpha, x, g, clear)
	if err != nil {
		return 0, err
	}
	return f, nil
}

func (op *Operator) evaluate(alpha float64, x *vector.ShapedVector[float64], g *vector.ShapedVector[float64], clear bool) (float64, error) {
	if !op.hasData {
		return 0, costErrorf("Cost", tipierr.InvalidState, fmt.Errorf("no data has been set"))
	}
	if x.Space() != op.cnvl.InputSpace() {
		return 0, costErrorf("Cost", tipierr.IncorrectSpace, fmt.Errorf("x belongs to a different space"))
	}

	if err := op.cnvl.Apply(op.y, x); err != nil {
		return 0, err
	}

	yb := op.y.Buffer()
	datb := op.dat.Buffer()
	resb := op.res.Buffer()

	var sum float64
	if op.hasWeights {
		wb := op.wgt.Buffer()
		for i := range yb {
			r := yb[i] - datb[i]
			wr := wb[i] * r
			sum += wr * r
			resb[i] = wr
		}
	} else {
		for i := range yb {
			r := yb[i] - datb[i]
			sum += r * r
			resb[i] = r
		}
	}
	f := (alpha / 2) * sum

	if g != nil {
		adj := g
		if !clear {
			adj = op.cnvl.InputSpace().Create()
		}
		if err := op.cnvl.ApplyAdjoint(adj, op.res); err != nil {
			return 0, err
		}
		if clear {
			g.Scale(alpha)
		} else {
			adj.Scale(alpha)
			gb := g.Buffer()
			ab := adj.Buffer()
			for i := range gb {
				gb[i] += ab[i]
			}
		}
	}

	return f, nil
}
