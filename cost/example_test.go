package cost_test

import (
	"fmt"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/convolve"
	"github.com/emmt/tipi-go/cost"
	"github.com/emmt/tipi-go/shape"
	"github.com/emmt/tipi-go/vector"
)

// Example_operator evaluates the weighted quadratic cost and its
// gradient against a trivial single-sample identity convolution, so
// the residual and its adjoint are exact.
func Example_operator() {
	sp := vector.NewSpace[float64](shape.MustNew(1))
	cnvl, err := convolve.NewCenteredOperator(sp, sp, shape.MustNew(1))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	psf, err := array.Wrap([]float64{1}, shape.MustNew(1))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := cnvl.SetPSF(psf, []int{0}, false); err != nil {
		fmt.Println("error:", err)
		return
	}

	op := cost.NewOperator(cnvl)
	dat, err := sp.Wrap([]float64{5})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := op.SetData(dat); err != nil {
		fmt.Println("error:", err)
		return
	}

	x, err := sp.Wrap([]float64{2})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	g := sp.Create()
	f, err := op.CostGrad(1, x, g, true)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(f, g.Buffer())
	// Output:
	// 4.5 [-3]
}
