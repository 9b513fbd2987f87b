package convolve_test

import (
	"fmt"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/convolve"
	"github.com/emmt/tipi-go/shape"
	"github.com/emmt/tipi-go/vector"
)

// Example_operator builds a trivial single-sample operator (a rank-1
// space of size 1, where the DFT never mixes frequencies) with an
// identity PSF, so the forward convolution reproduces its input
// exactly.
func Example_operator() {
	sp := vector.NewSpace[float64](shape.MustNew(1))
	op, err := convolve.NewCenteredOperator(sp, sp, shape.MustNew(1))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	psf, err := array.Wrap([]float64{1}, shape.MustNew(1))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := op.SetPSF(psf, []int{0}, false); err != nil {
		fmt.Println("error:", err)
		return
	}

	src, err := sp.Wrap([]float64{2})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	dst := sp.Create()
	if err := op.Apply(dst, src); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(dst.Buffer())
	// Output:
	// [2]
}
