package fft_test

import (
	"fmt"

	"github.com/emmt/tipi-go/fft"
)

// ExampleEngine_Forward runs a trivial rank-1, length-1 transform: a
// single-sample DFT has no frequency mixing, so the coefficient equals
// the sample itself.
func ExampleEngine_Forward() {
	e, err := fft.NewEngine(1)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	buf := []float64{3, 0}
	if err := e.Forward(buf); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(buf)
	// Output:
	// [3 0]
}

// ExampleEngine_Dims shows the engine's fixed dimensions and the
// required real-interleaved buffer length.
func ExampleEngine_Dims() {
	e, err := fft.NewEngine(4, 3)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(e.Dims(), e.Len())
	// Output:
	// [4 3] 24
}
