package zernike_test

import (
	"fmt"

	"github.com/emmt/tipi-go/zernike"
)

// ExampleNollToNM decomposes Noll index 5 into its radial and
// azimuthal orders (the first astigmatism mode).
func ExampleNollToNM() {
	n, m, err := zernike.NollToNM(5)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(n, m)
	// Output:
	// 2 -2
}

// ExampleBuild constructs a small basis and reports its mode count and
// per-mode field length; individual mode values are omitted since
// Gram-Schmidt orthonormalization is not exactly representable in
// decimal.
func ExampleBuild() {
	b, err := zernike.Build(3, 8, 8, 3.5, true, false)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(b.Nzern, len(b.Mode(0)))
	// Output:
	// 3 64
}
