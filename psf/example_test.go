package psf_test

import (
	"fmt"

	"github.com/emmt/tipi-go/psf"
)

// Example_wideFieldModel builds a small model, sets a flat pupil and
// defocus, and checks the dirty flag clears after the PSF cube is
// computed. Individual PSF samples are omitted since they are the
// result of an FFT and are not exactly representable in decimal.
func Example_wideFieldModel() {
	m, err := psf.New(1.4, 542e-9, 1.518, 64.5e-9, 160e-9, 4, 4, 2, 0)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := m.SetRho([]float64{1}); err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := m.SetPhi([]float64{0}); err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := m.SetDefocus([]float64{m.Ni / m.Lambda, 0, 0}); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(m.Dirty())
	p, err := m.PSF()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(m.Dirty(), len(p))
	// Output:
	// true
	// false 32
}
