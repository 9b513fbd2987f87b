package zernike

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/internal/tipierr"
)

func zernErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("zernike."+op, kind, cause)
}

// NollToNM decomposes a 1-based Noll index j into its radial order n
// and signed azimuthal order m, via closed-form inversion of the
// triangular row index (n is the largest row with T(n) = n(n+1)/2 not
// exceeding j-1), followed by the standard parity split for m. Fails
// with InvalidArgument when j < 1.
func NollToNM(j int) (n, m int, err error) {
	if j < 1 {
		return 0, 0, zernErrorf("NollToNM", tipierr.InvalidArgument, fmt.Errorf("Noll index must be >= 1, got %d", j))
	}
	k := float64(j - 1)
	n = int(math.Floor((-1 + math.Sqrt(1+8*k)) / 2))
	for n*(n+1)/2 > j-1 {
		n--
	}
	for (n+1)*(n+2)/2 <= j-1 {
		n++
	}
	j1 := (j - 1) - n*(n+1)/2
	parity := (n + 1) % 2
	mAbs := (n % 2) + 2*((j1+parity)/2)
	m = mAbs
	if j%2 != 0 {
		m = -mAbs
	}
	return n, m, nil
}

// logFactorial returns log(n!) via a cumulative sum of log(i), i =
// 1..n, computed iteratively to stay finite for n well beyond the
// point where n! itself overflows float64.
func logFactorial(n int) float64 {
	var s float64
	for i := 2; i <= n; i++ {
		s += math.Log(float64(i))
	}
	return s
}

// RadialPoly evaluates the Zernike radial polynomial R_n^|m| at
// normalized radius r (0 <= r <= 1), summing terms whose binomial-like
// coefficients are computed in log-space (alternating sign applied
// after exponentiating the magnitude) to avoid factorial overflow for
// large n. Fails with Overflow if a coefficient's magnitude is not
// finite after exponentiating.
func RadialPoly(n, m int, r float64) (float64, error) {
	if m < 0 {
		m = -m
	}
	if (n-m)%2 != 0 || n < m {
		return 0, nil
	}
	half := (n - m) / 2
	var sum float64
	for kk := 0; kk <= half; kk++ {
		logCoef := logFactorial(n-kk) - logFactorial(kk) - logFactorial((n+m)/2-kk) - logFactorial((n-m)/2-kk)
		mag := math.Exp(logCoef)
		if math.IsInf(mag, 0) {
			return 0, zernErrorf("RadialPoly", tipierr.Overflow, fmt.Errorf("radial coefficient overflowed for n=%d m=%d", n, m))
		}
		sign := 1.0
		if kk%2 == 1 {
			sign = -1
		}
		sum += sign * mag * math.Pow(r, float64(n-2*kk))
	}
	return sum, nil
}
