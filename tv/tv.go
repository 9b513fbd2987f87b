package tv

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/internal/tipierr"
)

func tvErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("tv."+op, kind, cause)
}

// Operator is a hyperbolic total variation regularizer parameterized
// by a smoothing threshold eps and a per-axis scale delta.
type Operator struct {
	eps   float64
	delta []float64
}

// New validates eps > 0 (finite) and every delta[k] and builds an
// Operator for a rank len(delta) in {1,2,3}. Fails with
// InvalidArgument when eps or a delta entry is non-positive or
// non-finite, and with Unsupported when the rank is outside {1,2,3}.
func New(eps float64, delta []float64) (*Operator, error) {
	if !(eps > 0) || math.IsInf(eps, 0) || math.IsNaN(eps) {
		return nil, tvErrorf("New", tipierr.InvalidArgument, fmt.Errorf("eps must be positive and finite, got %v", eps))
	}
	r := len(delta)
	if r < 1 || r > 3 {
		return nil, tvErrorf("New", tipierr.Unsupported, fmt.Errorf("rank %d not in {1,2,3}", r))
	}
	for k, d := range delta {
		if !(d > 0) || math.IsInf(d, 0) || math.IsNaN(d) {
			return nil, tvErrorf("New", tipierr.InvalidArgument, fmt.Errorf("delta[%d] must be positive and finite, got %v", k, d))
		}
	}
	return &Operator{eps: eps, delta: append([]float64(nil), delta...)}, nil
}

// Cost computes alpha * max(0, sum(block penalties) - bias) for x,
// whose rank must match the operator's delta length.
func (op *Operator) Cost(alpha float64, x *array.Array[float64]) (float64, error) {
	return op.evaluate(alpha, x, nil)
}

// CostGrad computes Cost's value and accumulates (does not clear) the
// gradient into gx, which must share x's shape.
func (op *Operator) CostGrad(alpha float64, x *array.Array[float64], gx *array.Array[float64]) (float64, error) {
	if !gx.Shape().Equals(x.Shape()) {
		return 0, tvErrorf("CostGrad", tipierr.ShapeMismatch, fmt.Errorf("gradient shape %s does not match x shape %s", gx.Shape(), x.Shape()))
	}
	return op.evaluate(alpha, x, gx)
}

func (op *Operator) evaluate(alpha float64, x *array.Array[float64], gx *array.Array[float64]) (float64, error) {
	r := len(op.delta)
	if x.Rank() != r {
		return 0, tvErrorf("Cost", tipierr.ShapeMismatch, fmt.Errorf("x rank %d does not match operator rank %d", x.Rank(), r))
	}
	switch r {
	case 1:
		return op.eval1D(alpha, x, gx)
	case 2:
		return op.eval2D(alpha, x, gx)
	case 3:
		return op.eval3D(alpha, x, gx)
	default:
		return 0, tvErrorf("Cost", tipierr.Unsupported, fmt.Errorf("rank %d not in {1,2,3}", r))
	}
}

func (op *Operator) eval1D(alpha float64, x, gx *array.Array[float64]) (float64, error) {
	n := x.Shape().Dims()[0]
	w := 1 / (op.delta[0] * op.delta[0])
	eps2 := op.eps * op.eps

	var sum float64
	for i := 1; i < n; i++ {
		xi, err := x.Get(i)
		if err != nil {
			return 0, err
		}
		xm, err := x.Get(i - 1)
		if err != nil {
			return 0, err
		}
		d := xi - xm
		r := math.Sqrt(w*d*d + eps2)
		sum += r

		if gx != nil {
			grad := alpha * w * d / r
			if err := addTo(gx, grad, i); err != nil {
				return 0, err
			}
			if err := addTo(gx, -grad, i-1); err != nil {
				return 0, err
			}
		}
	}

	bias := float64(n-1) * op.eps
	f := alpha * math.Max(0, sum-bias)
	return f, nil
}

func (op *Operator) eval2D(alpha float64, x, gx *array.Array[float64]) (float64, error) {
	dims := x.Shape().Dims()
	d1, d2 := dims[0], dims[1]
	w1 := 1 / (2 * op.delta[0] * op.delta[0])
	w2 := 1 / (2 * op.delta[1] * op.delta[1])
	eps2 := op.eps * op.eps

	var sum float64
	for i := 0; i < d1-1; i++ {
		for j := 0; j < d2-1; j++ {
			x1, err := x.Get(i, j)
			if err != nil {
				return 0, err
			}
			x2, err := x.Get(i, j+1)
			if err != nil {
				return 0, err
			}
			x3, err := x.Get(i+1, j)
			if err != nil {
				return 0, err
			}
			x4, err := x.Get(i+1, j+1)
			if err != nil {
				return 0, err
			}

			d21 := x2 - x1
			d43 := x4 - x3
			d31 := x3 - x1
			d42 := x4 - x2

			term := w1*(d21*d21+d43*d43) + w2*(d31*d31+d42*d42) + eps2
			r := math.Sqrt(term)
			sum += r

			if gx != nil {
				g1 := alpha * (-w1*d21 - w2*d31) / r
				g2 := alpha * (w1*d21 - w2*d42) / r
				g3 := alpha * (-w1*d43 + w2*d31) / r
				g4 := alpha * (w1*d43 + w2*d42) / r
				if err := addTo(gx, g1, i, j); err != nil {
					return 0, err
				}
				if err := addTo(gx, g2, i, j+1); err != nil {
					return 0, err
				}
				if err := addTo(gx, g3, i+1, j); err != nil {
					return 0, err
				}
				if err := addTo(gx, g4, i+1, j+1); err != nil {
					return 0, err
				}
			}
		}
	}

	bias := float64(d1-1) * float64(d2-1) * op.eps
	f := alpha * math.Max(0, sum-bias)
	return f, nil
}

func (op *Operator) eval3D(alpha float64, x, gx *array.Array[float64]) (float64, error) {
	dims := x.Shape().Dims()
	d1, d2, d3 := dims[0], dims[1], dims[2]
	w := [3]float64{
		1 / (4 * op.delta[0] * op.delta[0]),
		1 / (4 * op.delta[1] * op.delta[1]),
		1 / (4 * op.delta[2] * op.delta[2]),
	}
	eps2 := op.eps * op.eps

	var corner [2][2][2]float64
	var sum float64
	for i := 0; i < d1-1; i++ {
		for j := 0; j < d2-1; j++ {
			for k := 0; k < d3-1; k++ {
				for a := 0; a < 2; a++ {
					for b := 0; b < 2; b++ {
						for c := 0; c < 2; c++ {
							v, err := x.Get(i+a, j+b, k+c)
							if err != nil {
								return 0, err
							}
							corner[a][b][c] = v
						}
					}
				}

				var diff1, diff2, diff3 [2][2]float64
				var sq1, sq2, sq3 float64
				for b := 0; b < 2; b++ {
					for c := 0; c < 2; c++ {
						d := corner[1][b][c] - corner[0][b][c]
						diff1[b][c] = d
						sq1 += d * d
					}
				}
				for a := 0; a < 2; a++ {
					for c := 0; c < 2; c++ {
						d := corner[a][1][c] - corner[a][0][c]
						diff2[a][c] = d
						sq2 += d * d
					}
				}
				for a := 0; a < 2; a++ {
					for b := 0; b < 2; b++ {
						d := corner[a][b][1] - corner[a][b][0]
						diff3[a][b] = d
						sq3 += d * d
					}
				}

				term := w[0]*sq1 + w[1]*sq2 + w[2]*sq3 + eps2
				r := math.Sqrt(term)
				sum += r

				if gx != nil {
					for a := 0; a < 2; a++ {
						for b := 0; b < 2; b++ {
							for c := 0; c < 2; c++ {
								sign1 := signOf(a)
								sign2 := signOf(b)
								sign3 := signOf(c)
								g := alpha * (w[0]*diff1[b][c]*sign1 + w[1]*diff2[a][c]*sign2 + w[2]*diff3[a][b]*sign3) / r
								if err := addTo(gx, g, i+a, j+b, k+c); err != nil {
									return 0, err
								}
							}
						}
					}
				}
			}
		}
	}

	bias := float64(d1-1) * float64(d2-1) * float64(d3-1) * op.eps
	f := alpha * math.Max(0, sum-bias)
	return f, nil
}

func signOf(flag int) float64 {
	if flag == 1 {
		return 1
	}
	return -1
}

func addTo(a *array.Array[float64], delta float64, idx ...int) error {
	v, err := a.Get(idx...)
	if err != nil {
		return err
	}
	return a.Set(v+delta, idx...)
}
