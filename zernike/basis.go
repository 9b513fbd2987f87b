package zernike

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/internal/tipierr"
	"gonum.org/v1/gonum/floats"
)

// Basis holds nzern Zernike fields of shape (w, h), flattened in
// row-major order, and the pupil radius they were built against.
type Basis struct {
	Nzern  int
	W, H   int
	Radius float64
	Data   []float64 // length Nzern*W*H, mode k at Data[k*W*H : (k+1)*W*H]
}

// Mode returns the k-th mode's flat field (a view, not a copy).
func (b *Basis) Mode(k int) []float64 {
	n := b.W * b.H
	return b.Data[k*n : (k+1)*n]
}

// Build constructs a Zernike basis of nzern modes on a (w, h) pixel
// grid, centered, zero outside radius. When normalized, each raw mode
// is scaled so its squared sum over the pupil equals 1 before the
// Gram-Schmidt pass. When radialOnly, the azimuthal cos/sin factor is
// omitted and only the radial polynomial is evaluated. Fails with
// InvalidArgument for nzern < 1, w < 1, h < 1, or radius <= 0.
func Build(nzern, w, h int, radius float64, normalized, radialOnly bool) (*Basis, error) {
	if nzern < 1 {
		return nil, zernErrorf("Build", tipierr.InvalidArgument, fmt.Errorf("nzern must be >= 1, got %d", nzern))
	}
	if w < 1 || h < 1 {
		return nil, zernErrorf("Build", tipierr.InvalidArgument, fmt.Errorf("grid dimensions must be positive, got (%d,%d)", w, h))
	}
	if !(radius > 0) {
		return nil, zernErrorf("Build", tipierr.InvalidArgument, fmt.Errorf("radius must be positive, got %v", radius))
	}

	n := w * h
	cx := float64(w-1) / 2
	cy := float64(h-1) / 2

	rs := make([]float64, n)
	thetas := make([]float64, n)
	mask := make([]bool, n)
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			idx := i*h + j
			x := float64(i) - cx
			y := float64(j) - cy
			rho := math.Hypot(x, y)
			rs[idx] = rho / radius
			thetas[idx] = math.Atan2(y, x)
			mask[idx] = rho <= radius
		}
	}

	data := make([]float64, nzern*n)
	for k := 0; k < nzern; k++ {
		order, m, err := NollToNM(k + 1)
		if err != nil {
			return nil, err
		}
		field := data[k*n : (k+1)*n]
		mAbs := m
		if mAbs < 0 {
			mAbs = -mAbs
		}
		for idx := 0; idx < n; idx++ {
			if !mask[idx] {
				continue
			}
			radial, err := RadialPoly(order, mAbs, rs[idx])
			if err != nil {
				return nil, err
			}
			v := radial
			if !radialOnly && mAbs > 0 {
				if m >= 0 {
					v *= math.Cos(float64(mAbs) * thetas[idx])
				} else {
					v *= math.Sin(float64(mAbs) * thetas[idx])
				}
			}
			field[idx] = v
		}
		if normalized {
			normalizeField(field)
		}
	}

	b := &Basis{Nzern: nzern, W: w, H: h, Radius: radius, Data: data}
	gramSchmidt(b, normalized)
	return b, nil
}

func normalizeField(field []float64) {
	norm := floats.Norm(field, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, field)
}

// gramSchmidt orthogonalizes the basis modes in storage order,
// renormalizing each mode after subtracting its projections onto
// every earlier mode when normalized is set.
func gramSchmidt(b *Basis, normalized bool) {
	for k := 0; k < b.Nzern; k++ {
		mk := b.Mode(k)
		for p := 0; p < k; p++ {
			mp := b.Mode(p)
			denom := floats.Dot(mp, mp)
			if denom == 0 {
				continue
			}
			proj := floats.Dot(mk, mp) / denom
			for i := range mk {
				mk[i] -= proj * mp[i]
			}
		}
		if normalized {
			normalizeField(mk)
		}
	}
}
