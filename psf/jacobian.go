package psf

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/internal/tipierr"
)

// ApplyJRho is the analytic adjoint of ComputePSF with respect to the
// pupil amplitude's Zernike coefficients: given a per-plane PSF-space
// perturbation q (length Nz*Nx*Ny), it returns the gradient
// contribution for each of the currently active beta coefficients.
// Fails with InvalidState if rho has not been set.
func (m *WideFieldModel) ApplyJRho(q []float64) ([]float64, error) {
	if m.beta == nil {
		return nil, psfErrorf("ApplyJRho", tipierr.InvalidState, fmt.Errorf("rho has not been set"))
	}
	sumG, _, _, err := m.backpropPupil(q)
	if err != nil {
		return nil, err
	}

	n := m.Nx * m.Ny
	jRho := make([]float64, len(m.beta))
	for k, bk := range m.beta {
		zk := m.basis.Mode(k)
		var raw float64
		for i := 0; i < n; i++ {
			raw += sumG[i] * zk[i]
		}
		correction := (1 - bk*bk/(m.betaNorm*m.betaNorm)) / m.betaNorm
		jRho[k] = raw * correction
	}
	return jRho, nil
}

// ApplyJPhi is the analogous adjoint with respect to the pupil
// phase's Zernike coefficients. Fails with InvalidState if phi has
// not been set.
func (m *WideFieldModel) ApplyJPhi(q []float64) ([]float64, error) {
	if m.alpha == nil {
		return nil, psfErrorf("ApplyJPhi", tipierr.InvalidState, fmt.Errorf("phi has not been set"))
	}
	_, sumH, _, err := m.backpropPupil(q)
	if err != nil {
		return nil, err
	}

	n := m.Nx * m.Ny
	jPhi := make([]float64, len(m.alpha))
	for k := range m.alpha {
		zk := m.basis.Mode(k + m.K0)
		var raw float64
		for i := 0; i < n; i++ {
			raw += sumH[i] * zk[i]
		}
		jPhi[k] = raw
	}
	return jPhi, nil
}

// DefocusJacobian holds the adjoint contribution for each active
// defocus parameter, in the same order SetDefocus accepts them.
type DefocusJacobian struct {
	NuI               float64
	DeltaX, DeltaY    float64
	NuS               float64
	HasDeltas, HasNuS bool
}

// ApplyJDefocus is the analytic adjoint with respect to the defocus
// parameters currently in effect (nuI always; deltaX/deltaY and nuS
// when active), differentiating through psi = kz1 + zdepth*kz2 with
// kz1 = sqrt(nuI^2-sx^2-sy^2), kz2 = sqrt(nuS^2-sx^2-sy^2),
// sx = fx-deltaX, sy = fy-deltaY: d(kz)/d(nu) = nu/kz,
// d(kz)/d(deltaX) = sx/kz, d(kz)/d(deltaY) = sy/kz.
func (m *WideFieldModel) ApplyJDefocus(q []float64) (DefocusJacobian, error) {
	_, sumH, sumHs, err := m.backpropPupil(q)
	if err != nil {
		return DefocusJacobian{}, err
	}

	var out DefocusJacobian
	out.HasDeltas = m.deltaX != 0 || m.deltaY != 0
	out.HasNuS = m.hasNuS

	for i := range sumH {
		if !m.mask[i] {
			continue
		}
		sx, sy := m.fx[i]-m.deltaX, m.fy[i]-m.deltaY
		if m.kz1[i] > 0 {
			out.NuI += sumHs[i] * (m.nuI / m.kz1[i])
			out.DeltaX += sumHs[i] * (sx / m.kz1[i])
			out.DeltaY += sumHs[i] * (sy / m.kz1[i])
		}
		if m.hasNuS && m.kz2[i] > 0 {
			out.NuS += sumHs[i] * m.zdepth * (m.nuS / m.kz2[i])
			out.DeltaX += sumHs[i] * m.zdepth * (sx / m.kz2[i])
			out.DeltaY += sumHs[i] * m.zdepth * (sy / m.kz2[i])
		}
	}
	return out, nil
}

// backpropPupil runs compute_psf's per-z 2-D FFT in reverse: for each
// z-plane, it forward-transforms a[z]*q[z] back into the pupil
// domain, then projects the result onto the rho direction (sumG) and
// the phi/defocus phase direction (sumH, sumH weighted by the
// per-plane axial scale s_z in sumHs).
func (m *WideFieldModel) backpropPupil(q []float64) (sumG, sumH, sumHs []float64, err error) {
	n := m.Nx * m.Ny
	if len(q) != m.Nz*n {
		return nil, nil, nil, psfErrorf("backpropPupil", tipierr.ShapeMismatch,
			fmt.Errorf("q has length %d, want %d", len(q), m.Nz*n))
	}
	if err := m.ComputePSF(); err != nil {
		return nil, nil, nil, err
	}

	sumG = make([]float64, n)
	sumH = make([]float64, n)
	sumHs = make([]float64, n)
	buf := make([]float64, 2*n)

	for z := 0; z < m.Nz; z++ {
		base := z * n
		for i := 0; i < n; i++ {
			av := m.a[base+i]
			qv := q[base+i]
			buf[2*i] = real(av) * qv
			buf[2*i+1] = imag(av) * qv
		}
		if err := m.engine.Forward(buf); err != nil {
			return nil, nil, nil, err
		}

		s := m.sZ[z]
		for i := 0; i < n; i++ {
			phase := m.phi[i] + s*m.psi[i]
			cosP, sinP := math.Cos(phase), math.Sin(phase)
			pr, pi := buf[2*i], buf[2*i+1]

			g := pr*cosP + pi*sinP
			h := m.rho[i] * (pi*cosP - pr*sinP)

			sumG[i] += g
			sumH[i] += h
			sumHs[i] += h * s
		}
	}
	return sumG, sumH, sumHs, nil
}
