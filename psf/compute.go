package psf

import "math"

// ComputePSF recomputes the pupil field and PSF cube for every
// z-plane when the model is dirty; it is a no-op otherwise. Plane z
// uses axial phase scale s = 2*pi*(z or z-Nz)*Dz, with the second
// half of the z-axis treated as negative frequencies.
func (m *WideFieldModel) ComputePSF() error {
	if !m.dirty {
		return nil
	}
	m.logger.Debugf("psf: recomputing PSF cube (%d planes)", m.Nz)

	n := m.Nx * m.Ny
	if m.a == nil {
		m.a = make([]complex128, m.Nz*n)
		m.psf = make([]float64, m.Nz*n)
		m.sZ = make([]float64, m.Nz)
	}

	buf := make([]float64, 2*n)
	scale := 1 / (float64(m.Nx) * float64(m.Ny) * float64(m.Nz))

	for z := 0; z < m.Nz; z++ {
		zz := z
		if z >= m.Nz/2 {
			zz = z - m.Nz
		}
		s := 2 * math.Pi * float64(zz) * m.Dz
		m.sZ[z] = s

		for i := 0; i < n; i++ {
			phase := m.phi[i] + s*m.psi[i]
			buf[2*i] = m.rho[i] * math.Cos(phase)
			buf[2*i+1] = m.rho[i] * math.Sin(phase)
		}
		if err := m.engine.Forward(buf); err != nil {
			return err
		}

		base := z * n
		for i := 0; i < n; i++ {
			re, im := buf[2*i], buf[2*i+1]
			m.a[base+i] = complex(re, -im)
			m.psf[base+i] = (re*re + im*im) * scale
		}
	}

	m.dirty = false
	return nil
}

// Rho returns the pupil amplitude field, recomputing the model first
// if dirty.
func (m *WideFieldModel) Rho() ([]float64, error) {
	if err := m.ComputePSF(); err != nil {
		return nil, err
	}
	return m.rho, nil
}

// Phi returns the pupil phase field, recomputing the model first if
// dirty.
func (m *WideFieldModel) Phi() ([]float64, error) {
	if err := m.ComputePSF(); err != nil {
		return nil, err
	}
	return m.phi, nil
}

// Psi returns the unscaled defocus phase field, recomputing the model
// first if dirty.
func (m *WideFieldModel) Psi() ([]float64, error) {
	if err := m.ComputePSF(); err != nil {
		return nil, err
	}
	return m.psi, nil
}

// PSF returns the flat PSF cube (length Nz*Nx*Ny, plane z at
// [z*Nx*Ny:(z+1)*Nx*Ny]), recomputing the model first if dirty.
func (m *WideFieldModel) PSF() ([]float64, error) {
	if err := m.ComputePSF(); err != nil {
		return nil, err
	}
	return m.psf, nil
}
