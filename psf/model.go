package psf

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/fft"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/internal/tlog"
	"github.com/emmt/tipi-go/zernike"
	"gonum.org/v1/gonum/floats"
)

func psfErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("psf."+op, kind, cause)
}

// WideFieldModel is the canonical pupil-based PSF model: a circular
// pupil of amplitude rho and phase phi, parameterized by Zernike
// coefficients, combined with a defocus phase field and propagated
// per z-plane through a 2-D FFT into a real, non-negative PSF cube.
type WideFieldModel struct {
	NA, Lambda, Ni, Dxy, Dz float64
	Nx, Ny, Nz              int
	K0                      int // Zernike index offset for phi's coefficients

	engine *fft.Engine

	fx, fy      []float64 // Nx*Ny centered frequency grids
	opticalMask []bool    // NA/Lambda pupil support, independent of defocus
	mask        []bool    // opticalMask intersected with defocus feasibility

	basis    *zernike.Basis
	beta     []float64
	betaNorm float64
	alpha    []float64

	rho []float64
	phi []float64

	nuI, nuS, deltaX, deltaY, zdepth float64
	hasNuS                           bool

	kz1, kz2 []float64 // cached axial wavevector fields, 0 outside validity
	psi      []float64 // combined defocus phase field, unscaled by z

	sZ  []float64   // per z-plane axial phase scale from the last compute
	a   []complex128 // conjugate of the transformed pupil field per z-plane, Nz*(Nx*Ny)
	psf []float64    // real PSF cube, Nz*Nx*Ny

	dirty  bool
	logger tlog.Logger
}

// Option configures a WideFieldModel at construction time.
type Option func(*WideFieldModel)

// WithLogger installs a logging sink for model mutations and
// recomputation; the default is tlog.Discard.
func WithLogger(logger tlog.Logger) Option {
	return func(m *WideFieldModel) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New constructs a WideFieldModel for the given physical parameters
// and grid size. k0 is the Zernike index offset applied to phi's
// coefficients (Noll index k0+1 corresponds to alpha[0]).
func New(na, lambda, ni, dxy, dz float64, nx, ny, nz, k0 int, opts ...Option) (*WideFieldModel, error) {
	if na <= 0 || lambda <= 0 || ni <= 0 || dxy <= 0 || dz <= 0 {
		return nil, psfErrorf("New", tipierr.InvalidArgument, fmt.Errorf("physical parameters must be positive"))
	}
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, psfErrorf("New", tipierr.InvalidArgument, fmt.Errorf("grid dimensions must be positive"))
	}
	if k0 < 0 {
		return nil, psfErrorf("New", tipierr.InvalidArgument, fmt.Errorf("k0 must be >= 0"))
	}
	engine, err := fft.NewEngine(nx, ny)
	if err != nil {
		return nil, err
	}

	m := &WideFieldModel{
		NA: na, Lambda: lambda, Ni: ni, Dxy: dxy, Dz: dz,
		Nx: nx, Ny: ny, Nz: nz, K0: k0,
		engine: engine,
		logger: tlog.Discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.buildFrequencyGrid()
	m.psi = make([]float64, nx*ny)
	m.kz1 = make([]float64, nx*ny)
	m.kz2 = make([]float64, nx*ny)
	m.rho = make([]float64, nx*ny)
	m.phi = make([]float64, nx*ny)
	m.dirty = true
	m.logger.Infof("psf: new wide-field model grid=%dx%dx%d NA=%.3f lambda=%.3e", nx, ny, nz, na, lambda)
	return m, nil
}

func (m *WideFieldModel) buildFrequencyGrid() {
	n := m.Nx * m.Ny
	m.fx = make([]float64, n)
	m.fy = make([]float64, n)
	m.opticalMask = make([]bool, n)
	m.mask = make([]bool, n)
	cx := float64(m.Nx-1) / 2
	cy := float64(m.Ny-1) / 2
	cutoff := m.NA / m.Lambda
	for i := 0; i < m.Nx; i++ {
		for j := 0; j < m.Ny; j++ {
			idx := i*m.Ny + j
			fx := (float64(i) - cx) / (float64(m.Nx) * m.Dxy)
			fy := (float64(j) - cy) / (float64(m.Ny) * m.Dxy)
			m.fx[idx] = fx
			m.fy[idx] = fy
			m.opticalMask[idx] = fx*fx+fy*fy <= cutoff*cutoff
		}
	}
	copy(m.mask, m.opticalMask)
}

// pupilRadiusPixels is the NA/Lambda cutoff frequency expressed in
// the same pixel-index units zernike.Build expects.
func (m *WideFieldModel) pupilRadiusPixels() float64 {
	return (m.NA / m.Lambda) * float64(m.Nx) * m.Dxy
}

func (m *WideFieldModel) ensureBasis(nzern int) error {
	if m.basis != nil && m.basis.Nzern >= nzern {
		return nil
	}
	b, err := zernike.Build(nzern, m.Nx, m.Ny, m.pupilRadiusPixels(), true, false)
	if err != nil {
		return err
	}
	m.basis = b
	return nil
}

// SetRho sets the pupil amplitude's Zernike coefficients beta and
// recomputes rho = (sum_n beta[n]*Z_n) / ||beta||_2 on the pupil
// mask, zero elsewhere. Fails with InvalidArgument when beta is empty
// or has zero norm.
func (m *WideFieldModel) SetRho(beta []float64) error {
	if len(beta) == 0 {
		return psfErrorf("SetRho", tipierr.InvalidArgument, fmt.Errorf("beta must not be empty"))
	}
	norm := floats.Norm(beta, 2)
	if norm == 0 {
		return psfErrorf("SetRho", tipierr.InvalidArgument, fmt.Errorf("beta must not be all-zero"))
	}
	if err := m.ensureBasis(len(beta)); err != nil {
		return err
	}
	for i := range m.rho {
		if !m.mask[i] {
			m.rho[i] = 0
			continue
		}
		var v float64
		for n, b := range beta {
			v += b * m.basis.Mode(n)[i]
		}
		m.rho[i] = v / norm
	}
	m.beta = append([]float64(nil), beta...)
	m.betaNorm = norm
	m.dirty = true
	return nil
}

// SetPhi sets the pupil phase's Zernike coefficients alpha and
// recomputes phi = sum_n alpha[n]*Z_{n+K0} on the pupil mask, zero
// elsewhere. Fails with InvalidArgument when alpha is empty.
func (m *WideFieldModel) SetPhi(alpha []float64) error {
	if len(alpha) == 0 {
		return psfErrorf("SetPhi", tipierr.InvalidArgument, fmt.Errorf("alpha must not be empty"))
	}
	if err := m.ensureBasis(len(alpha) + m.K0); err != nil {
		return err
	}
	for i := range m.phi {
		if !m.mask[i] {
			m.phi[i] = 0
			continue
		}
		var v float64
		for n, a := range alpha {
			v += a * m.basis.Mode(n+m.K0)[i]
		}
		m.phi[i] = v
	}
	m.alpha = append([]float64(nil), alpha...)
	m.dirty = true
	return nil
}

// SetZDepth sets the sample depth used to scale the second-medium
// defocus term whenever a second-medium index is in effect (a two- or
// four-element defocus vector).
func (m *WideFieldModel) SetZDepth(v float64) {
	m.zdepth = v
	m.dirty = true
}

// Dirty reports whether a prior mutation requires a compute_psf pass
// before rho, phi, psi, or the PSF cube can be read.
func (m *WideFieldModel) Dirty() bool { return m.dirty }

// Area returns the pupil support's area as sqrt(#{mask=true}).
func (m *WideFieldModel) Area() float64 {
	var count int
	for _, v := range m.mask {
		if v {
			count++
		}
	}
	return math.Sqrt(float64(count))
}
