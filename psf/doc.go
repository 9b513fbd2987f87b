// Package psf implements WideFieldModel, the canonical wide-field
// microscope point-spread-function model: a Zernike-parameterized
// pupil (amplitude rho, phase phi), a defocus phase field driven by
// axial wavevector parameters, and a per-z-plane 2-D FFT producing a
// real, non-negative PSF cube. Model state is dirty-flagged; derived
// fields (rho, phi, psi, the PSF cube) are recomputed lazily on read.
package psf
