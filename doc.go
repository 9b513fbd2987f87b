// Package tipigo is the root of TiPi-Go, a numeric core for image
// restoration and inverse-problem reconstruction.
//
// It is organized as a set of focused subpackages:
//
//	shape/    : immutable dimension vectors shared by every array/vector type
//	array/    : dense, strided, and selected n-dimensional array backings
//	vector/   : flat numeric buffers bound to a vector-space identity
//	fft/      : fixed-rank (1..3) FFT engine over gonum's discrete Fourier transform
//	convolve/ : padded-work-space FFT convolution operator and its adjoint
//	cost/     : weighted quadratic data-fidelity cost and gradient
//	tv/       : hyperbolic total-variation regularizer, ranks 1..3
//	zernike/  : Noll-indexed Zernike basis construction
//	psf/      : wide-field pupil PSF model with analytic Jacobian-transpose adjoints
//	optim/    : Mapping/DifferentiableMapping contracts and a reverse-communication driver
package tipigo
