// Package convolve implements TiPi-Go's FFT convolution operator: a
// padded-work-space linear map between an input vector space and an
// output vector space, plus its adjoint, built on the fft package.
//
// The operator enforces a strict sequencing discipline on its shared
// work buffer: push, forward_fft, convolve, backward_fft, pull is the
// only legal cycle; calling an operation out of turn fails with
// InvalidState, mirroring the single-contiguous-work-buffer ownership
// model described for the convolution layer.
package convolve
