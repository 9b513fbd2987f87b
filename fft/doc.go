// Package fft implements TiPi-Go's FFT adapter: in-place forward and
// backward complex transforms over a real-interleaved buffer
// ([re0, im0, re1, im1, ...]) for ranks 1 through 3, composed from
// per-axis 1-D passes built on gonum's dsp/fourier.
//
// Forward is the unnormalized discrete Fourier transform and Backward
// is the unnormalized inverse transform (gonum's CmplxFFT.Sequence
// applies no 1/n factor), so Backward(Forward(x)) reproduces x scaled
// by the total element count prod(dims). Callers apply any
// normalization themselves; the convolve package folds the 1/N factor
// into its cached MTF.
package fft
