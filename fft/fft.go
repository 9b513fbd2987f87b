package fft

import (
	"encoding/binary"
	"fmt"

	"github.com/emmt/tipi-go/internal/tipierr"
	"gonum.org/v1/gonum/dsp/fourier"
)

func fftErrorf(op string, kind tipierr.Kind, cause error) error {
	return tipierr.New("fft."+op, kind, cause)
}

// ByteOrder mirrors the native-byte-order tag convention: a constant
// the FFT primitive's caller may persist alongside a serialized array.
type ByteOrder int32

const (
	BigEndian    ByteOrder = 0x04030201
	LittleEndian ByteOrder = 0x01020304
	UnknownOrder ByteOrder = -1
)

// NativeByteOrder is queried once, at package init, from the running
// platform's native endianness.
var NativeByteOrder ByteOrder

func init() {
	var probe uint32 = 0x01020304
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, probe)
	switch {
	case buf[0] == 0x01:
		NativeByteOrder = BigEndian
	case buf[0] == 0x04:
		NativeByteOrder = LittleEndian
	default:
		NativeByteOrder = UnknownOrder
	}
}

// Engine is an in-place forward/backward complex transform over a
// real-interleaved buffer for a fixed set of dimensions, ranks 1..3.
type Engine struct {
	dims  []int
	plans []*fourier.CmplxFFT
}

// NewEngine builds an Engine for the given dimensions. Fails with
// Unsupported when len(dims) is not in {1,2,3}, and with
// InvalidArgument when any dimension is <= 0.
func NewEngine(dims ...int) (*Engine, error) {
	if len(dims) < 1 || len(dims) > 3 {
		return nil, fftErrorf("NewEngine", tipierr.Unsupported,
			fmt.Errorf("rank %d not in {1,2,3}", len(dims)))
	}
	plans := make([]*fourier.CmplxFFT, len(dims))
	for k, d := range dims {
		if d <= 0 {
			return nil, fftErrorf("NewEngine", tipierr.InvalidArgument,
				fmt.Errorf("dimension %d (axis %d) must be > 0", d, k))
		}
		plans[k] = fourier.NewCmplxFFT(d)
	}
	cp := make([]int, len(dims))
	copy(cp, dims)
	return &Engine{dims: cp, plans: plans}, nil
}

// Dims returns the engine's dimensions.
func (e *Engine) Dims() []int {
	out := make([]int, len(e.dims))
	copy(out, e.dims)
	return out
}

// Len is the required real-interleaved buffer length: 2 * prod(dims).
func (e *Engine) Len() int {
	n := 1
	for _, d := range e.dims {
		n *= d
	}
	return 2 * n
}

// Forward performs an in-place multidimensional forward transform.
func (e *Engine) Forward(buf []float64) error {
	return e.transform("Forward", buf, true)
}

// Backward performs an in-place multidimensional backward (inverse,
// unnormalized) transform.
func (e *Engine) Backward(buf []float64) error {
	return e.transform("Backward", buf, false)
}

func (e *Engine) transform(op string, buf []float64, forward bool) error {
	if len(buf) != e.Len() {
		return fftErrorf(op, tipierr.ShapeMismatch,
			fmt.Errorf("buffer length %d does not match required length %d", len(buf), e.Len()))
	}
	cplx := toComplex(buf)
	for axis := range e.dims {
		e.passAxis(cplx, axis, forward)
	}
	fromComplex(cplx, buf)
	return nil
}

// passAxis runs the 1-D transform for the given axis over every line
// of the multidimensional buffer, column-major (axis 0 fastest).
func (e *Engine) passAxis(data []complex128, axis int, forward bool) {
	strides := canonicalStrides(e.dims)
	d := e.dims[axis]
	stride := strides[axis]
	plan := e.plans[axis]
	line := make([]complex128, d)

	total := len(data)
	lines := total / d
	// idx enumerates every flat index whose coordinate on axis is 0;
	// each such idx is the start of one line along axis.
	idx := make([]int, len(e.dims))
	count := 0
	for count < lines {
		// Compute the base offset for the current idx tuple (with
		// idx[axis] == 0 by construction below).
		base := 0
		for k, s := range strides {
			base += idx[k] * s
		}
		for i := 0; i < d; i++ {
			line[i] = data[base+i*stride]
		}
		if forward {
			plan.Coefficients(line, line)
		} else {
			plan.Sequence(line, line)
		}
		for i := 0; i < d; i++ {
			data[base+i*stride] = line[i]
		}
		count++

		// Advance idx over every axis except `axis`.
		k := 0
		for k < len(e.dims) {
			if k == axis {
				k++
				continue
			}
			idx[k]++
			if idx[k] < e.dims[k] {
				break
			}
			idx[k] = 0
			k++
		}
	}
}

func canonicalStrides(dims []int) []int {
	strides := make([]int, len(dims))
	s := 1
	for k, d := range dims {
		strides[k] = s
		s *= d
	}
	return strides
}

func toComplex(buf []float64) []complex128 {
	n := len(buf) / 2
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = complex(buf[2*i], buf[2*i+1])
	}
	return out
}

func fromComplex(cplx []complex128, buf []float64) {
	for i, c := range cplx {
		buf[2*i] = real(c)
		buf[2*i+1] = imag(c)
	}
}
