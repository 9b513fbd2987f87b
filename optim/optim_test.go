package optim_test

import (
	"testing"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/convolve"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/optim"
	"github.com/emmt/tipi-go/shape"
	"github.com/emmt/tipi-go/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityMapping(t *testing.T, n int) (*optim.ConvolutionMapping, *vector.VectorSpace[float64]) {
	t.Helper()
	space := vector.NewSpace[float64](shape.MustNew(n))
	op, err := convolve.NewCenteredOperator(space, space, shape.MustNew(n))
	require.NoError(t, err)

	psf := array.Create[float64](shape.MustNew(n))
	require.NoError(t, psf.Set(1, 0))
	require.NoError(t, op.SetPSF(psf, []int{0}, false))
	return &optim.ConvolutionMapping{Op: op}, space
}

// TestConvolutionMapping_Apply checks that an identity PSF mapping
// reproduces its input.
func TestConvolutionMapping_Apply(t *testing.T) {
	m, space := newIdentityMapping(t, 8)
	src := space.Create()
	src.Buffer()[3] = 5
	dst := space.Create()
	require.NoError(t, m.Apply(dst, src))
	assert.Equal(t, 5.0, dst.Buffer()[3])
}

// TestConvolutionMapping_ApplyRejectsForeignVector checks space
// validation fires IncorrectSpace on a vector from an unrelated space.
func TestConvolutionMapping_ApplyRejectsForeignVector(t *testing.T) {
	m, space := newIdentityMapping(t, 8)
	foreign := vector.NewSpace[float64](shape.MustNew(8))
	src := foreign.Create()
	dst := space.Create()
	err := m.Apply(dst, src)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.IncorrectSpace, kind)
}

// TestConvolutionMapping_ApplyJacobianMatchesApply checks that, for a
// linear convolution, the Jacobian action equals the operator itself
// regardless of the point x it is evaluated at.
func TestConvolutionMapping_ApplyJacobianMatchesApply(t *testing.T) {
	m, space := newIdentityMapping(t, 8)
	x := space.Create()
	x.Buffer()[0] = 42 // arbitrary evaluation point, unused by a linear map

	v := space.Create()
	v.Buffer()[2] = 3
	y := space.Create()
	require.NoError(t, m.ApplyJacobian(y, x, v))

	dst := space.Create()
	require.NoError(t, m.Apply(dst, v))
	assert.Equal(t, dst.Buffer(), y.Buffer())
}

// TestConvolutionMapping_ApplyJacobianRejectsForeignX checks that x's
// space is validated even though a linear Jacobian does not use x's
// value.
func TestConvolutionMapping_ApplyJacobianRejectsForeignX(t *testing.T) {
	m, space := newIdentityMapping(t, 8)
	foreign := vector.NewSpace[float64](shape.MustNew(8))
	x := foreign.Create()
	v := space.Create()
	y := space.Create()
	err := m.ApplyJacobian(y, x, v)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.IncorrectSpace, kind)
}

// quadratic is f(x) = sum((x_i - target_i)^2), grad = 2*(x - target).
func quadraticFG(x, target, g []float64) float64 {
	var f float64
	for i := range x {
		d := x[i] - target[i]
		f += d * d
		g[i] = 2 * d
	}
	return f
}

func runToConvergence(t *testing.T, d *optim.Driver, x, target []float64, maxRounds int) optim.Task {
	t.Helper()
	g := make([]float64, len(x))
	task := d.Start(x)
	for round := 0; round < maxRounds; round++ {
		switch task {
		case optim.ComputeFG, optim.NewX:
			f := quadraticFG(x, target, g)
			task = d.Iterate(x, f, g)
		case optim.FinalX, optim.ErrorTask:
			return task
		}
	}
	return task
}

// TestDriver_ConvergesOnQuadratic checks the reverse-communication
// loop drives a simple quadratic to its minimizer.
func TestDriver_ConvergesOnQuadratic(t *testing.T) {
	d, err := optim.NewDriver(1e-8, 1e-8, 0, 0)
	require.NoError(t, err)

	x := []float64{5, -3}
	target := []float64{1, 2}
	task := runToConvergence(t, d, x, target, 10000)

	require.Equal(t, optim.FinalX, task)
	assert.InDelta(t, target[0], x[0], 1e-3)
	assert.InDelta(t, target[1], x[1], 1e-3)
}

// TestDriver_RespectsMaxIter checks the loop stops at the iteration
// cap even without convergence.
func TestDriver_RespectsMaxIter(t *testing.T) {
	d, err := optim.NewDriver(0, 0, 3, 0)
	require.NoError(t, err)

	x := []float64{100}
	target := []float64{0}
	task := runToConvergence(t, d, x, target, 10000)

	assert.Equal(t, optim.FinalX, task)
}

// TestDriver_RespectsMaxEval checks the loop stops at the evaluation
// cap even without convergence.
func TestDriver_RespectsMaxEval(t *testing.T) {
	d, err := optim.NewDriver(0, 0, 0, 2)
	require.NoError(t, err)

	x := []float64{100}
	target := []float64{0}
	task := runToConvergence(t, d, x, target, 10000)

	assert.Equal(t, optim.FinalX, task)
}

// TestDriver_BoxProjection checks that bounds are enforced both on
// Start and after every iterate step.
func TestDriver_BoxProjection(t *testing.T) {
	d, err := optim.NewDriver(1e-8, 1e-8, 0, 500)
	require.NoError(t, err)
	require.NoError(t, d.SetBounds([]float64{0}, []float64{1}))

	x := []float64{5}
	task := d.Start(x)
	assert.Equal(t, 1.0, x[0])

	target := []float64{-10}
	g := make([]float64, 1)
	for round := 0; round < 500; round++ {
		if task == optim.FinalX || task == optim.ErrorTask {
			break
		}
		f := quadraticFG(x, target, g)
		task = d.Iterate(x, f, g)
		assert.GreaterOrEqual(t, x[0], 0.0)
		assert.LessOrEqual(t, x[0], 1.0)
	}
	assert.Equal(t, optim.FinalX, task)
	assert.InDelta(t, 0.0, x[0], 1e-6)
}

// TestNewDriver_RejectsNegativeTolerances checks tolerance validation.
func TestNewDriver_RejectsNegativeTolerances(t *testing.T) {
	_, err := optim.NewDriver(-1, 0, 0, 0)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidArgument, kind)
}

// TestDriver_IterateRejectsShapeMismatch checks x/g length validation.
func TestDriver_IterateRejectsShapeMismatch(t *testing.T) {
	d, err := optim.NewDriver(1e-8, 1e-8, 0, 0)
	require.NoError(t, err)
	x := []float64{1, 2}
	d.Start(x)
	task := d.Iterate(x, 0, []float64{1})
	assert.Equal(t, optim.ErrorTask, task)
	kind, ok := tipierr.KindOf(d.Err())
	require.True(t, ok)
	assert.Equal(t, tipierr.ShapeMismatch, kind)
}
