package cost_test

import (
	"testing"

	"github.com/emmt/tipi-go/array"
	"github.com/emmt/tipi-go/convolve"
	"github.com/emmt/tipi-go/cost"
	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
	"github.com/emmt/tipi-go/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityCost(t *testing.T, n int) (*cost.Operator, *vector.VectorSpace[float64]) {
	t.Helper()
	space := vector.NewSpace[float64](shape.MustNew(n))
	cnvl, err := convolve.NewCenteredOperator(space, space, shape.MustNew(n))
	require.NoError(t, err)
	psf := array.Create[float64](shape.MustNew(n))
	require.NoError(t, psf.Set(1, 0))
	require.NoError(t, cnvl.SetPSF(psf, []int{0}, false))
	return cost.NewOperator(cnvl), space
}

// TestCost_ZeroAtTarget checks that with uniform weights, a Dirac PSF,
// and data equal to x, the cost and gradient are both zero.
func TestCost_ZeroAtTarget(t *testing.T) {
	op, space := newIdentityCost(t, 6)
	target, err := space.Wrap([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.NoError(t, op.SetData(target))

	f, err := op.Cost(1, target)
	require.NoError(t, err)
	assert.InDelta(t, 0, f, 1e-9)

	g := space.Create()
	f, err = op.CostGrad(1, target, g, true)
	require.NoError(t, err)
	assert.InDelta(t, 0, f, 1e-9)
	for _, v := range g.Buffer() {
		assert.InDelta(t, 0, v, 1e-9)
	}
}

// TestCost_NonzeroResidual checks the quadratic cost against a
// hand-computed value when x differs from the target data.
func TestCost_NonzeroResidual(t *testing.T) {
	op, space := newIdentityCost(t, 4)
	target, err := space.Wrap([]float64{0, 0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, op.SetData(target))

	x, err := space.Wrap([]float64{1, 2, 0, 0})
	require.NoError(t, err)

	f, err := op.Cost(2, x)
	require.NoError(t, err)
	// (2/2) * (1^2 + 2^2) = 5
	assert.InDelta(t, 5, f, 1e-9)
}

// TestCost_RequiresData checks Cost fails with InvalidState before
// SetData has been called.
func TestCost_RequiresData(t *testing.T) {
	op, space := newIdentityCost(t, 4)
	x := space.Create()
	_, err := op.Cost(1, x)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidState, kind)
}

// TestCostGrad_Accumulates checks that CostGrad with clear=false adds
// to an existing gradient rather than overwriting it.
func TestCostGrad_Accumulates(t *testing.T) {
	op, space := newIdentityCost(t, 4)
	target, err := space.Wrap([]float64{0, 0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, op.SetData(target))

	x, err := space.Wrap([]float64{1, 0, 0, 0})
	require.NoError(t, err)

	g, err := space.Wrap([]float64{10, 0, 0, 0})
	require.NoError(t, err)
	_, err = op.CostGrad(1, x, g, false)
	require.NoError(t, err)
	assert.InDelta(t, 11, g.Buffer()[0], 1e-9)
}
