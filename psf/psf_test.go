package psf_test

import (
	"testing"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/psf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T) *psf.WideFieldModel {
	t.Helper()
	m, err := psf.New(1.4, 542e-9, 1.518, 64.5e-9, 160e-9, 8, 8, 4, 0)
	require.NoError(t, err)
	require.NoError(t, m.SetRho([]float64{1}))
	require.NoError(t, m.SetPhi([]float64{0}))
	require.NoError(t, m.SetDefocus([]float64{m.Ni / m.Lambda, 0, 0}))
	return m
}

// TestComputePSF_NonNegativeReal checks the PSF cube is real and
// non-negative by construction (sum of squares scaled by a positive
// constant).
func TestComputePSF_NonNegativeReal(t *testing.T) {
	m := newModel(t)
	p, err := m.PSF()
	require.NoError(t, err)
	assert.Len(t, p, m.Nz*m.Nx*m.Ny)
	for _, v := range p {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

// TestComputePSF_ClearsDirty checks the dirty flag transitions.
func TestComputePSF_ClearsDirty(t *testing.T) {
	m := newModel(t)
	assert.True(t, m.Dirty())
	_, err := m.PSF()
	require.NoError(t, err)
	assert.False(t, m.Dirty())

	require.NoError(t, m.SetRho([]float64{1, 0.1}))
	assert.True(t, m.Dirty())
}

// TestSetRho_RejectsEmptyOrZero checks beta validation.
func TestSetRho_RejectsEmptyOrZero(t *testing.T) {
	m := newModel(t)
	err := m.SetRho(nil)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidArgument, kind)

	err = m.SetRho([]float64{0, 0})
	kind, ok = tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidArgument, kind)
}

// TestSetDefocus_RejectsLen4WithoutZDepth checks the zdepth
// precondition for a four-element defocus vector.
func TestSetDefocus_RejectsLen4WithoutZDepth(t *testing.T) {
	m := newModel(t)
	err := m.SetDefocus([]float64{1, 0, 0, 1})
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidState, kind)

	m.SetZDepth(1e-6)
	require.NoError(t, m.SetDefocus([]float64{1, 0, 0, 1}))
}

// TestSetDefocus_RejectsBadLength checks the 1..4 length contract.
func TestSetDefocus_RejectsBadLength(t *testing.T) {
	m := newModel(t)
	err := m.SetDefocus([]float64{1, 2, 3, 4, 5})
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidArgument, kind)
}

// TestArea_MatchesMaskCount checks Area is the sqrt of the pupil
// support's pixel count and is bounded by the full grid.
func TestArea_MatchesMaskCount(t *testing.T) {
	m := newModel(t)
	area := m.Area()
	assert.Greater(t, area, 0.0)
	assert.LessOrEqual(t, area, float64(m.Nx*m.Ny))
}

// TestApplyJRho_FiniteDifferenceConsistency checks the adjoint
// identity <apply_J_rho(q), deltaBeta> ~= <q, (psf(beta+eps*deltaBeta)
// - psf(beta))/eps> for a small perturbation.
func TestApplyJRho_FiniteDifferenceConsistency(t *testing.T) {
	m := newModel(t)
	require.NoError(t, m.SetRho([]float64{1, 0.2, -0.1}))
	base, err := m.PSF()
	require.NoError(t, err)
	base = append([]float64(nil), base...)

	q := make([]float64, len(base))
	for i := range q {
		q[i] = 1
	}

	jRho, err := m.ApplyJRho(q)
	require.NoError(t, err)

	deltaBeta := []float64{0.01, -0.02, 0.03}
	var lhs float64
	for k, d := range deltaBeta {
		lhs += jRho[k] * d
	}

	eps := 1e-4
	perturbed := make([]float64, len(deltaBeta))
	betaBase := []float64{1, 0.2, -0.1}
	for i := range perturbed {
		perturbed[i] = betaBase[i] + eps*deltaBeta[i]
	}
	require.NoError(t, m.SetRho(perturbed))
	after, err := m.PSF()
	require.NoError(t, err)

	var rhs float64
	for i := range q {
		rhs += q[i] * (after[i] - base[i]) / eps
	}

	assert.InDelta(t, rhs, lhs, 0.5*(1+assertAbs(rhs)))
}

// TestApplyJPhi_FiniteDifferenceConsistency checks the adjoint
// identity <apply_J_phi(q), deltaAlpha> ~= <q, (psf(alpha+eps*deltaAlpha)
// - psf(alpha))/eps> for a small perturbation.
func TestApplyJPhi_FiniteDifferenceConsistency(t *testing.T) {
	m := newModel(t)
	alphaBase := []float64{0, 0.15, -0.05}
	require.NoError(t, m.SetPhi(alphaBase))
	base, err := m.PSF()
	require.NoError(t, err)
	base = append([]float64(nil), base...)

	q := make([]float64, len(base))
	for i := range q {
		q[i] = 1
	}

	jPhi, err := m.ApplyJPhi(q)
	require.NoError(t, err)

	deltaAlpha := []float64{0.02, -0.01, 0.03}
	var lhs float64
	for k, d := range deltaAlpha {
		lhs += jPhi[k] * d
	}

	eps := 1e-4
	perturbed := make([]float64, len(deltaAlpha))
	for i := range perturbed {
		perturbed[i] = alphaBase[i] + eps*deltaAlpha[i]
	}
	require.NoError(t, m.SetPhi(perturbed))
	after, err := m.PSF()
	require.NoError(t, err)

	var rhs float64
	for i := range q {
		rhs += q[i] * (after[i] - base[i]) / eps
	}

	assert.InDelta(t, rhs, lhs, 0.5*(1+assertAbs(rhs)))
}

// TestApplyJDefocus_FiniteDifferenceConsistency checks the adjoint
// identity <apply_J_defocus(q), deltaDefocus> ~= <q,
// (psf(defocus+eps*deltaDefocus) - psf(defocus))/eps> for a small
// perturbation of all four active defocus parameters (nuI, deltaX,
// deltaY, nuS), exercising the nested frequency-shift psi formula.
func TestApplyJDefocus_FiniteDifferenceConsistency(t *testing.T) {
	m := newModel(t)
	m.SetZDepth(1e-6)
	nuI0 := m.Ni / m.Lambda
	dx0, dy0 := 5e4, -3e4
	nuS0 := nuI0 * 1.01
	require.NoError(t, m.SetDefocus([]float64{nuI0, dx0, dy0, nuS0}))

	base, err := m.PSF()
	require.NoError(t, err)
	base = append([]float64(nil), base...)

	q := make([]float64, len(base))
	for i := range q {
		q[i] = 1
	}

	jDef, err := m.ApplyJDefocus(q)
	require.NoError(t, err)
	assert.True(t, jDef.HasDeltas)
	assert.True(t, jDef.HasNuS)

	deltaVec := []float64{1e3, 2e2, -1.5e2, 5e2} // dNuI, dDeltaX, dDeltaY, dNuS
	lhs := jDef.NuI*deltaVec[0] + jDef.DeltaX*deltaVec[1] + jDef.DeltaY*deltaVec[2] + jDef.NuS*deltaVec[3]

	eps := 1e-3
	perturbed := []float64{
		nuI0 + eps*deltaVec[0],
		dx0 + eps*deltaVec[1],
		dy0 + eps*deltaVec[2],
		nuS0 + eps*deltaVec[3],
	}
	require.NoError(t, m.SetDefocus(perturbed))
	after, err := m.PSF()
	require.NoError(t, err)

	var rhs float64
	for i := range q {
		rhs += q[i] * (after[i] - base[i]) / eps
	}

	assert.InDelta(t, rhs, lhs, 0.5*(1+assertAbs(rhs)))
}

func assertAbs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// TestNew_WithLoggerReceivesActivity checks the WithLogger option
// wires a caller-supplied sink instead of the silent default.
func TestNew_WithLoggerReceivesActivity(t *testing.T) {
	var lines []string
	recorder := recordingLogger{lines: &lines}
	m, err := psf.New(1.4, 542e-9, 1.518, 64.5e-9, 160e-9, 4, 4, 2, 0, psf.WithLogger(recorder))
	require.NoError(t, err)
	require.NoError(t, m.SetRho([]float64{1}))
	require.NoError(t, m.SetPhi([]float64{0}))
	require.NoError(t, m.SetDefocus([]float64{m.Ni / m.Lambda, 0, 0}))
	_, err = m.PSF()
	require.NoError(t, err)

	assert.NotEmpty(t, lines)
}

type recordingLogger struct {
	lines *[]string
}

func (r recordingLogger) Debugf(format string, args ...interface{}) {
	*r.lines = append(*r.lines, format)
}
func (r recordingLogger) Infof(format string, args ...interface{}) {
	*r.lines = append(*r.lines, format)
}
func (r recordingLogger) Warnf(format string, args ...interface{}) {
	*r.lines = append(*r.lines, format)
}
