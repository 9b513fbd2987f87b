package psf

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/internal/tipierr"
)

// SetDefocus interprets vec by length:
//   - 1: (nuI)
//   - 2: (nuI, nuS)
//   - 3: (nuI, deltaX, deltaY)
//   - 4: (nuI, deltaX, deltaY, nuS), requires a non-zero z-depth set
//     via SetZDepth, else fails with InvalidState.
//
// Recomputes the axial wavevector fields, the combined defocus phase
// field psi, and re-validates the pupil mask against the region where
// every active wavevector term stays real.
func (m *WideFieldModel) SetDefocus(vec []float64) error {
	switch len(vec) {
	case 1:
		m.nuI = vec[0]
		m.nuS, m.hasNuS = 0, false
		m.deltaX, m.deltaY = 0, 0
	case 2:
		m.nuI, m.nuS = vec[0], vec[1]
		m.hasNuS = true
		m.deltaX, m.deltaY = 0, 0
	case 3:
		m.nuI, m.deltaX, m.deltaY = vec[0], vec[1], vec[2]
		m.nuS, m.hasNuS = 0, false
	case 4:
		if m.zdepth == 0 {
			return psfErrorf("SetDefocus", tipierr.InvalidState, fmt.Errorf("defocus vector of length 4 requires a non-zero z-depth"))
		}
		m.nuI, m.deltaX, m.deltaY, m.nuS = vec[0], vec[1], vec[2], vec[3]
		m.hasNuS = true
	default:
		return psfErrorf("SetDefocus", tipierr.InvalidArgument, fmt.Errorf("defocus vector length must be 1..4, got %d", len(vec)))
	}

	m.recomputeDefocusFields()
	for i, ok := range m.mask {
		if !ok {
			m.rho[i] = 0
			m.phi[i] = 0
		}
	}
	m.dirty = true
	return nil
}

// recomputeDefocusFields rebuilds the axial wavevector fields and the
// combined defocus phase psi = kz1 + zdepth*kz2, where
// kz1 = sqrt(nuI^2 - (fx-deltaX)^2 - (fy-deltaY)^2), the delta shift
// nesting inside the radicand as a literal translation of the
// frequency coordinate (rather than a separate linear phase ramp
// added outside the square root). kz2, the second-medium term, is
// shifted by the same (deltaX, deltaY) since both terms describe the
// same physical ray angle through a possibly decentered pupil. The
// feasibility mask, by contrast, is evaluated on the unshifted
// wavevector magnitude, matching the pupil-mask definition that is
// independent of the delta shift applied to psi itself.
func (m *WideFieldModel) recomputeDefocusFields() {
	for i := range m.psi {
		fx, fy := m.fx[i], m.fy[i]
		r2 := fx*fx + fy*fy

		feasible := m.opticalMask[i] && m.nuI*m.nuI-r2 >= 0

		sx, sy := fx-m.deltaX, fy-m.deltaY
		kz1sq := m.nuI*m.nuI - sx*sx - sy*sy
		var kz1 float64
		if kz1sq >= 0 {
			kz1 = math.Sqrt(kz1sq)
		} else {
			feasible = false
		}
		m.kz1[i] = kz1

		var kz2 float64
		if m.hasNuS {
			if m.nuS*m.nuS-r2 < 0 {
				feasible = false
			}
			kz2sq := m.nuS*m.nuS - sx*sx - sy*sy
			if kz2sq < 0 {
				feasible = false
			} else {
				kz2 = math.Sqrt(kz2sq)
			}
		}
		m.kz2[i] = kz2

		m.mask[i] = feasible

		psi := kz1 + m.zdepth*kz2
		if !feasible {
			psi = 0
		}
		m.psi[i] = psi
	}
}
