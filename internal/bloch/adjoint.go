package bloch

import (
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// Adjoint returns drf with drf[t] = ∂L/∂Re(rf[t]) + i·∂L/∂Im(rf[t]) for the
// loss whose sensitivities to the centred final state are auxA and auxB:
//
//	L = Σ Re(conj(auxB)·b) + Re(conj(auxA)·a)
//
// auxA may be nil when the loss does not depend on a. af and bf are the raw
// forward outputs (Result.RawA, Result.RawB); they are not modified.
//
// The pass walks the samples backwards, peeling each gradient phase and
// rotation off the forward state while building the product of the later
// steps as an SU(2) matrix [[ar, -conj(br)], [br, conj(ar)]].
func (s *Simulator) Adjoint(rf []complex128, x, g Encoding, auxA, auxB, af, bf []complex128) ([]complex128, error) {
	if err := checkEncodings(len(rf), x, g); err != nil {
		return nil, err
	}

	n := x.Len()
	if len(auxB) != n {
		return nil, shapeErr("auxb", len(auxB), n)
	}
	if auxA != nil && len(auxA) != len(auxB) {
		return nil, shapeErr("auxa", len(auxA), len(auxB))
	}
	if len(af) != n {
		return nil, shapeErr("af", len(af), n)
	}
	if len(bf) != n {
		return nil, shapeErr("bf", len(bf), n)
	}

	fa := make([]complex128, n)
	fb := make([]complex128, n)
	ar := make([]complex128, n)
	br := make([]complex128, n)

	pm := newPhaseMap(x, g)
	phase := make([]float64, n)

	// Bring the raw pair onto the symmetric phase split the unwinding
	// below assumes.
	pm.sum(phase)
	s.backend.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			z := phasor(phase[i] / 2)
			fa[i] = af[i] * z
			fb[i] = bf[i] * z
			ar[i] = 1
		}
	})

	du := make([]float64, n)
	dv := make([]float64, n)
	drf := make([]complex128, len(rf))

	for t := len(rf) - 1; t >= 0; t-- {
		rot := newRotation(rf[t])
		pu, pv := s.partials(rf[t])
		pm.step(phase, t)

		s.backend.ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				z := phasor(phase[i] / 2)

				a, b := rot.undo(fa[i]*cmplx.Conj(z), fb[i]*z)
				r, q := ar[i]*z, br[i]*z

				var wa complex128
				if auxA != nil {
					wa = auxA[i]
				}
				du[i] = sensitivity(pu, a, b, r, q, wa, auxB[i])
				dv[i] = sensitivity(pv, a, b, r, q, wa, auxB[i])

				fa[i], fb[i] = a, b
				ar[i], br[i] = rot.compose(r, q)
			}
		})

		drf[t] = complex(floats.Sum(du), floats.Sum(dv))
	}

	return drf, nil
}

func (s *Simulator) partials(w complex128) (re, im partial) {
	if s.mode == ModeSmallTip {
		return smallTipPartials()
	}
	return rotationPartials(w)
}

// sensitivity is the first-order change of Re(conj(wb)·b) + Re(conj(wa)·a)
// at the end of the pulse when the current rotation moves along p. (a, b)
// is the forward state entering the rotation and (r, q) the first column of
// the product of everything after it. A zero wa contributes nothing.
func sensitivity(p partial, a, b, r, q, wa, wb complex128) float64 {
	pa, pb := p.apply(a, b)

	db := q*pa + cmplx.Conj(r)*pb
	v := real(cmplx.Conj(wb) * db)
	if wa != 0 {
		da := r*pa - cmplx.Conj(q)*pb
		v += real(cmplx.Conj(wa) * da)
	}
	return v
}
