package bloch

import (
	"math"
	"math/cmplx"
)

// smallAngle is the |rf| below which the derivative coefficients switch to
// their Taylor series.
const smallAngle = 1e-4

// rotation is the Cayley-Klein form of one RF sample: the SU(2) matrix
// [[c, -conj(s)], [s, c]].
type rotation struct {
	c float64
	s complex128
}

func newRotation(w complex128) rotation {
	sin, cos := math.Sincos(cmplx.Abs(w) / 2)
	return rotation{
		c: cos,
		s: 1i * cmplx.Exp(complex(0, cmplx.Phase(w))) * complex(sin, 0),
	}
}

// apply rotates the spinor (a, b).
func (r rotation) apply(a, b complex128) (complex128, complex128) {
	c := complex(r.c, 0)
	return a*c - b*cmplx.Conj(r.s), a*r.s + b*c
}

// undo applies the inverse rotation.
func (r rotation) undo(a, b complex128) (complex128, complex128) {
	c := complex(r.c, 0)
	return a*c + b*cmplx.Conj(r.s), -a*r.s + b*c
}

// compose right-multiplies the matrix [[a, -conj(b)], [b, conj(a)]] by r and
// returns the first column of the product.
func (r rotation) compose(a, b complex128) (complex128, complex128) {
	c := complex(r.c, 0)
	return a*c - cmplx.Conj(b)*r.s, b*c + cmplx.Conj(a)*r.s
}

// partial is the derivative of the rotation matrix along one real direction
// of the RF sample.
type partial struct {
	dc float64
	ds complex128
}

// apply returns dR·(a, b).
func (p partial) apply(a, b complex128) (complex128, complex128) {
	dc := complex(p.dc, 0)
	return a*dc - b*cmplx.Conj(p.ds), a*p.ds + b*dc
}

// rotationPartials returns dR/dRe(w) and dR/dIm(w).
//
// With r = |w|, C = cos(r/2) and S = i·w·sin(r/2)/r:
//
//	dC/du = -u·q/2,  dS/du = i·q + i·w·u·k
//	dC/dv = -v·q/2,  dS/dv = -q + i·w·v·k
//
// where q = sin(r/2)/r and k = (r·cos(r/2)/2 - sin(r/2))/r³.
func rotationPartials(w complex128) (re, im partial) {
	u, v := real(w), imag(w)
	r := cmplx.Abs(w)

	var q, k float64
	if r < smallAngle {
		r2 := r * r
		q = 0.5 - r2/48
		k = -1.0/24 + r2/960
	} else {
		sin, cos := math.Sincos(r / 2)
		q = sin / r
		k = (r*cos/2 - sin) / (r * r * r)
	}

	re = partial{
		dc: -u * q / 2,
		ds: complex(0, q) + 1i*w*complex(u*k, 0),
	}
	im = partial{
		dc: -v * q / 2,
		ds: complex(-q, 0) + 1i*w*complex(v*k, 0),
	}
	return re, im
}

// smallTipPartials is the rf = 0 limit of rotationPartials: the generator
// of the rotation, independent of the sample.
func smallTipPartials() (re, im partial) {
	return partial{ds: 0.5i}, partial{ds: -0.5}
}

// phasor returns exp(i·phi).
func phasor(phi float64) complex128 {
	sin, cos := math.Sincos(phi)
	return complex(cos, sin)
}
