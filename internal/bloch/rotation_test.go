package bloch

import (
	"math"
	"math/cmplx"
	"testing"
)

var samples = []complex128{
	0,
	1e-7 + 2e-7i,
	9.99e-5,
	1.001e-4i,
	0.3 - 0.2i,
	complex(math.Pi, 0),
	-2.5 + 1.1i,
	5 + 4i,
}

func TestRotationIsUnitary(t *testing.T) {
	for _, w := range samples {
		r := newRotation(w)
		if d := r.c*r.c + norm2(r.s); math.Abs(d-1) > 1e-14 {
			t.Errorf("w=%v: c² + |s|² = %.16f", w, d)
		}

		a, b := complex(0.6, 0.1), complex(-0.2, 0.7653)
		ra, rb := r.apply(a, b)
		ua, ub := r.undo(ra, rb)
		if cmplx.Abs(ua-a) > 1e-14 || cmplx.Abs(ub-b) > 1e-14 {
			t.Errorf("w=%v: undo(apply) = (%v, %v), want (%v, %v)", w, ua, ub, a, b)
		}
	}
}

func TestRotationCompose(t *testing.T) {
	r := newRotation(0.7 + 0.4i)

	a, b := r.compose(1, 0)
	if cmplx.Abs(a-complex(r.c, 0)) > 1e-15 || cmplx.Abs(b-r.s) > 1e-15 {
		t.Errorf("identity·R first column = (%v, %v), want (%v, %v)", a, b, r.c, r.s)
	}

	// Building Ra·Rb by right-multiplication matches applying Rb then Ra.
	ra, rb := newRotation(-1.3+0.2i), newRotation(0.5+2i)
	ca, cb := ra.compose(1, 0)
	ca, cb = rb.compose(ca, cb)
	pa, pb := rb.apply(1, 0)
	pa, pb = ra.apply(pa, pb)
	if cmplx.Abs(ca-pa) > 1e-15 || cmplx.Abs(cb-pb) > 1e-15 {
		t.Errorf("compose = (%v, %v), apply = (%v, %v)", ca, cb, pa, pb)
	}
}

func TestRotationPartials(t *testing.T) {
	const h = 1e-6

	for _, w := range samples {
		re, im := rotationPartials(w)

		for _, tc := range []struct {
			dir  complex128
			want partial
		}{
			{1, re},
			{1i, im},
		} {
			up := newRotation(w + complex(h, 0)*tc.dir)
			down := newRotation(w - complex(h, 0)*tc.dir)
			dc := (up.c - down.c) / (2 * h)
			ds := (up.s - down.s) / complex(2*h, 0)

			if math.Abs(dc-tc.want.dc) > 1e-7 {
				t.Errorf("w=%v dir=%v: dc = %.9f, finite difference %.9f", w, tc.dir, tc.want.dc, dc)
			}
			if cmplx.Abs(ds-tc.want.ds) > 1e-7 {
				t.Errorf("w=%v dir=%v: ds = %v, finite difference %v", w, tc.dir, tc.want.ds, ds)
			}
		}
	}
}

func TestSmallTipPartialsMatchOrigin(t *testing.T) {
	re, im := rotationPartials(0)
	sre, sim := smallTipPartials()
	if re != sre || im != sim {
		t.Errorf("partials at zero (%v, %v) differ from generator (%v, %v)", re, im, sre, sim)
	}
}

func TestPhasor(t *testing.T) {
	for _, phi := range []float64{0, 0.5, -1.2, math.Pi} {
		if cmplx.Abs(phasor(phi)-cmplx.Exp(complex(0, phi))) > 1e-15 {
			t.Errorf("phasor(%f) mismatch", phi)
		}
	}
}
