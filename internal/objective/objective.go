// Package objective provides scalar losses over the final spin state and the
// adjoint seeds they induce.
//
// Every Objective is evaluated on the re-centred pair (Result.A, Result.B).
// The seeds satisfy dL = Σ Re(conj(auxB)·db) + Re(conj(auxA)·da), which is
// the form bloch.Adjoint consumes. A nil auxA means the loss ignores a.
package objective

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/san-kum/blochsim/internal/bloch"
)

type Objective interface {
	Name() string
	Evaluate(a, b []complex128) (loss float64, auxA, auxB []complex128)
}

// Linear is L = Σ Re(conj(cb)·b) + Re(conj(ca)·a). Its seeds are the
// coefficients themselves.
type Linear struct {
	CA, CB []complex128
}

func (l *Linear) Name() string { return "linear" }

func (l *Linear) Evaluate(a, b []complex128) (float64, []complex128, []complex128) {
	loss := 0.0
	for i := range b {
		loss += real(cmplx.Conj(l.CB[i]) * b[i])
		if l.CA != nil {
			loss += real(cmplx.Conj(l.CA[i]) * a[i])
		}
	}
	auxB := append([]complex128(nil), l.CB...)
	var auxA []complex128
	if l.CA != nil {
		auxA = append([]complex128(nil), l.CA...)
	}
	return loss, auxA, auxB
}

// Power is L = Σ |b|², the transverse excitation power of the ensemble.
type Power struct{}

func (Power) Name() string { return "power" }

func (Power) Evaluate(a, b []complex128) (float64, []complex128, []complex128) {
	loss := 0.0
	auxB := make([]complex128, len(b))
	for i, v := range b {
		loss += norm2(v)
		auxB[i] = 2 * v
	}
	return loss, nil, auxB
}

// Profile is the weighted least-squares match L = Σ w·|b - target|².
type Profile struct {
	Target []complex128
	Weight []float64
}

func (p *Profile) Name() string { return "profile" }

func (p *Profile) Evaluate(a, b []complex128) (float64, []complex128, []complex128) {
	loss := 0.0
	auxB := make([]complex128, len(b))
	for i, v := range b {
		r := v - p.Target[i]
		loss += p.Weight[i] * norm2(r)
		auxB[i] = complex(2*p.Weight[i], 0) * r
	}
	return loss, nil, auxB
}

// Transverse matches Mxy = 2·conj(a)·b: L = Σ w·|Mxy - target|². It depends
// on both parameters, so both seeds are set.
type Transverse struct {
	Target []complex128
	Weight []float64
}

func (m *Transverse) Name() string { return "mxy" }

func (m *Transverse) Evaluate(a, b []complex128) (float64, []complex128, []complex128) {
	loss := 0.0
	auxA := make([]complex128, len(a))
	auxB := make([]complex128, len(b))
	for i := range b {
		r := 2*cmplx.Conj(a[i])*b[i] - m.Target[i]
		loss += m.Weight[i] * norm2(r)
		w := complex(4*m.Weight[i], 0)
		auxA[i] = w * cmplx.Conj(r) * b[i]
		auxB[i] = w * a[i] * r
	}
	return loss, auxA, auxB
}

// Longitudinal matches Mz = |a|² - |b|²: L = Σ w·(Mz - target)².
type Longitudinal struct {
	Target []float64
	Weight []float64
}

func (m *Longitudinal) Name() string { return "mz" }

func (m *Longitudinal) Evaluate(a, b []complex128) (float64, []complex128, []complex128) {
	loss := 0.0
	auxA := make([]complex128, len(a))
	auxB := make([]complex128, len(b))
	for i := range b {
		e := norm2(a[i]) - norm2(b[i]) - m.Target[i]
		loss += m.Weight[i] * e * e
		s := complex(4*m.Weight[i]*e, 0)
		auxA[i] = s * a[i]
		auxB[i] = -s * b[i]
	}
	return loss, auxA, auxB
}

// Target describes an ideal slice: spins inside the band see a pulse of
// the given flip and phase, spins outside see nothing.
type Target struct {
	InBand    []bool
	Flip      float64
	Phase     float64
	WeightOut float64
}

func (t Target) weights() []float64 {
	w := make([]float64, len(t.InBand))
	for i, in := range t.InBand {
		if in {
			w[i] = 1
		} else {
			w[i] = t.WeightOut
		}
	}
	return w
}

var kinds = map[string]func(Target) Objective{
	"power": func(Target) Objective { return Power{} },
	"profile": func(t Target) Objective {
		// An on-resonance rotation by Flip about the Phase axis leaves
		// b = i·e^{i·Phase}·sin(Flip/2).
		bd := cmplx.Rect(math.Sin(t.Flip/2), t.Phase+math.Pi/2)
		target := make([]complex128, len(t.InBand))
		for i, in := range t.InBand {
			if in {
				target[i] = bd
			}
		}
		return &Profile{Target: target, Weight: t.weights()}
	},
	"mxy": func(t Target) Objective {
		md := cmplx.Rect(math.Sin(t.Flip), t.Phase+math.Pi/2)
		target := make([]complex128, len(t.InBand))
		for i, in := range t.InBand {
			if in {
				target[i] = md
			}
		}
		return &Transverse{Target: target, Weight: t.weights()}
	},
	"mz": func(t Target) Objective {
		target := make([]float64, len(t.InBand))
		for i, in := range t.InBand {
			target[i] = 1
			if in {
				target[i] = math.Cos(t.Flip)
			}
		}
		return &Longitudinal{Target: target, Weight: t.weights()}
	},
}

// New builds the named objective for a slice target.
func New(kind string, t Target) (Objective, error) {
	fn, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown objective: %s", kind)
	}
	return fn(t), nil
}

// Kinds lists the objectives New accepts.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InBand marks the spins whose every coordinate lies within ±band/2.
func InBand(x bloch.Encoding, band float64) []bool {
	in := make([]bool, x.Len())
	for i := range in {
		in[i] = true
		for _, v := range x.Row(i) {
			if math.Abs(v) > band/2 {
				in[i] = false
				break
			}
		}
	}
	return in
}

func norm2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
