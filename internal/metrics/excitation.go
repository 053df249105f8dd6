package metrics

import (
	"math"
	"math/cmplx"
)

// Excitation is the ensemble mean of |Mxy| = 2·|a|·|b| after the most recent
// step. The gradient phase does not change it, so the raw state suffices.
type Excitation struct {
	name    string
	current float64
	samples int
}

func NewExcitation() *Excitation {
	return &Excitation{name: "mean_mxy"}
}

func (e *Excitation) Name() string { return e.name }

func (e *Excitation) OnStep(t int, a, b []complex128) {
	e.current = meanTransverse(a, b)
	e.samples++
}

func (e *Excitation) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.current
}

func (e *Excitation) Reset() {
	e.current = 0
	e.samples = 0
}

// PeakExcitation is the largest single-spin |Mxy| reached at any step.
type PeakExcitation struct {
	name string
	peak float64
}

func NewPeakExcitation() *PeakExcitation {
	return &PeakExcitation{name: "peak_mxy"}
}

func (p *PeakExcitation) Name() string { return p.name }

func (p *PeakExcitation) OnStep(t int, a, b []complex128) {
	for i := range a {
		p.peak = math.Max(p.peak, 2*cmplx.Abs(a[i])*cmplx.Abs(b[i]))
	}
}

func (p *PeakExcitation) Value() float64 { return p.peak }

func (p *PeakExcitation) Reset() { p.peak = 0 }

// Longitudinal is the ensemble mean of Mz = |a|² - |b|² after the most recent
// step; it starts at 1 and reaches -1 for a perfect inversion.
type Longitudinal struct {
	name    string
	current float64
}

func NewLongitudinal() *Longitudinal {
	return &Longitudinal{name: "mean_mz", current: 1}
}

func (l *Longitudinal) Name() string { return l.name }

func (l *Longitudinal) OnStep(t int, a, b []complex128) {
	if len(a) == 0 {
		return
	}
	sum := 0.0
	for i := range a {
		sum += real(a[i])*real(a[i]) + imag(a[i])*imag(a[i]) -
			real(b[i])*real(b[i]) - imag(b[i])*imag(b[i])
	}
	l.current = sum / float64(len(a))
}

func (l *Longitudinal) Value() float64 { return l.current }

func (l *Longitudinal) Reset() { l.current = 1 }

func meanTransverse(a, b []complex128) float64 {
	if len(a) == 0 {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += 2 * cmplx.Abs(a[i]) * cmplx.Abs(b[i])
	}
	return sum / float64(len(a))
}
