package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/compute"
)

func runHard(t *testing.T, flip float64, ms ...Metric) {
	t.Helper()
	s := bloch.New(compute.NewSerialBackend())
	Attach(s, ms...)

	rf := make([]complex128, 8)
	for i := range rf {
		rf[i] = complex(flip/8, 0)
	}
	if _, err := s.Forward(rf, bloch.Vector([]float64{0, 0}), bloch.Vector(make([]float64, 8))); err != nil {
		t.Fatalf("forward failed: %v", err)
	}
}

func TestNinetyDegreeMetrics(t *testing.T) {
	u := NewUnitarity()
	e := NewExcitation()
	p := NewPeakExcitation()
	l := NewLongitudinal()
	runHard(t, math.Pi/2, u, e, p, l)

	if u.Value() > 1e-12 {
		t.Errorf("unitarity drift %.3e", u.Value())
	}
	if u.Steps() != 8 {
		t.Errorf("expected 8 steps, got %d", u.Steps())
	}
	if math.Abs(e.Value()-1) > 1e-12 {
		t.Errorf("expected mean |Mxy| = 1, got %f", e.Value())
	}
	if math.Abs(p.Value()-1) > 1e-12 {
		t.Errorf("expected peak |Mxy| = 1, got %f", p.Value())
	}
	if math.Abs(l.Value()) > 1e-12 {
		t.Errorf("expected mean Mz = 0, got %f", l.Value())
	}
}

func TestInversionMetrics(t *testing.T) {
	e := NewExcitation()
	p := NewPeakExcitation()
	l := NewLongitudinal()
	runHard(t, math.Pi, e, p, l)

	if e.Value() > 1e-12 {
		t.Errorf("expected no transverse magnetization, got %f", e.Value())
	}
	// The trajectory passes through 90 degrees halfway.
	if math.Abs(p.Value()-1) > 1e-12 {
		t.Errorf("expected peak |Mxy| = 1, got %f", p.Value())
	}
	if math.Abs(l.Value()+1) > 1e-12 {
		t.Errorf("expected mean Mz = -1, got %f", l.Value())
	}
}

func TestMetricsResetBetweenRuns(t *testing.T) {
	u := NewUnitarity()
	p := NewPeakExcitation()
	runHard(t, math.Pi, u, p)

	s := bloch.New(nil)
	Attach(s, u, p)
	if _, err := s.Forward(make([]complex128, 3), bloch.Vector([]float64{0}), bloch.Vector(make([]float64, 3))); err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	if u.Steps() != 3 {
		t.Errorf("expected reset to 3 steps, got %d", u.Steps())
	}
	if p.Value() != 0 {
		t.Errorf("expected peak 0 for zero pulse, got %f", p.Value())
	}
}

func TestUnitarityNaNSticks(t *testing.T) {
	u := NewUnitarity()
	u.OnStep(0, []complex128{complex(math.NaN(), 0)}, []complex128{0})
	u.OnStep(1, []complex128{1}, []complex128{0})
	if !math.IsNaN(u.Value()) {
		t.Errorf("expected NaN to persist, got %f", u.Value())
	}
}

func TestCollect(t *testing.T) {
	ms := Default()
	vals := Collect(ms...)
	if len(vals) != len(ms) {
		t.Fatalf("expected %d values, got %d", len(ms), len(vals))
	}
	if vals["mean_mz"] != 1 {
		t.Errorf("expected untouched mean_mz = 1, got %f", vals["mean_mz"])
	}
}
