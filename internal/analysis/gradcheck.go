package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/objective"
)

// GradSample compares one RF sample's gradient.
type GradSample struct {
	T        int
	Analytic complex128
	Numeric  complex128
	RelErr   float64
}

type GradReport struct {
	Loss      float64
	Samples   []GradSample
	MaxRelErr float64
	Worst     int
}

// relFloor keeps samples with a vanishing gradient from dominating the
// relative error.
const relFloor = 1e-2

// GradCheck evaluates obj at rf, runs the adjoint with the objective's seeds
// and compares every sample with central differences of step h along the
// real and imaginary axes.
func GradCheck(s *bloch.Simulator, rf []complex128, x, g bloch.Encoding, obj objective.Objective, h float64) (*GradReport, error) {
	if h <= 0 {
		return nil, fmt.Errorf("gradcheck: step must be positive, got %g", h)
	}

	res, err := s.Forward(rf, x, g)
	if err != nil {
		return nil, err
	}
	loss, auxA, auxB := obj.Evaluate(res.A, res.B)
	drf, err := s.Adjoint(rf, x, g, auxA, auxB, res.RawA, res.RawB)
	if err != nil {
		return nil, err
	}

	eval := func(p []complex128) (float64, error) {
		r, err := s.Forward(p, x, g)
		if err != nil {
			return 0, err
		}
		l, _, _ := obj.Evaluate(r.A, r.B)
		return l, nil
	}

	rep := &GradReport{Loss: loss, Samples: make([]GradSample, len(rf)), Worst: -1}
	probe := append([]complex128(nil), rf...)
	for k := range rf {
		var parts [2]float64
		for j, dir := range []complex128{1, 1i} {
			step := complex(h, 0) * dir
			probe[k] = rf[k] + step
			up, err := eval(probe)
			if err != nil {
				return nil, err
			}
			probe[k] = rf[k] - step
			down, err := eval(probe)
			if err != nil {
				return nil, err
			}
			probe[k] = rf[k]
			parts[j] = (up - down) / (2 * h)
		}

		num := complex(parts[0], parts[1])
		rel := cmplx.Abs(drf[k]-num) / math.Max(cmplx.Abs(num), relFloor)
		rep.Samples[k] = GradSample{T: k, Analytic: drf[k], Numeric: num, RelErr: rel}
		if rel > rep.MaxRelErr || math.IsNaN(rel) {
			rep.MaxRelErr = rel
			rep.Worst = k
		}
	}
	return rep, nil
}
