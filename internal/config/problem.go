package config

import (
	"math"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/compute"
	"github.com/san-kum/blochsim/internal/objective"
	"github.com/san-kum/blochsim/internal/pulse"
)

// Problem is a configuration turned into simulator inputs.
type Problem struct {
	RF        []complex128
	X         bloch.Encoding
	G         bloch.Encoding
	InBand    []bool
	Objective objective.Objective
}

// Build generates the waveform, gradient, positions and objective.
func (c *Config) Build() (*Problem, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rf, err := pulse.Generate(c.Pulse.Shape, pulse.Params{
		Samples: c.Pulse.Samples,
		Flip:    radians(c.Pulse.Flip),
		TB:      c.Pulse.TB,
		Phase:   radians(c.Pulse.Phase),
	})
	if err != nil {
		return nil, err
	}

	g := pulse.ConstantGradient(c.Pulse.Samples, c.Gradient.Amplitude)
	var x bloch.Encoding
	if g.IsVector() {
		x = bloch.Vector(pulse.Positions(c.Positions.Count, c.Positions.FOV))
	} else {
		x = pulse.Grid(c.Positions.Count, c.Dims(), c.Positions.FOV)
	}

	in := objective.InBand(x, c.Objective.Band)
	obj, err := objective.New(c.Objective.Kind, objective.Target{
		InBand:    in,
		Flip:      radians(c.Pulse.Flip),
		Phase:     radians(c.Pulse.Phase),
		WeightOut: c.Objective.WeightOut,
	})
	if err != nil {
		return nil, err
	}

	return &Problem{RF: rf, X: x, G: g, InBand: in, Objective: obj}, nil
}

// Simulator returns a simulator on the configured backend and gradient mode.
func (c *Config) Simulator() (*bloch.Simulator, error) {
	backend, err := compute.ByName(c.Backend)
	if err != nil {
		return nil, err
	}
	mode, err := bloch.ParseGradientMode(c.Mode)
	if err != nil {
		return nil, err
	}
	s := bloch.New(backend)
	s.SetMode(mode)
	return s, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
