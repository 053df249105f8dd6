package metrics

import "github.com/san-kum/blochsim/internal/bloch"

// Metric is a bloch.Observer that reduces the step-by-step spin state to a
// single number. Reset is called by the simulator at the start of every
// forward pass.
type Metric interface {
	bloch.Observer
	Name() string
	Value() float64
	Reset()
}

// Attach registers every metric on s.
func Attach(s *bloch.Simulator, ms ...Metric) {
	for _, m := range ms {
		s.AddObserver(m)
	}
}

// Collect snapshots metric values by name.
func Collect(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Default returns the metrics reported by the CLI for every run.
func Default() []Metric {
	return []Metric{
		NewUnitarity(),
		NewExcitation(),
		NewPeakExcitation(),
		NewLongitudinal(),
	}
}
