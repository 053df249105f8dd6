package bloch

import (
	"fmt"

	"github.com/san-kum/blochsim/internal/compute"
)

// GradientMode selects how Adjoint differentiates each RF rotation.
type GradientMode int

const (
	// ModeExact differentiates the rotation step exactly.
	ModeExact GradientMode = iota
	// ModeSmallTip uses the rotation generator at rf = 0, the linearised
	// derivative of classic optimal-control pulse design.
	ModeSmallTip
)

func (m GradientMode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeSmallTip:
		return "smalltip"
	default:
		return fmt.Sprintf("GradientMode(%d)", int(m))
	}
}

// ParseGradientMode maps a configuration name to a GradientMode.
func ParseGradientMode(name string) (GradientMode, error) {
	switch name {
	case "", "exact":
		return ModeExact, nil
	case "smalltip", "small-tip":
		return ModeSmallTip, nil
	default:
		return ModeExact, fmt.Errorf("unknown gradient mode: %s", name)
	}
}

// Observer sees the raw (pre-correction) spin state after every forward
// step. The slices are live simulator buffers and must not be retained or
// modified.
type Observer interface {
	OnStep(t int, a, b []complex128)
}

type resetter interface {
	Reset()
}

// Result is the outcome of a forward simulation.
type Result struct {
	// A and B are the final Cayley-Klein parameters with the gradient phase
	// re-centred on the pulse.
	A, B []complex128
	// RawA and RawB are the recurrence output before re-centring. Adjoint
	// takes these.
	RawA, RawB []complex128
}

// Simulator runs forward and adjoint passes on a compute backend.
//
// A Simulator without observers is safe for concurrent use. Observers are
// called from the goroutine running Forward, so a Simulator carrying them
// must not run two passes at once.
type Simulator struct {
	backend   compute.Backend
	mode      GradientMode
	observers []Observer
}

// New returns a simulator in exact gradient mode. A nil backend runs
// serially.
func New(backend compute.Backend) *Simulator {
	if backend == nil {
		backend = compute.NewSerialBackend()
	}
	return &Simulator{
		backend:   backend,
		mode:      ModeExact,
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) SetMode(m GradientMode)   { s.mode = m }
func (s *Simulator) Mode() GradientMode       { return s.mode }
func (s *Simulator) Backend() compute.Backend { return s.backend }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }

var defaultSimulator = New(compute.NewSerialBackend())

// Forward simulates rf with positions x and gradient g on the serial
// backend. See Simulator.Forward.
func Forward(rf []complex128, x, g Encoding) (*Result, error) {
	return defaultSimulator.Forward(rf, x, g)
}

// Adjoint computes the RF gradient on the serial backend in exact mode. See
// Simulator.Adjoint.
func Adjoint(rf []complex128, x, g Encoding, auxA, auxB, af, bf []complex128) ([]complex128, error) {
	return defaultSimulator.Adjoint(rf, x, g, auxA, auxB, af, bf)
}
