package pulse

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Params describes a waveform request.
type Params struct {
	Samples int
	Flip    float64 // radians
	TB      float64 // time-bandwidth product, shaped pulses only
	Phase   float64 // transverse axis in radians
}

// Hard returns a rectangular pulse.
func Hard(p Params) []complex128 {
	rf := make([]complex128, p.Samples)
	if p.Samples == 0 {
		return rf
	}
	v := cmplx.Rect(p.Flip/float64(p.Samples), p.Phase)
	for i := range rf {
		rf[i] = v
	}
	return rf
}

// Sinc returns a Hamming-windowed sinc with TB zero crossings across the
// pulse, scaled so that its samples sum to Flip.
func Sinc(p Params) []complex128 {
	n := p.Samples
	rf := make([]complex128, n)
	if n == 0 {
		return rf
	}
	tb := p.TB
	if tb <= 0 {
		tb = 4
	}

	env := make([]float64, n)
	for i := range env {
		// Sample centres span (-1/2, 1/2) so even lengths stay symmetric.
		u := (float64(i)+0.5)/float64(n) - 0.5
		window := 0.54 + 0.46*math.Cos(2*math.Pi*u)
		env[i] = window * sinc(tb*u)
	}

	total := floats.Sum(env)
	if total != 0 {
		floats.Scale(p.Flip/total, env)
	}
	axis := cmplx.Rect(1, p.Phase)
	for i, v := range env {
		rf[i] = complex(v, 0) * axis
	}
	return rf
}

// Gaussian returns a Gaussian envelope truncated at ±TB/2 standard
// deviations, scaled so that its samples sum to Flip.
func Gaussian(p Params) []complex128 {
	n := p.Samples
	rf := make([]complex128, n)
	if n == 0 {
		return rf
	}
	width := p.TB
	if width <= 0 {
		width = 4
	}

	env := make([]float64, n)
	for i := range env {
		u := ((float64(i)+0.5)/float64(n) - 0.5) * width
		env[i] = math.Exp(-u * u / 2)
	}
	floats.Scale(p.Flip/floats.Sum(env), env)

	axis := cmplx.Rect(1, p.Phase)
	for i, v := range env {
		rf[i] = complex(v, 0) * axis
	}
	return rf
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

var shapes = map[string]func(Params) []complex128{
	"hard":     Hard,
	"sinc":     Sinc,
	"gaussian": Gaussian,
}

// Generate builds the named shape.
func Generate(shape string, p Params) ([]complex128, error) {
	fn, ok := shapes[shape]
	if !ok {
		return nil, fmt.Errorf("unknown pulse shape: %s", shape)
	}
	if p.Samples < 0 {
		return nil, fmt.Errorf("pulse %s: negative sample count %d", shape, p.Samples)
	}
	return fn(p), nil
}

// Shapes lists the registered shape names in order.
func Shapes() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
