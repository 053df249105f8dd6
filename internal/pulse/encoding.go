package pulse

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/blochsim/internal/bloch"
)

// ConstantGradient repeats amplitude for nt steps. One amplitude gives the
// vector form, more give an nt×len(amplitude) matrix.
func ConstantGradient(nt int, amplitude []float64) bloch.Encoding {
	if len(amplitude) == 1 {
		g := make([]float64, nt)
		for i := range g {
			g[i] = amplitude[0]
		}
		return bloch.Vector(g)
	}

	dims := len(amplitude)
	data := make([]float64, nt*dims)
	for t := 0; t < nt; t++ {
		copy(data[t*dims:], amplitude)
	}
	return bloch.Matrix(nt, dims, data)
}

// Positions returns n evenly spaced points covering [-fov/2, fov/2]. A single
// point sits at the isocentre.
func Positions(n int, fov float64) []float64 {
	x := make([]float64, n)
	if n < 2 {
		return x
	}
	floats.Span(x, -fov/2, fov/2)
	return x
}

// Grid returns the n^dims points of a regular grid over [-fov/2, fov/2] in
// every dimension as an (n^dims)×dims position matrix. The last dimension
// varies fastest.
func Grid(n, dims int, fov float64) bloch.Encoding {
	axis := Positions(n, fov)
	total := 1
	for d := 0; d < dims; d++ {
		total *= n
	}

	data := make([]float64, total*dims)
	for i := 0; i < total; i++ {
		rem := i
		for d := dims - 1; d >= 0; d-- {
			data[i*dims+d] = axis[rem%n]
			rem /= n
		}
	}
	return bloch.Matrix(total, dims, data)
}
