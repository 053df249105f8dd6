package bloch

import (
	"math"
	"math/cmplx"
)

// Magnetization converts final spinors to the magnetization of spins that
// started at equilibrium (Mz = 1): Mxy = 2·conj(a)·b and Mz = |a|² - |b|².
func Magnetization(a, b []complex128) (mxy []complex128, mz []float64) {
	n := min(len(a), len(b))
	mxy = make([]complex128, n)
	mz = make([]float64, n)
	for i := 0; i < n; i++ {
		mxy[i] = 2 * cmplx.Conj(a[i]) * b[i]
		mz[i] = norm2(a[i]) - norm2(b[i])
	}
	return mxy, mz
}

// UnitarityError is max_i | |a_i|² + |b_i|² - 1 |.
func UnitarityError(a, b []complex128) float64 {
	worst := 0.0
	for i := range a {
		if i >= len(b) {
			break
		}
		d := math.Abs(norm2(a[i]) + norm2(b[i]) - 1)
		if d > worst || math.IsNaN(d) {
			worst = d
		}
	}
	return worst
}

func norm2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
