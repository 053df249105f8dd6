package bloch

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func randomRF(rng *rand.Rand, nt int, maxFlip float64) []complex128 {
	rf := make([]complex128, nt)
	for i := range rf {
		rf[i] = cmplx.Rect(maxFlip*rng.Float64(), 2*math.Pi*rng.Float64())
	}
	return rf
}

func randomReal(rng *rand.Rand, n int, scale float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = scale * (2*rng.Float64() - 1)
	}
	return v
}

func randomComplex(rng *rand.Rand, n int) []complex128 {
	v := make([]complex128, n)
	for i := range v {
		v[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	return v
}

// linearLoss is Σ Re(conj(auxB)·b) + Re(conj(auxA)·a) on the centred state.
func linearLoss(t *testing.T, rf []complex128, x, g Encoding, auxA, auxB []complex128) float64 {
	t.Helper()
	res, err := Forward(rf, x, g)
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	loss := 0.0
	for i := range res.B {
		loss += real(cmplx.Conj(auxB[i]) * res.B[i])
		if auxA != nil {
			loss += real(cmplx.Conj(auxA[i]) * res.A[i])
		}
	}
	return loss
}

// finiteDifference estimates ∂L/∂Re(rf[t]) + i·∂L/∂Im(rf[t]) with central
// differences.
func finiteDifference(t *testing.T, rf []complex128, h float64, loss func([]complex128) float64) []complex128 {
	t.Helper()
	grad := make([]complex128, len(rf))
	probe := make([]complex128, len(rf))
	for k := range rf {
		var parts [2]float64
		for j, dir := range []complex128{1, 1i} {
			copy(probe, rf)
			probe[k] = rf[k] + complex(h, 0)*dir
			up := loss(probe)
			probe[k] = rf[k] - complex(h, 0)*dir
			down := loss(probe)
			parts[j] = (up - down) / (2 * h)
		}
		grad[k] = complex(parts[0], parts[1])
	}
	return grad
}

func assertGradClose(t *testing.T, got, want []complex128, rel float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("gradient length %d, want %d", len(got), len(want))
	}
	for k := range want {
		diff := cmplx.Abs(got[k] - want[k])
		scale := math.Max(cmplx.Abs(want[k]), 1e-2)
		if diff/scale > rel {
			t.Errorf("drf[%d] = %v, finite difference %v (rel err %.2e)", k, got[k], want[k], diff/scale)
		}
	}
}
