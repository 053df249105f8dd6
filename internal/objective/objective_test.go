package objective

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/san-kum/blochsim/internal/bloch"
)

func randomProblem(seed int64, nt, n int) ([]complex128, bloch.Encoding, bloch.Encoding) {
	rng := rand.New(rand.NewSource(seed))
	rf := make([]complex128, nt)
	for i := range rf {
		rf[i] = cmplx.Rect(0.6*rng.Float64(), 2*math.Pi*rng.Float64())
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = 4*rng.Float64() - 2
	}
	g := make([]float64, nt)
	for i := range g {
		g[i] = rng.NormFloat64() * 0.4
	}
	return rf, bloch.Vector(x), bloch.Vector(g)
}

func lossAt(t *testing.T, obj Objective, rf []complex128, x, g bloch.Encoding) float64 {
	t.Helper()
	res, err := bloch.Forward(rf, x, g)
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	loss, _, _ := obj.Evaluate(res.A, res.B)
	return loss
}

func TestSeedsMatchFiniteDifferences(t *testing.T) {
	rf, x, g := randomProblem(7, 6, 9)
	in := InBand(x, 2)
	target := Target{InBand: in, Flip: math.Pi / 2, Phase: 0.3, WeightOut: 0.5}

	rng := rand.New(rand.NewSource(99))
	ca := make([]complex128, x.Len())
	cb := make([]complex128, x.Len())
	for i := range ca {
		ca[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		cb[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}

	objectives := []Objective{&Linear{CA: ca, CB: cb}}
	for _, kind := range Kinds() {
		obj, err := New(kind, target)
		if err != nil {
			t.Fatalf("new %s: %v", kind, err)
		}
		objectives = append(objectives, obj)
	}

	for _, obj := range objectives {
		t.Run(obj.Name(), func(t *testing.T) {
			res, err := bloch.Forward(rf, x, g)
			if err != nil {
				t.Fatalf("forward failed: %v", err)
			}
			_, auxA, auxB := obj.Evaluate(res.A, res.B)
			drf, err := bloch.Adjoint(rf, x, g, auxA, auxB, res.RawA, res.RawB)
			if err != nil {
				t.Fatalf("adjoint failed: %v", err)
			}

			const h = 1e-6
			probe := append([]complex128(nil), rf...)
			for k := range rf {
				var parts [2]float64
				for j, dir := range []complex128{1, 1i} {
					probe[k] = rf[k] + h*dir
					up := lossAt(t, obj, probe, x, g)
					probe[k] = rf[k] - h*dir
					down := lossAt(t, obj, probe, x, g)
					probe[k] = rf[k]
					parts[j] = (up - down) / (2 * h)
				}
				want := complex(parts[0], parts[1])
				scale := math.Max(cmplx.Abs(want), 1e-2)
				if cmplx.Abs(drf[k]-want)/scale > 1e-4 {
					t.Errorf("drf[%d] = %v, finite difference %v", k, drf[k], want)
				}
			}
		})
	}
}

func TestProfileTargetIsReachedByHardPulse(t *testing.T) {
	flip, phase := math.Pi/2, 0.7
	x := bloch.Vector([]float64{0})
	obj, err := New("profile", Target{InBand: []bool{true}, Flip: flip, Phase: phase})
	if err != nil {
		t.Fatal(err)
	}

	rf := []complex128{cmplx.Rect(flip, phase)}
	res, err := bloch.Forward(rf, x, bloch.Vector([]float64{0}))
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	loss, _, _ := obj.Evaluate(res.A, res.B)
	if loss > 1e-24 {
		t.Errorf("expected zero loss for ideal pulse, got %e", loss)
	}

	for _, kind := range []string{"mxy", "mz"} {
		obj, _ := New(kind, Target{InBand: []bool{true}, Flip: flip, Phase: phase})
		if loss, _, _ := obj.Evaluate(res.A, res.B); loss > 1e-24 {
			t.Errorf("%s: expected zero loss for ideal pulse, got %e", kind, loss)
		}
	}
}

func TestPowerSeedIsTwiceB(t *testing.T) {
	b := []complex128{1 + 2i, -0.5i}
	loss, auxA, auxB := Power{}.Evaluate([]complex128{0, 0}, b)
	if math.Abs(loss-5.25) > 1e-15 {
		t.Errorf("expected loss 5.25, got %f", loss)
	}
	if auxA != nil {
		t.Error("power objective should not seed a")
	}
	if auxB[0] != 2+4i || auxB[1] != -1i {
		t.Errorf("unexpected seeds %v", auxB)
	}
}

func TestInBand(t *testing.T) {
	x := bloch.Matrix(3, 2, []float64{0, 0, 0.6, 0, 0.2, -0.4})
	in := InBand(x, 1)
	want := []bool{true, false, true}
	for i := range want {
		if in[i] != want[i] {
			t.Errorf("spin %d: in band = %v, want %v", i, in[i], want[i])
		}
	}
}

func TestUnknownObjective(t *testing.T) {
	if _, err := New("entropy", Target{}); err == nil {
		t.Error("expected error for unknown objective")
	}
}
