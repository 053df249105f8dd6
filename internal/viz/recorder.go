package viz

import (
	"math"
	"math/cmplx"
)

// Frame is the magnetization profile after one RF sample.
type Frame struct {
	Step int
	RF   complex128
	Mxy  []float64 // |Mxy| per spin
	Mz   []float64
}

func (f Frame) meanMxy() float64 { return mean(f.Mxy) }
func (f Frame) meanMz() float64  { return mean(f.Mz) }

// Recorder is a bloch.Observer that keeps a Frame for every forward step,
// keeping at most MaxSpins evenly strided spins per frame.
type Recorder struct {
	rf       []complex128
	frames   []Frame
	MaxSpins int
}

func NewRecorder(rf []complex128) *Recorder {
	return &Recorder{rf: rf, MaxSpins: 512}
}

func (r *Recorder) OnStep(t int, a, b []complex128) {
	stride := 1
	if r.MaxSpins > 0 && len(a) > r.MaxSpins {
		stride = int(math.Ceil(float64(len(a)) / float64(r.MaxSpins)))
	}

	n := (len(a) + stride - 1) / stride
	f := Frame{Step: t, Mxy: make([]float64, 0, n), Mz: make([]float64, 0, n)}
	if t < len(r.rf) {
		f.RF = r.rf[t]
	}
	for i := 0; i < len(a); i += stride {
		f.Mxy = append(f.Mxy, 2*cmplx.Abs(a[i])*cmplx.Abs(b[i]))
		f.Mz = append(f.Mz, norm2(a[i])-norm2(b[i]))
	}
	r.frames = append(r.frames, f)
}

func (r *Recorder) Reset() { r.frames = nil }

func (r *Recorder) Frames() []Frame { return r.frames }

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func norm2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
