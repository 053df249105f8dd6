package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the small-tip approximation of a pulse's excitation profile:
// the Fourier transform of the RF waveform. Frequencies are in cycles per
// sample, centred on zero.
type Spectrum struct {
	Freq      []float64
	Magnitude []float64
	Phase     []float64
}

// ComputeSpectrum zero-pads rf to at least minLen samples (rounded up to a
// power of two) and transforms it.
func ComputeSpectrum(rf []complex128, minLen int) *Spectrum {
	n := nextPow2(max(len(rf), minLen))
	buf := make([]complex128, n)
	// The pulse centre lands on sample 0 after the shift, so a symmetric
	// pulse has a real spectrum.
	copy(buf[n/2-len(rf)/2:], rf)

	out := fftShift(fft.FFT(fftShift(buf)))

	s := &Spectrum{
		Freq:      make([]float64, n),
		Magnitude: make([]float64, n),
		Phase:     make([]float64, n),
	}
	for i, v := range out {
		s.Freq[i] = float64(i-n/2) / float64(n)
		s.Magnitude[i] = cmplx.Abs(v)
		s.Phase[i] = cmplx.Phase(v)
	}
	return s
}

// Peak returns the largest magnitude and its frequency.
func (s *Spectrum) Peak() (freq, mag float64) {
	for i, m := range s.Magnitude {
		if m > mag {
			mag = m
			freq = s.Freq[i]
		}
	}
	return freq, mag
}

func fftShift(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	h := n / 2
	copy(out, x[h:])
	copy(out[n-h:], x[:h])
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
