package analysis

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/blochsim/internal/bloch"
)

// ProfileSummary condenses a simulated excitation profile.
type ProfileSummary struct {
	InBandMean   float64 // mean |Mxy| inside the band
	InBandRipple float64 // max - min |Mxy| inside the band
	OutBandMax   float64 // worst |Mxy| outside the band
	MeanMz       float64
	FWHM         float64 // along the first coordinate, 0 if undefined
}

// Summarize computes profile statistics for final spinors at positions x.
func Summarize(x bloch.Encoding, a, b []complex128, inBand []bool) ProfileSummary {
	mxy, mz := bloch.Magnetization(a, b)
	var s ProfileSummary
	if len(mxy) == 0 {
		return s
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	count := 0
	peak := 0.0
	for i, m := range mxy {
		v := cmplx.Abs(m)
		s.MeanMz += mz[i]
		peak = math.Max(peak, v)
		if inBand != nil && inBand[i] {
			s.InBandMean += v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			count++
		} else {
			s.OutBandMax = math.Max(s.OutBandMax, v)
		}
	}
	s.MeanMz /= float64(len(mxy))
	if count > 0 {
		s.InBandMean /= float64(count)
		s.InBandRipple = hi - lo
	}

	if peak > 0 {
		left, right := math.Inf(1), math.Inf(-1)
		for i, m := range mxy {
			if cmplx.Abs(m) >= peak/2 {
				pos := x.Row(i)[0]
				left = math.Min(left, pos)
				right = math.Max(right, pos)
			}
		}
		s.FWHM = right - left
	}
	return s
}
