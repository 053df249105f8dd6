// Package pulse generates RF waveforms, gradient waveforms and spin
// positions for the simulator.
//
// Waveform samples are rotation angles in radians: a hard pulse of flip
// angle θ over nt samples has every sample equal to θ/nt. Shaped pulses are
// scaled so that their samples sum to the requested flip, which is the
// small-tip flip angle at the pulse centre frequency.
//
//	rf, err := pulse.Generate("sinc", pulse.Params{Samples: 128, Flip: math.Pi / 2, TB: 4})
//	g := pulse.ConstantGradient(128, []float64{0.05})
//	x := bloch.Vector(pulse.Positions(200, 20))
package pulse
