// Package analysis provides diagnostics for RF pulses and their gradients.
//
//   - [GradCheck]: adjoint gradient against central finite differences
//   - [Spectrum]: small-tip excitation profile of a pulse via FFT
//   - [Summarize]: in-band and out-of-band statistics of a simulated profile
//
// # Gradient Checking
//
// The adjoint gradient is exact for the loss implied by the seeds, so a
// large relative error points at a mismatch between the loss and its seeds:
//
//	rep, err := analysis.GradCheck(sim, rf, x, g, obj, 1e-6)
//	if rep.MaxRelErr > 1e-4 {
//	    // seeds do not match the loss
//	}
package analysis
