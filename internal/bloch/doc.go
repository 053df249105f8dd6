// Package bloch simulates a spin ensemble under RF and gradient waveforms in
// the Cayley-Klein (spinor) parameterization and computes the gradient of a
// scalar loss with respect to every RF sample by a reverse-time adjoint pass.
//
//   - [Forward]: RF rotation then gradient precession per sample, with a
//     final half-step phase that centres the reference on the pulse
//   - [Adjoint]: back-propagation through the same recurrence, O(N + Nt) memory
//   - [Encoding]: positions and gradients in 1-D vector or N×Ndim matrix form
//   - [Simulator]: binds a [compute.Backend], a [GradientMode] and observers
//
// # Units
//
// Gradients already include γ·Δt, so x·g[t] is the phase in radians accrued
// by a spin at step t. |rf[t]| is the flip angle of sample t in radians.
//
// # Example
//
//	res, err := bloch.Forward(rf, bloch.Vector(x), bloch.Vector(g))
//	if err != nil {
//	    return err
//	}
//	loss, auxA, auxB := obj.Evaluate(res.A, res.B)
//	drf, err := bloch.Adjoint(rf, bloch.Vector(x), bloch.Vector(g), auxA, auxB, res.RawA, res.RawB)
//
// Adjoint must receive Result.RawA and Result.RawB, not the centred pair.
package bloch
