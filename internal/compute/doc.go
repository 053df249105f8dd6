// Package compute provides execution backends for per-spin array work.
//
// The Bloch recurrence is sequential in time but embarrassingly parallel
// across spins. A [Backend] decides how each step's spin loop is run:
//
//   - serial: inline on the calling goroutine
//   - cpu: split into runtime.NumCPU() chunks once the ensemble is large
//
// Backends hold no mutable state, so one value can serve concurrent calls:
//
//	backend := compute.AutoSelectBackend()
//	s := bloch.New(backend)
//	res, err := s.Forward(rf, x, g)
package compute
