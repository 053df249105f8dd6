package bloch

// Forward advances every spin from the identity rotation (a = 1, b = 0)
// through the RF samples in order.
//
// Each step rotates (a, b) by the sample's SU(2) matrix and then applies the
// full gradient phase exp(-i·x·g[t]) to b alone. After the last step both
// parameters are multiplied by exp(i/2·x·Σg), which centres the phase
// reference on the pulse; Result keeps both the raw and the centred pair.
func (s *Simulator) Forward(rf []complex128, x, g Encoding) (*Result, error) {
	if err := checkEncodings(len(rf), x, g); err != nil {
		return nil, err
	}

	n := x.Len()
	a := make([]complex128, n)
	b := make([]complex128, n)
	for i := range a {
		a[i] = 1
	}

	for _, o := range s.observers {
		if r, ok := o.(resetter); ok {
			r.Reset()
		}
	}

	pm := newPhaseMap(x, g)
	phase := make([]float64, n)

	for t, w := range rf {
		rot := newRotation(w)
		pm.step(phase, t)

		s.backend.ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				ai, bi := rot.apply(a[i], b[i])
				a[i] = ai
				b[i] = bi * phasor(-phase[i])
			}
		})

		for _, o := range s.observers {
			o.OnStep(t, a, b)
		}
	}

	res := &Result{
		A:    make([]complex128, n),
		B:    make([]complex128, n),
		RawA: a,
		RawB: b,
	}

	pm.sum(phase)
	s.backend.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			z := phasor(phase[i] / 2)
			res.A[i] = a[i] * z
			res.B[i] = b[i] * z
		}
	})

	return res, nil
}
