package metrics

import (
	"math"

	"github.com/san-kum/blochsim/internal/bloch"
)

// Unitarity tracks the largest | |a|² + |b|² - 1 | seen over a pass. NaN
// sticks once observed.
type Unitarity struct {
	name     string
	maxDrift float64
	samples  int
}

func NewUnitarity() *Unitarity {
	return &Unitarity{name: "unitarity_drift"}
}

func (u *Unitarity) Name() string { return u.name }

func (u *Unitarity) OnStep(t int, a, b []complex128) {
	d := bloch.UnitarityError(a, b)
	if d > u.maxDrift || math.IsNaN(d) {
		u.maxDrift = d
	}
	u.samples++
}

func (u *Unitarity) Value() float64 {
	return u.maxDrift
}

func (u *Unitarity) Steps() int { return u.samples }

func (u *Unitarity) Reset() {
	u.maxDrift = 0
	u.samples = 0
}
