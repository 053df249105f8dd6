package bloch

import (
	"errors"
	"fmt"
)

// Domain errors for simulator calls. Every error is raised at call entry,
// before any state is advanced.
var (
	// ErrShapeMismatch indicates RF, gradient, position or seed lengths that
	// do not agree.
	ErrShapeMismatch = errors.New("bloch: shape mismatch")

	// ErrDimensionalityMismatch indicates one of positions/gradient is in
	// vector form while the other is in matrix form.
	ErrDimensionalityMismatch = errors.New("bloch: dimensionality mismatch between positions and gradient")
)

// ShapeError reports which argument had the wrong extent.
type ShapeError struct {
	Arg     string
	Got     int
	Want    int
	Wrapped error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s has length %d, want %d", e.Wrapped.Error(), e.Arg, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return e.Wrapped
}

func shapeErr(arg string, got, want int) error {
	return &ShapeError{Arg: arg, Got: got, Want: want, Wrapped: ErrShapeMismatch}
}
