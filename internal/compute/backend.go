package compute

import (
	"fmt"
	"runtime"
)

// Backend executes data-parallel work over a spin ensemble.
//
// ParallelFor must call fn over disjoint [start, end) ranges that together
// cover [0, n) exactly once, and return only after every call has finished.
// No ordering between ranges is guaranteed.
type Backend interface {
	Name() string
	Available() bool
	ParallelFor(n int, fn func(start, end int))
	Cleanup()
}

// AutoSelectBackend picks the multi-worker CPU backend when more than one CPU
// is usable and the serial backend otherwise.
func AutoSelectBackend() Backend {
	if runtime.NumCPU() > 1 {
		return NewCPUBackend()
	}
	return NewSerialBackend()
}

// ByName resolves a backend from its configuration name.
func ByName(name string) (Backend, error) {
	switch name {
	case "", "auto":
		return AutoSelectBackend(), nil
	case "serial":
		return NewSerialBackend(), nil
	case "cpu":
		return NewCPUBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, Names())
	}
}

// Names lists the names accepted by ByName.
func Names() []string {
	return []string{"auto", "serial", "cpu"}
}
