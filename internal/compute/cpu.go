package compute

import (
	"runtime"
	"sync"
)

// DefaultMinChunk is the smallest per-worker range worth a goroutine.
const DefaultMinChunk = 512

type CPUBackend struct {
	workers  int
	minChunk int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers:  runtime.NumCPU(),
		minChunk: DefaultMinChunk,
	}
}

// NewCPUBackendWithWorkers fixes the worker count and chunk floor. Values
// below 1 fall back to the defaults.
func NewCPUBackendWithWorkers(workers, minChunk int) *CPUBackend {
	c := NewCPUBackend()
	if workers > 0 {
		c.workers = workers
	}
	if minChunk > 0 {
		c.minChunk = minChunk
	}
	return c
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}
func (c *CPUBackend) Workers() int    { return c.workers }

func (c *CPUBackend) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n <= c.minChunk || c.workers <= 1 {
		fn(0, n)
		return
	}

	workers := c.workers
	if n/c.minChunk < workers {
		workers = n / c.minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
