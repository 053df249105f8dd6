package compute

import (
	"sync"
	"testing"
)

func coverage(t *testing.T, b Backend, n int) {
	t.Helper()

	var mu sync.Mutex
	hits := make([]int, n)
	b.ParallelFor(n, func(start, end int) {
		mu.Lock()
		defer mu.Unlock()
		for i := start; i < end; i++ {
			hits[i]++
		}
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("%s: index %d visited %d times", b.Name(), i, h)
		}
	}
}

func TestParallelForCoverage(t *testing.T) {
	backends := []Backend{
		NewSerialBackend(),
		NewCPUBackend(),
		NewCPUBackendWithWorkers(3, 1),
		NewCPUBackendWithWorkers(7, 4),
	}
	sizes := []int{0, 1, 2, 5, 17, 100, 1031}

	for _, b := range backends {
		for _, n := range sizes {
			coverage(t, b, n)
		}
	}
}

func TestParallelForZeroSkipsCallback(t *testing.T) {
	called := false
	NewCPUBackendWithWorkers(4, 1).ParallelFor(0, func(start, end int) { called = true })
	if called {
		t.Error("callback invoked for empty range")
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"serial", "serial", false},
		{"cpu", "cpu", false},
		{"auto", "", false},
		{"", "", false},
		{"cuda", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ByName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != "" && b.Name() != tt.want {
				t.Errorf("got backend %s, want %s", b.Name(), tt.want)
			}
			if !b.Available() {
				t.Errorf("backend %s not available", b.Name())
			}
		})
	}
}

func TestFeatures(t *testing.T) {
	if Features() == "" {
		t.Error("expected non-empty feature report")
	}
}
