package compute

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Features reports the SIMD extensions detected on this machine, e.g.
// "amd64: avx2 fma". It is informational only; every backend runs the same
// scalar Go arithmetic.
func Features() string {
	var feats []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasSSE41 {
			feats = append(feats, "sse4.1")
		}
		if cpu.X86.HasAVX {
			feats = append(feats, "avx")
		}
		if cpu.X86.HasAVX2 {
			feats = append(feats, "avx2")
		}
		if cpu.X86.HasFMA {
			feats = append(feats, "fma")
		}
		if cpu.X86.HasAVX512F {
			feats = append(feats, "avx512f")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			feats = append(feats, "asimd")
		}
		if cpu.ARM64.HasFPHP {
			feats = append(feats, "fphp")
		}
		if cpu.ARM64.HasSVE {
			feats = append(feats, "sve")
		}
	}
	if len(feats) == 0 {
		return runtime.GOARCH + ": none"
	}
	return runtime.GOARCH + ": " + strings.Join(feats, " ")
}
