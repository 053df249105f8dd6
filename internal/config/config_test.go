package config

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blochsim/internal/bloch"
)

var _ = Describe("Config", func() {
	Describe("DefaultConfig", func() {
		It("is valid", func() {
			Expect(DefaultConfig().Validate()).To(Succeed())
		})

		It("describes a 1-D sinc slice", func() {
			cfg := DefaultConfig()
			Expect(cfg.Pulse.Shape).To(Equal("sinc"))
			Expect(cfg.Dims()).To(Equal(1))
			Expect(cfg.FDStep).To(BeNumerically(">", 0))
		})
	})

	Describe("Parse", func() {
		It("overlays YAML on the defaults", func() {
			cfg, err := Parse([]byte("name: custom\npulse:\n  samples: 32\n  flip: 45\nmode: smalltip\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Name).To(Equal("custom"))
			Expect(cfg.Pulse.Samples).To(Equal(32))
			Expect(cfg.Pulse.Flip).To(Equal(45.0))
			Expect(cfg.Pulse.Shape).To(Equal(DefaultShape))
			Expect(cfg.Mode).To(Equal("smalltip"))
		})

		DescribeTable("rejects invalid documents",
			func(doc, fragment string) {
				_, err := Parse([]byte(doc))
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(fragment))
			},
			Entry("negative samples", "pulse:\n  samples: -4\n", "pulse.samples"),
			Entry("unknown shape", "pulse:\n  shape: chirp\n", "unknown pulse shape"),
			Entry("unknown objective", "objective:\n  kind: entropy\n", "unknown objective"),
			Entry("unknown backend", "backend: gpu\n", "unknown backend"),
			Entry("unknown mode", "mode: newton\n", "unknown gradient mode"),
			Entry("empty gradient", "gradient:\n  amplitude: []\n", "gradient.amplitude"),
			Entry("dims mismatch", "positions:\n  dims: 3\n", "positions.dims"),
			Entry("zero step", "fd_step: 0\n", "fd_step"),
			Entry("malformed yaml", "pulse: [\n", "yaml"),
		)
	})

	Describe("Save and Load", func() {
		It("round-trips through a file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "problem.yaml")
			cfg := GetPreset("grid2d")
			Expect(Save(path, cfg)).To(Succeed())

			loaded, err := Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("reports missing files", func() {
			_, err := Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("Presets", func() {
		It("lists every preset in order", func() {
			Expect(ListPresets()).To(Equal([]string{"grid2d", "hard90", "sinc180", "sinc90"}))
		})

		It("returns nil for unknown names", func() {
			Expect(GetPreset("nonexistent")).To(BeNil())
		})

		It("hands out independent copies", func() {
			a := GetPreset("sinc90")
			a.Gradient.Amplitude[0] = 99
			a.Pulse.Flip = 1
			Expect(GetPreset("sinc90").Gradient.Amplitude[0]).To(Equal(0.05))
			Expect(GetPreset("sinc90").Pulse.Flip).To(Equal(90.0))
		})

		for _, name := range ListPresets() {
			name := name
			It("builds a runnable problem for "+name, func() {
				cfg := GetPreset(name)
				Expect(cfg.Validate()).To(Succeed())

				p, err := cfg.Build()
				Expect(err).NotTo(HaveOccurred())
				Expect(p.RF).To(HaveLen(cfg.Pulse.Samples))
				Expect(p.G.Len()).To(Equal(cfg.Pulse.Samples))
				Expect(p.InBand).To(HaveLen(p.X.Len()))

				s, err := cfg.Simulator()
				Expect(err).NotTo(HaveOccurred())
				res, err := s.Forward(p.RF, p.X, p.G)
				Expect(err).NotTo(HaveOccurred())
				Expect(bloch.UnitarityError(res.A, res.B)).To(BeNumerically("<", 1e-10))
			})
		}
	})

	Describe("Build", func() {
		It("uses the matrix form for multi-dimensional gradients", func() {
			p, err := GetPreset("grid2d").Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(p.X.IsVector()).To(BeFalse())
			Expect(p.X.Len()).To(Equal(21 * 21))
			Expect(p.X.Dims()).To(Equal(2))
		})

		It("converts degrees to radians", func() {
			cfg := GetPreset("hard90")
			p, err := cfg.Build()
			Expect(err).NotTo(HaveOccurred())
			total := 0.0
			for _, v := range p.RF {
				total += real(v)
			}
			Expect(total).To(BeNumerically("~", 1.5707963267948966, 1e-12))
		})

		It("selects the configured gradient mode", func() {
			cfg := DefaultConfig()
			cfg.Mode = "smalltip"
			cfg.Backend = "serial"
			s, err := cfg.Simulator()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Mode()).To(Equal(bloch.ModeSmallTip))
			Expect(s.Backend().Name()).To(Equal("serial"))
		})
	})
})
