package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blochsim/internal/bloch"
)

func sampleRun() (RunMetadata, *RunData) {
	rf := []complex128{0.3, 0.2i, -0.1 + 0.05i}
	x := bloch.Matrix(2, 2, []float64{-1, 0.5, 1, -0.25})
	g := bloch.Matrix(3, 2, []float64{0.1, 0, 0.1, 0.05, 0.1, -0.05})

	res, err := bloch.Forward(rf, x, g)
	Expect(err).NotTo(HaveOccurred())

	meta := RunMetadata{
		Name:      "test",
		Shape:     "custom",
		Samples:   len(rf),
		Spins:     x.Len(),
		Dims:      2,
		Backend:   "serial",
		Mode:      "exact",
		Objective: "power",
		Loss:      0.125,
		GradNorm:  2.5,
		Metrics:   map[string]float64{"unitarity_drift": 1e-16},
	}
	data := &RunData{
		RF:       rf,
		G:        g,
		X:        x,
		A:        res.A,
		B:        res.B,
		Gradient: []complex128{1 + 2i, -0.5, 1e-9i},
	}
	return meta, data
}

var _ = Describe("Store", func() {
	var (
		dir string
		st  *Store
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		st = New(filepath.Join(dir, "runs"))
		Expect(st.Init()).To(Succeed())
	})

	It("lists nothing for a fresh directory", func() {
		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())
	})

	It("lists nothing when the directory does not exist", func() {
		runs, err := New(filepath.Join(dir, "missing")).List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())
	})

	Context("after saving a run", func() {
		var (
			id   string
			meta RunMetadata
			data *RunData
		)

		BeforeEach(func() {
			meta, data = sampleRun()
			var err error
			id, err = st.Save(meta, data)
			Expect(err).NotTo(HaveOccurred())
		})

		It("names the run after the problem with a short unique suffix", func() {
			Expect(id).To(MatchRegexp(`^test_[0-9a-f]{8}$`))

			other, err := st.Save(meta, data)
			Expect(err).NotTo(HaveOccurred())
			Expect(other).NotTo(Equal(id))
		})

		It("writes every file", func() {
			for _, name := range []string{"metadata.json", "waveform.csv", "profile.csv", "gradient.csv"} {
				_, err := os.Stat(filepath.Join(dir, "runs", id, name))
				Expect(err).NotTo(HaveOccurred(), name)
			}
		})

		It("round-trips the metadata", func() {
			loaded, err := st.Load(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ID).To(Equal(id))
			Expect(loaded.Name).To(Equal("test"))
			Expect(loaded.Loss).To(Equal(0.125))
			Expect(loaded.Metrics).To(HaveKeyWithValue("unitarity_drift", 1e-16))
			Expect(loaded.Timestamp.IsZero()).To(BeFalse())

			runs, err := st.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
		})

		It("round-trips the waveform exactly", func() {
			w, err := st.LoadWaveform(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.RF).To(Equal(data.RF))
			Expect(w.G).To(Equal([][]float64{{0.1, 0}, {0.1, 0.05}, {0.1, -0.05}}))
		})

		It("stores the magnetization profile", func() {
			p, err := st.LoadProfile(id)
			Expect(err).NotTo(HaveOccurred())

			mxy, mz := bloch.Magnetization(data.A, data.B)
			Expect(p.X).To(Equal([][]float64{{-1, 0.5}, {1, -0.25}}))
			Expect(p.Mxy).To(Equal(mxy))
			Expect(p.Mz).To(Equal(mz))
		})

		It("round-trips the gradient", func() {
			drf, err := st.LoadGradient(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(drf).To(Equal(data.Gradient))
		})

		It("writes the documented CSV headers", func() {
			path, err := st.CSVPath(id, "profile")
			Expect(err).NotTo(HaveOccurred())
			raw, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.SplitN(string(raw), "\n", 2)[0]).To(Equal("x0,x1,mxy_re,mxy_im,mz"))

			path, err = st.CSVPath(id, "waveform")
			Expect(err).NotTo(HaveOccurred())
			raw, err = os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.SplitN(string(raw), "\n", 2)[0]).To(Equal("t,rf_re,rf_im,g0,g1"))

			_, err = st.CSVPath(id, "states")
			Expect(err).To(HaveOccurred())
		})

		It("exports a single JSON document", func() {
			var buf bytes.Buffer
			Expect(st.ExportJSON(&buf, id)).To(Succeed())

			var out ExportData
			Expect(json.Unmarshal(buf.Bytes(), &out)).To(Succeed())
			Expect(out.Metadata.ID).To(Equal(id))
			Expect(out.RF).To(HaveLen(3))
			Expect(out.RF[1]).To(Equal([2]float64{0, 0.2}))
			Expect(out.Gradient).To(HaveLen(3))
			Expect(out.Mz).To(HaveLen(2))
		})
	})

	It("omits the gradient file for forward-only runs", func() {
		meta, data := sampleRun()
		data.Gradient = nil
		id, err := st.Save(meta, data)
		Expect(err).NotTo(HaveOccurred())

		drf, err := st.LoadGradient(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(drf).To(BeNil())

		var buf bytes.Buffer
		Expect(st.ExportJSON(&buf, id)).To(Succeed())
		Expect(buf.String()).NotTo(ContainSubstring(`"gradient"`))
	})

	It("stores vector encodings with a single column", func() {
		rf := []complex128{0.5}
		res, err := bloch.Forward(rf, bloch.Vector([]float64{0, 1}), bloch.Vector([]float64{0.2}))
		Expect(err).NotTo(HaveOccurred())

		id, err := st.Save(RunMetadata{Name: "vec"}, &RunData{
			RF: rf, G: bloch.Vector([]float64{0.2}), X: bloch.Vector([]float64{0, 1}),
			A: res.A, B: res.B,
		})
		Expect(err).NotTo(HaveOccurred())

		w, err := st.LoadWaveform(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.G).To(Equal([][]float64{{0.2}}))

		p, err := st.LoadProfile(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.X).To(Equal([][]float64{{0}, {1}}))
	})

	It("rejects inconsistent run data", func() {
		meta, data := sampleRun()
		data.RF = data.RF[:2]
		_, err := st.Save(meta, data)
		Expect(err).To(HaveOccurred())

		meta, data = sampleRun()
		data.B = data.B[:1]
		_, err = st.Save(meta, data)
		Expect(err).To(HaveOccurred())
	})

	It("fails to load unknown runs", func() {
		_, err := st.Load("nope")
		Expect(err).To(HaveOccurred())
		_, err = st.LoadWaveform("nope")
		Expect(err).To(HaveOccurred())
	})
})
