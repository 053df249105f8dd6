package bloch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Encoding holds spatial-encoding data: either spin positions (one row per
// spin) or a gradient waveform (one row per time step).
//
// The vector form carries one scalar per row (1-D encoding). The matrix form
// is row-major with Dims() columns. A matrix with one column and a vector
// with the same values produce identical phases.
type Encoding struct {
	data   []float64
	rows   int
	cols   int
	vector bool
}

// Vector wraps a 1-D encoding. The slice is not copied.
func Vector(v []float64) Encoding {
	return Encoding{data: v, rows: len(v), cols: 1, vector: true}
}

// Matrix wraps a rows×cols row-major encoding. The slice is not copied; its
// length is checked when the encoding is used.
func Matrix(rows, cols int, data []float64) Encoding {
	return Encoding{data: data, rows: rows, cols: cols}
}

// Len is the number of rows (spins or time steps).
func (e Encoding) Len() int { return e.rows }

// Dims is the number of spatial dimensions; 0 for the vector form.
func (e Encoding) Dims() int {
	if e.vector {
		return 0
	}
	return e.cols
}

func (e Encoding) IsVector() bool { return e.vector }

// Row returns row i as a slice view.
func (e Encoding) Row(i int) []float64 {
	return e.data[i*e.cols : (i+1)*e.cols]
}

// Data returns the backing row-major slice.
func (e Encoding) Data() []float64 { return e.data }

func (e Encoding) validate(arg string) error {
	if e.vector {
		return nil
	}
	if e.cols < 1 {
		return shapeErr(arg+" columns", e.cols, 1)
	}
	if e.rows < 0 {
		return shapeErr(arg+" rows", e.rows, 0)
	}
	if len(e.data) != e.rows*e.cols {
		return shapeErr(arg+" data", len(e.data), e.rows*e.cols)
	}
	return nil
}

func (e Encoding) dense() *mat.Dense {
	return mat.NewDense(e.rows, e.cols, e.data)
}

// checkEncodings validates positions x against a gradient g driving nt
// RF samples.
func checkEncodings(nt int, x, g Encoding) error {
	if x.vector != g.vector {
		return ErrDimensionalityMismatch
	}
	if err := x.validate("x"); err != nil {
		return err
	}
	if err := g.validate("g"); err != nil {
		return err
	}
	if g.rows != nt {
		return shapeErr("g", g.rows, nt)
	}
	if !g.vector && x.cols != g.cols {
		return shapeErr("x columns", x.cols, g.cols)
	}
	return nil
}

// phaseMap evaluates position·gradient for every spin.
type phaseMap struct {
	x  Encoding
	g  Encoding
	xd *mat.Dense
}

func newPhaseMap(x, g Encoding) *phaseMap {
	p := &phaseMap{x: x, g: g}
	if !x.vector && x.rows > 0 {
		p.xd = x.dense()
	}
	return p
}

// step writes x·g[t] into dst.
func (p *phaseMap) step(dst []float64, t int) {
	if len(dst) == 0 {
		return
	}
	if p.x.vector {
		floats.ScaleTo(dst, p.g.data[t], p.x.data)
		return
	}
	p.mulVec(dst, p.g.Row(t))
}

// sum writes x·Σ_t g[t] into dst.
func (p *phaseMap) sum(dst []float64) {
	if len(dst) == 0 {
		return
	}
	if p.x.vector {
		floats.ScaleTo(dst, floats.Sum(p.g.data), p.x.data)
		return
	}
	total := make([]float64, p.g.cols)
	if p.g.rows > 0 {
		gd := p.g.dense()
		col := make([]float64, p.g.rows)
		for j := range total {
			total[j] = floats.Sum(mat.Col(col, j, gd))
		}
	}
	p.mulVec(dst, total)
}

func (p *phaseMap) mulVec(dst, v []float64) {
	out := mat.NewVecDense(len(dst), dst)
	out.MulVec(p.xd, mat.NewVecDense(len(v), v))
}
