package viz

import (
	"math"
	"strings"
)

// Braille cells hold a 2x4 dot matrix:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille pixel grid of Width×Height cells, i.e.
// (Width*2)×(Height*4) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y); out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Plot draws values as a polyline stretched across the full width, with lo
// at the bottom row and hi at the top. A horizontal baseline marks zero when
// it is in range.
func (c *Canvas) Plot(values []float64, lo, hi float64) {
	w, h := c.Width*2, c.Height*4
	if len(values) == 0 || w == 0 || h == 0 || hi <= lo {
		return
	}

	y := func(v float64) int {
		if math.IsNaN(v) {
			v = lo
		}
		v = math.Max(lo, math.Min(hi, v))
		return int(math.Round((hi - v) / (hi - lo) * float64(h-1)))
	}
	x := func(i int) int {
		if len(values) == 1 {
			return w / 2
		}
		return int(math.Round(float64(i) / float64(len(values)-1) * float64(w-1)))
	}

	if lo < 0 && hi > 0 {
		z := y(0)
		for i := 0; i < w; i += 2 {
			c.Set(i, z)
		}
	}

	px, py := x(0), y(values[0])
	c.Set(px, py)
	for i := 1; i < len(values); i++ {
		nx, ny := x(i), y(values[i])
		c.DrawLine(px, py, nx, ny)
		px, py = nx, ny
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
