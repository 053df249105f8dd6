// Package export renders stored run data as standalone SVG plots.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Series is one polyline drawn against the sample index.
type Series struct {
	Label  string
	Stroke string
	Values []float64
}

// Plot writes an SVG with every series scaled into a shared y range.
// Non-finite values break the line.
func Plot(w io.Writer, title string, series []Series, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("svg size must be positive, got %dx%d", width, height)
	}

	lo, hi, longest := bounds(series)
	if longest < 2 {
		return fmt.Errorf("svg plot needs at least 2 points, got %d", longest)
	}

	// Add padding
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="16" fill="#cccccc" font-family="monospace" font-size="12">%s</text>
`, escape(title)))
	}

	zero := float64(height) - (0-lo)/span*float64(height)
	if zero > 0 && zero < float64(height) {
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333"/>
`, zero, width, zero))
	}

	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		stroke := s.Stroke
		if stroke == "" {
			stroke = "#00ff00"
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke))

		pen := false
		for j, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = false
				continue
			}
			x := float64(j) / float64(longest-1) * float64(width)
			y := float64(height) - (v-lo)/span*float64(height)
			if pen {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
				pen = true
			}
		}
		sb.WriteString("\"/>\n")

		if s.Label != "" {
			sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="11">%s</text>
`, 32+14*i, stroke, escape(s.Label)))
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func bounds(series []Series) (lo, hi float64, longest int) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		longest = max(longest, len(s.Values))
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		lo, hi = 0, 0
	}
	return lo, hi, longest
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
