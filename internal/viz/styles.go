package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	stats  lipgloss.Style
	canvas lipgloss.Style
	high   lipgloss.Style
	mid    lipgloss.Style
	low    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		stats: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).Padding(1, 2).Width(46),
		canvas: lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 2),
		high:   lipgloss.NewStyle().Foreground(t.High),
		mid:    lipgloss.NewStyle().Foreground(t.Mid),
		low:    lipgloss.NewStyle().Foreground(t.Low),
	}
}

// progressBar renders fraction in [0, 1] as a bar of the given width.
func (s styles) progressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case fraction > 0.8:
		return s.high.Render(bar)
	case fraction > 0.4:
		return s.mid.Render(bar)
	default:
		return s.low.Render(bar)
	}
}

// sparkline renders values in [0, 1] as block characters, sampling down to
// width.
func (s styles) sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	step := max(1, len(values)/width)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		v := values[i*step]
		if math.IsNaN(v) {
			v = 0
		}
		v = max(0, min(1, v))
		c := string(chars[int(v*float64(len(chars)-1))])
		switch {
		case v > 0.7:
			b.WriteString(s.high.Render(c))
		case v > 0.3:
			b.WriteString(s.mid.Render(c))
		default:
			b.WriteString(s.low.Render(c))
		}
	}
	return b.String()
}
