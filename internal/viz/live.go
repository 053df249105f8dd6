package viz

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	width  = 60
	height = 16
)

type TickMsg time.Time

// Model replays recorded frames of a forward simulation.
type Model struct {
	title    string
	frames   []Frame
	history  []float64 // mean |Mxy| per frame
	playHead int
	running  bool
	showMz   bool
	showHelp bool
	fps      int
	theme    int
	styles   styles
	canvas   *Canvas
}

// NewModel builds a replay of rec's frames at fps frames per second.
func NewModel(title string, rec *Recorder, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	frames := rec.Frames()
	history := make([]float64, len(frames))
	for i, f := range frames {
		history[i] = f.meanMxy()
	}
	return Model{
		title:   title,
		frames:  frames,
		history: history,
		running: len(frames) > 0,
		fps:     fps,
		styles:  newStyles(Themes[0]),
		canvas:  NewCanvas(width, height),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.playHead >= len(m.frames)-1 {
				m.playHead = 0
			}
			m.running = !m.running && len(m.frames) > 0
		case "r":
			m.playHead = 0
			m.running = len(m.frames) > 0
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "m":
			m.showMz = !m.showMz
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.playHead++
			if m.playHead >= len(m.frames)-1 {
				m.playHead = max(0, len(m.frames)-1)
				m.running = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// scrub pauses playback and moves one frame.
func (m *Model) scrub(dir int) {
	m.running = false
	m.playHead = max(0, min(len(m.frames)-1, m.playHead+dir))
}

func (m Model) PlayHead() int { return m.playHead }
func (m Model) Running() bool { return m.running }

func (m Model) View() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.header.Render(strings.ToUpper(m.title)) + "\n")

	if len(m.frames) == 0 {
		b.WriteString("no frames recorded\n")
		return b.String()
	}

	f := m.frames[m.playHead]
	status := "PLAYING"
	if !m.running {
		status = "PAUSED"
	}
	b.WriteString(fmt.Sprintf("%s  step %d/%d\n", status, f.Step+1, len(m.frames)))
	b.WriteString(s.progressBar(float64(m.playHead+1)/float64(len(m.frames)), 30) + "\n")

	if m.playHead > 0 {
		chart := asciigraph.Plot(m.history[:m.playHead+1],
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("mean |Mxy|"))
		b.WriteString(s.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		b.WriteString(s.label.Render(label) + s.value.Render(value) + "\n")
	}
	row("|rf|", fmt.Sprintf("%.4f rad", cmplx.Abs(f.RF)))
	row("phase", fmt.Sprintf("%.1f°", cmplx.Phase(f.RF)*180/math.Pi))
	row("mean |Mxy|", fmt.Sprintf("%.4f", f.meanMxy()))
	row("mean Mz", fmt.Sprintf("%.4f", f.meanMz()))
	row("theme", Themes[m.theme].Name)
	b.WriteString("\n" + s.sparkline(f.Mxy, 30) + "\n")
	b.WriteString(s.help.Render("SP:Play R:Restart Q:Quit\n[ ]:Step M:Mxy/Mz T:Theme ?:Help"))

	m.canvas.Clear()
	caption := "|Mxy| across positions"
	if m.showMz {
		m.canvas.Plot(f.Mz, -1, 1)
		caption = "Mz across positions"
	} else {
		m.canvas.Plot(f.Mxy, 0, 1)
	}
	canvasView := s.canvas.Render(m.canvas.String() + caption)

	view := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, s.stats.Render(b.String()))
	if m.showHelp {
		return helpText + "\n\n" + view
	}
	return view
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space  - Play/Pause replay          ║
║  R      - Restart from first sample  ║
║  [ ]    - Step backward / forward    ║
║  M      - Toggle |Mxy| / Mz profile  ║
║  T      - Cycle themes               ║
║  ?      - Toggle this help           ║
║  Q      - Quit                       ║
╚══════════════════════════════════════╝`

// Run opens the replay in the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
