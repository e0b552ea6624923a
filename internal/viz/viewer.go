package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/heatsim/internal/experiment"
)

type tickMsg time.Time

// Viewer is a Bubble Tea model that scrubs through the sampled times of a
// finished run.
type Viewer struct {
	res         *experiment.Result
	frame       int
	playing     bool
	showHeatmap bool
	palette     Palette
	frameDelay  time.Duration
	lo, hi      float64
	width       int
	height      int
}

func NewViewer(res *experiment.Result) Viewer {
	lo, hi := gridBounds(res.Grid)
	return Viewer{
		res:        res,
		palette:    PaletteThermal,
		frameDelay: 80 * time.Millisecond,
		lo:         lo,
		hi:         hi,
		width:      80,
		height:     24,
	}
}

// Frame is the index of the displayed sample time.
func (v Viewer) Frame() int { return v.frame }

func (v Viewer) Playing() bool { return v.playing }

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) tick() tea.Cmd {
	return tea.Tick(v.frameDelay, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (v Viewer) lastFrame() int { return len(v.res.Grid.T) - 1 }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	case tickMsg:
		if !v.playing {
			return v, nil
		}
		if v.frame >= v.lastFrame() {
			v.playing = false
			return v, nil
		}
		v.frame++
		return v, v.tick()
	}
	return v, nil
}

func (v Viewer) handleKey(msg tea.KeyMsg) (Viewer, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return v, tea.Quit
	case "right", "l":
		v.frame = min(v.frame+1, v.lastFrame())
	case "left", "h":
		v.frame = max(v.frame-1, 0)
	case "home", "g":
		v.frame = 0
	case "end", "G":
		v.frame = v.lastFrame()
	case " ", "space":
		v.playing = !v.playing
		if v.playing {
			if v.frame >= v.lastFrame() {
				v.frame = 0
			}
			return v, v.tick()
		}
	case "m":
		v.showHeatmap = !v.showHeatmap
	case "c":
		v.palette = NextPalette(v.palette)
	}
	return v, nil
}

func (v Viewer) View() string {
	g := v.res.Grid
	if len(g.T) == 0 {
		return "no samples\n"
	}
	var b strings.Builder

	status := StatusPaused.Render("paused")
	if v.playing {
		status = StatusPlaying.Render("playing")
	}
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("t = %.5g  (%d/%d)", g.T[v.frame], v.frame+1, len(g.T))))
	b.WriteString("  " + status + "\n\n")

	plotWidth := max(20, v.width-12)
	plotHeight := max(5, v.height/2-4)
	if v.showHeatmap {
		b.WriteString(Heatmap(g, v.palette, plotWidth, plotHeight))
	} else {
		b.WriteString(ProfilePlot(g, v.frame, plotWidth, plotHeight, v.lo, v.hi))
	}
	b.WriteString("\n\n")

	progress := 0.0
	if n := v.lastFrame(); n > 0 {
		progress = float64(v.frame) / float64(n)
	}
	b.WriteString(ProgressBar(progress, min(60, plotWidth)))
	b.WriteString("\n")
	b.WriteString(KeyHint.Render("←/→ step  space play  m heatmap  c palette  q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the viewer on the terminal and blocks until it quits.
func Run(res *experiment.Result) error {
	_, err := tea.NewProgram(NewViewer(res), tea.WithAltScreen()).Run()
	return err
}
