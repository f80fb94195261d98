package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/presdiff/internal/diffusion"
	"github.com/san-kum/presdiff/internal/metrics"
)

const (
	frameInterval   = time.Second / 30
	historyCapacity = 120
	maxStepsPerTick = 1 << 14
	fieldWidth      = 60
	fieldHeight     = 20
)

var (
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(42)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// WatchModel steps a solver on every frame and redraws the field.
type WatchModel struct {
	stepper       *diffusion.Stepper
	total         int
	stepsPerFrame int
	running       bool
	theme         Theme
	plain         bool

	residual *metrics.Residual
	peak     *metrics.PeakPressure

	residualHistory []float64
	peakHistory     []float64
}

// NewWatchModel runs s up to total steps, advancing stepsPerFrame steps
// per frame. A non-positive total means run until quit.
func NewWatchModel(s *diffusion.Stepper, total, stepsPerFrame int) WatchModel {
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	m := WatchModel{
		stepper:         s,
		total:           total,
		stepsPerFrame:   stepsPerFrame,
		running:         true,
		theme:           CurrentTheme,
		residual:        metrics.NewResidual(),
		peak:            metrics.NewPeakPressure(),
		residualHistory: make([]float64, 0, historyCapacity),
		peakHistory:     make([]float64, 0, historyCapacity),
	}
	m.observe()
	return m
}

// WithPlain switches the heatmap to the character ramp.
func (m WatchModel) WithPlain(plain bool) WatchModel {
	m.plain = plain
	return m
}

func (m WatchModel) Init() tea.Cmd { return tick() }

// Update handles keys and advances the solver on every tick.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "t":
			m.theme = NextTheme(m.theme)
		case "+", "=":
			if m.stepsPerFrame < maxStepsPerTick {
				m.stepsPerFrame *= 2
			}
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *WatchModel) advance() {
	n := m.stepsPerFrame
	if m.total > 0 {
		if left := m.total - m.stepper.StepsTaken(); left < n {
			n = left
		}
	}
	if n <= 0 {
		m.running = false
		return
	}
	m.stepper.Run(n)
	m.observe()
}

func (m *WatchModel) observe() {
	f := m.stepper.Current()
	step, t := m.stepper.StepsTaken(), m.stepper.Time()
	m.residual.Observe(f, step, t)
	m.peak.Observe(f, step, t)
	if step == 0 {
		return
	}
	m.residualHistory = appendCapped(m.residualHistory, m.residual.Value())
	m.peakHistory = appendCapped(m.peakHistory, f.Max())
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *WatchModel) reset() {
	m.stepper.Reset()
	m.residual.Reset()
	m.peak.Reset()
	m.residualHistory = m.residualHistory[:0]
	m.peakHistory = m.peakHistory[:0]
	m.running = true
	m.observe()
}

// Done reports whether the configured step count has been reached.
func (m WatchModel) Done() bool {
	return m.total > 0 && m.stepper.StepsTaken() >= m.total
}

// View renders the field, the run statistics and the key help.
func (m WatchModel) View() string {
	f := m.stepper.Current()

	var field string
	if m.plain {
		field = RenderFieldPlain(f, fieldWidth, fieldHeight)
	} else {
		field = RenderField(f, fieldWidth, fieldHeight, m.theme)
	}

	status := "RUNNING"
	switch {
	case m.Done():
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}

	title := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true)
	var s strings.Builder
	s.WriteString(title.Render("PRESSURE FIELD") + "  " + status + "\n\n")

	var stats strings.Builder
	row := func(label, value string) {
		stats.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("step", fmt.Sprintf("%d", m.stepper.StepsTaken()))
	row("time", fmt.Sprintf("%.4g s", m.stepper.Time()))
	row("steps/frame", fmt.Sprintf("%d", m.stepsPerFrame))
	row("peak", fmt.Sprintf("%.6g", m.peak.Value()))
	row("mean", fmt.Sprintf("%.6g", f.Mean()))
	row("residual", fmt.Sprintf("%.4g", m.residual.Value()))
	row("theme", m.theme.Name)
	if m.total > 0 {
		stats.WriteString("\n" + ProgressBar(float64(m.stepper.StepsTaken())/float64(m.total), 30) + "\n")
	}
	stats.WriteString("\npeak " + SparklineChart(m.peakHistory, 30) + "\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, field, statsStyle.Render(stats.String())))

	if len(m.residualHistory) > 1 {
		graph := asciigraph.Plot(m.residualHistory,
			asciigraph.Height(6),
			asciigraph.Width(fieldWidth),
			asciigraph.Caption("residual |dp/dt|"))
		s.WriteString("\n" + graphStyle.Render(graph))
	}

	s.WriteString("\n" + helpStyle.Render("space pause · r reset · t theme · +/- speed · q quit"))
	return s.String()
}
