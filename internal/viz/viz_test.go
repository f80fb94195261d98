package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/presdiff/internal/diffusion"
)

func rampField(t *testing.T) *diffusion.Field {
	t.Helper()
	// p grows with r and is constant along z.
	f, err := diffusion.FieldFromRows([][]float64{
		{0, 0, 0},
		{5, 5, 5},
		{10, 10, 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRenderFieldPlain(t *testing.T) {
	out := RenderFieldPlain(rampField(t), 3, 3)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 3 rows plus legend, got %d lines:\n%s", len(lines), out)
	}
	for _, line := range lines[:3] {
		if line != " =@" {
			t.Errorf("expected r to increase left to right, got %q", line)
		}
	}
	if !strings.Contains(lines[3], "0") || !strings.Contains(lines[3], "10") {
		t.Errorf("legend missing range: %q", lines[3])
	}
}

func TestRenderFieldPlain_ZUpwards(t *testing.T) {
	f, err := diffusion.FieldFromRows([][]float64{
		{0, 5, 10},
		{0, 5, 10},
		{0, 5, 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(RenderFieldPlain(f, 3, 3), "\n")
	if lines[0] != "@@@" || lines[2] != "   " {
		t.Errorf("expected the top row to hold z max, got %q", lines[:3])
	}
}

func TestRenderFieldPlain_Uniform(t *testing.T) {
	g, err := diffusion.NewGrid(0, 1, 0, 1, 0.5, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	out := RenderFieldPlain(diffusion.NewField(g, 7), 10, 10)
	if strings.ContainsAny(strings.Split(out, "\n")[0], "@#") {
		t.Errorf("uniform field should map to the low end of the ramp, got %q", out)
	}
}

func TestSampleClampsToGrid(t *testing.T) {
	grid := sample(rampField(t), 100, 100)
	if len(grid) != 3 || len(grid[0]) != 3 {
		t.Errorf("expected 3x3 sample, got %dx%d", len(grid), len(grid[0]))
	}
	grid = sample(rampField(t), 2, 1)
	if len(grid) != 1 || len(grid[0]) != 2 {
		t.Fatalf("expected 1x2 sample, got %dx%d", len(grid), len(grid[0]))
	}
	if grid[0][0] != 0 || grid[0][1] != 10 {
		t.Errorf("expected the sample to span both radial ends, got %v", grid[0])
	}
}

func TestRenderField(t *testing.T) {
	out := RenderField(rampField(t), 3, 3, ThemeMinimal)
	if lipgloss.Width(strings.Split(out, "\n")[0]) != 3 {
		t.Errorf("expected 3 cells per row, got %q", out)
	}
}

func TestLerpColor(t *testing.T) {
	tests := []struct {
		t    float64
		want lipgloss.Color
	}{
		{0, "#000000"},
		{1, "#ffffff"},
		{0.5, "#7f7f7f"},
	}
	for _, tt := range tests {
		if got := lerpColor("#000000", "#ffffff", tt.t); got != tt.want {
			t.Errorf("lerp(%g) = %s, want %s", tt.t, got, tt.want)
		}
	}
}

func TestNextThemeWraps(t *testing.T) {
	th := Themes[0]
	for range Themes {
		th = NextTheme(th)
	}
	if th.Name != Themes[0].Name {
		t.Errorf("expected to wrap to %s, got %s", Themes[0].Name, th.Name)
	}
	if GetTheme("missing").Name != ThemeThermal.Name {
		t.Error("unknown theme should fall back to thermal")
	}
}

func newWatch(t *testing.T, total, perFrame int) WatchModel {
	t.Helper()
	g, err := diffusion.NewGrid(0, 1, 0, 1, 0.25, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	p := diffusion.Params{Alpha: 0.1, Rho: 1, G: 9.81, Dt: 0.01, Initial: 10, InnerBoundary: 50, OuterBoundary: 10}
	return NewWatchModel(diffusion.NewStepper(g, p), total, perFrame)
}

func update(m WatchModel, msg tea.Msg) WatchModel {
	next, _ := m.Update(msg)
	return next.(WatchModel)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModelTickAdvances(t *testing.T) {
	m := newWatch(t, 10, 4)
	m = update(m, TickMsg{})
	if got := m.stepper.StepsTaken(); got != 4 {
		t.Fatalf("expected 4 steps after one tick, got %d", got)
	}
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	if got := m.stepper.StepsTaken(); got != 10 {
		t.Errorf("expected to stop at 10 steps, got %d", got)
	}
	if !m.Done() {
		t.Error("expected model to report done")
	}
	if len(m.residualHistory) != 3 {
		t.Errorf("expected 3 residual samples, got %d", len(m.residualHistory))
	}
}

func TestWatchModelKeys(t *testing.T) {
	m := newWatch(t, 0, 2)

	m = update(m, key(" "))
	m = update(m, TickMsg{})
	if m.stepper.StepsTaken() != 0 {
		t.Error("paused model should not step")
	}

	m = update(m, key(" "))
	m = update(m, key("+"))
	if m.stepsPerFrame != 4 {
		t.Errorf("expected 4 steps per frame, got %d", m.stepsPerFrame)
	}
	m = update(m, TickMsg{})
	if m.stepper.StepsTaken() != 4 {
		t.Errorf("expected 4 steps, got %d", m.stepper.StepsTaken())
	}

	theme := m.theme.Name
	m = update(m, key("t"))
	if m.theme.Name == theme {
		t.Error("expected theme to change")
	}

	m = update(m, key("r"))
	if m.stepper.StepsTaken() != 0 || len(m.peakHistory) != 0 {
		t.Error("reset should clear steps and history")
	}

	m = update(m, key("-"))
	m = update(m, key("-"))
	m = update(m, key("-"))
	if m.stepsPerFrame != 1 {
		t.Errorf("speed should floor at 1, got %d", m.stepsPerFrame)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("expected quit command")
	}
}

func TestWatchModelView(t *testing.T) {
	m := newWatch(t, 5, 1).WithPlain(true)
	for i := 0; i < 3; i++ {
		m = update(m, TickMsg{})
	}
	view := m.View()
	for _, want := range []string{"PRESSURE FIELD", "RUNNING", "residual", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
