package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/presdiff/internal/diffusion"
)

func field(t *testing.T, rows [][]float64) *diffusion.Field {
	t.Helper()
	f, err := diffusion.FieldFromRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestStability(t *testing.T) {
	m := NewStability(100)
	if m.Value() != 1.0 {
		t.Errorf("expected 1.0 with no samples, got %f", m.Value())
	}

	m.Observe(field(t, [][]float64{{1, 2}, {3, 4}}), 1, 0.1)
	m.Observe(field(t, [][]float64{{1, 2}, {3, 400}}), 2, 0.2)
	m.Observe(field(t, [][]float64{{1, math.NaN()}, {3, 4}}), 3, 0.3)
	m.Observe(field(t, [][]float64{{-50, 2}, {3, 4}}), 4, 0.4)

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", got)
	}

	m.Reset()
	if m.Value() != 1.0 {
		t.Error("expected 1.0 after reset")
	}
}

func TestPeakPressure(t *testing.T) {
	m := NewPeakPressure()
	m.Observe(field(t, [][]float64{{-5, -3}}), 1, 0)
	if m.Value() != -3 {
		t.Errorf("expected -3, got %f", m.Value())
	}
	m.Observe(field(t, [][]float64{{7, 1}}), 2, 0)
	m.Observe(field(t, [][]float64{{2, 1}}), 3, 0)
	if m.Value() != 7 {
		t.Errorf("expected 7, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMeanPressure(t *testing.T) {
	m := NewMeanPressure()
	m.Observe(field(t, [][]float64{{1, 2}, {3, 4}}), 1, 0)
	if m.Value() != 2.5 {
		t.Errorf("expected 2.5, got %f", m.Value())
	}
}

func TestResidual(t *testing.T) {
	m := NewResidual()
	a := field(t, [][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}})
	b := field(t, [][]float64{{9, 9, 9}, {9, 3, 9}, {9, 9, 9}})

	m.Observe(a, 1, 0.5)
	if m.Value() != 0 {
		t.Errorf("expected 0 after first observation, got %f", m.Value())
	}

	// Only the interior node (1,1) counts: |3-1| / 0.5 = 4.
	m.Observe(b, 2, 1.0)
	if got := m.Value(); math.Abs(got-4) > 1e-12 {
		t.Errorf("expected 4, got %f", got)
	}

	m.Observe(b, 3, 1.5)
	if m.Value() != 0 {
		t.Errorf("expected 0 for unchanged field, got %f", m.Value())
	}
}

func TestDefaults(t *testing.T) {
	names := map[string]bool{}
	for _, m := range Defaults(1e9) {
		names[m.Name()] = true
	}
	for _, want := range []string{"stability", "peak_pressure", "mean_pressure", "residual"} {
		if !names[want] {
			t.Errorf("missing default metric %s", want)
		}
	}
}
