package optim

import (
	"context"
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/presdiff/internal/config"
	"github.com/san-kum/presdiff/internal/sim"
)

func TestGridSearchOrderAndBest(t *testing.T) {
	gs := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	if gs.Size() != 6 {
		t.Fatalf("expected 6 trials, got %d", gs.Size())
	}

	eval := func(_ context.Context, p map[string]float64) (map[string]float64, error) {
		if p["b"] == 30 {
			return nil, errors.New("rejected")
		}
		return map[string]float64{"cost": (p["a"]-2)*(p["a"]-2) + p["b"]}, nil
	}

	best, val, trials, err := gs.Search(context.Background(), eval, "cost")
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	if trials[0].Params["a"] != 1 || trials[0].Params["b"] != 10 || trials[1].Params["b"] != 20 {
		t.Errorf("expected the last parameter to vary fastest, got %v %v", trials[0].Params, trials[1].Params)
	}
	if trials[2].Err == nil {
		t.Error("expected failed trial to keep its error")
	}
	if best["a"] != 2 || best["b"] != 10 || val != 10 {
		t.Errorf("expected best a=2 b=10 cost 10, got %v %g", best, val)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	gs := NewGridSearch([]string{"a"}, [][]float64{{1, 2, 3}})
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	eval := func(_ context.Context, p map[string]float64) (map[string]float64, error) {
		calls++
		cancel()
		return map[string]float64{"cost": p["a"]}, nil
	}

	_, _, trials, err := gs.Search(ctx, eval, "cost")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 || len(trials) != 1 {
		t.Errorf("expected search to stop after one trial, got %d calls", calls)
	}
}

func TestSolverEval(t *testing.T) {
	logger := log.New()
	logger.SetOutput(io.Discard)

	base := config.GetPreset("golden")
	eval := SolverEval(base, sim.Config{ObserveEvery: 1, ValidateField: true}, logger)

	m, err := eval(context.Background(), map[string]float64{"alpha": 1})
	if err != nil {
		t.Fatal(err)
	}
	if m[StabilityKey] != 0.08 {
		t.Errorf("expected stability number 0.08, got %g", m[StabilityKey])
	}
	if m["peak_pressure"] != 50 {
		t.Errorf("expected peak 50, got %g", m["peak_pressure"])
	}
	if base.Alpha != 1 || base.Dt != 0.01 {
		t.Error("base config modified")
	}

	if _, err := eval(context.Background(), map[string]float64{"edge": 1}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown option, got %v", err)
	}
	if _, err := eval(context.Background(), map[string]float64{"dt": -1}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative dt, got %v", err)
	}
}

func TestSolverEvalDiverges(t *testing.T) {
	logger := log.New()
	logger.SetOutput(io.Discard)

	base := config.GetPreset("small")
	eval := SolverEval(base, sim.Config{ObserveEvery: 1, ValidateField: true}, logger)

	_, err := eval(context.Background(), map[string]float64{"dt": 5, "t_max": 5000})
	if !errors.Is(err, sim.ErrUnstable) {
		t.Errorf("expected ErrUnstable, got %v", err)
	}
}
