package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/presdiff/internal/diffusion"
)

// ErrUnstable indicates the field left the finite range during a run.
var ErrUnstable = errors.New("sim: field diverged (NaN or Inf detected)")

// Metric accumulates a scalar over the observed steps of a run.
type Metric interface {
	Name() string
	Observe(f *diffusion.Field, step int, t float64)
	Value() float64
	Reset()
}

// Observer is notified after observed steps. The field must not be
// retained; clone it if needed.
type Observer interface {
	OnStep(f *diffusion.Field, step int, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f *diffusion.Field, step int, t float64)

func (fn ObserverFunc) OnStep(f *diffusion.Field, step int, t float64) { fn(f, step, t) }

type Config struct {
	// Steps to run. Zero means Params.Steps of the stepper.
	Steps int
	// ObserveEvery is the stride, in steps, for metrics and observers.
	// Zero observes only the final field.
	ObserveEvery int
	// LogEvery is the stride, in steps, for progress log lines. Zero disables.
	LogEvery int
	// ValidateField checks finiteness at every observation.
	ValidateField bool
}

func DefaultConfig() Config {
	return Config{
		ObserveEvery:  100,
		LogEvery:      1000,
		ValidateField: true,
	}
}

type Result struct {
	Field     *diffusion.Field
	Grid      diffusion.Grid
	Steps     int
	Time      float64
	Metrics   map[string]float64
	Elapsed   time.Duration
	Stability float64
}

// StepError records where a run stopped.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
