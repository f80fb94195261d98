package sim

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/presdiff/internal/diffusion"
)

// Simulator drives a Stepper to completion, feeding metrics and observers
// along the way. Stepping itself stays sequential; the context is only
// checked between steps.
type Simulator struct {
	stepper   *diffusion.Stepper
	metrics   []Metric
	observers []Observer
	logger    log.FieldLogger
}

func New(stepper *diffusion.Stepper) *Simulator {
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    log.StandardLogger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger replaces the standard logrus logger.
func (s *Simulator) SetLogger(l log.FieldLogger) { s.logger = l }

func (s *Simulator) Stepper() *diffusion.Stepper { return s.stepper }

// Run advances the stepper by cfg.Steps and returns a snapshot of the final
// field. On cancellation or divergence the partial result is returned
// together with a *StepError.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	g := s.stepper.Grid()
	p := s.stepper.Params()

	steps := cfg.Steps
	if steps == 0 {
		steps = p.Steps
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	stab := diffusion.StabilityNumber(g, p)
	entry := s.logger.WithFields(log.Fields{
		"grid":      g.String(),
		"steps":     steps,
		"dt":        p.Dt,
		"edge":      p.Edge.String(),
		"stability": stab,
	})
	entry.Info("starting run")
	if stab > 0.5 {
		entry.Warn("stability number above 0.5, explicit scheme may diverge")
	}

	start := time.Now()
	var runErr error

	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			runErr = &StepError{Step: s.stepper.StepsTaken(), Time: s.stepper.Time(), Wrapped: err}
			break
		}

		s.stepper.Step()

		if (cfg.ObserveEvery > 0 && i%cfg.ObserveEvery == 0) || i == steps {
			if err := s.observe(cfg); err != nil {
				runErr = err
				break
			}
		}

		if cfg.LogEvery > 0 && i%cfg.LogEvery == 0 {
			f := s.stepper.Current()
			s.logger.WithFields(log.Fields{
				"step": i,
				"t":    s.stepper.Time(),
				"min":  f.Min(),
				"max":  f.Max(),
			}).Debug("progress")
		}
	}

	result := &Result{
		Field:     s.stepper.Current().Clone(),
		Grid:      g,
		Steps:     s.stepper.StepsTaken(),
		Time:      s.stepper.Time(),
		Metrics:   make(map[string]float64),
		Elapsed:   time.Since(start),
		Stability: stab,
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	fields := log.Fields{"steps": result.Steps, "t": result.Time, "elapsed": result.Elapsed}
	if runErr != nil {
		s.logger.WithFields(fields).WithError(runErr).Error("run stopped")
		return result, runErr
	}
	s.logger.WithFields(fields).Info("run complete")
	return result, nil
}

func (s *Simulator) observe(cfg Config) error {
	f := s.stepper.Current()
	step := s.stepper.StepsTaken()
	t := s.stepper.Time()

	if cfg.ValidateField && !f.IsFinite() {
		return &StepError{Step: step, Time: t, Wrapped: ErrUnstable}
	}
	for _, m := range s.metrics {
		m.Observe(f, step, t)
	}
	for _, o := range s.observers {
		o.OnStep(f, step, t)
	}
	return nil
}
