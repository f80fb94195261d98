package optim

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/presdiff/internal/config"
	"github.com/san-kum/presdiff/internal/diffusion"
	"github.com/san-kum/presdiff/internal/metrics"
	"github.com/san-kum/presdiff/internal/sim"
)

// StabilityKey is the metric name under which SolverEval reports the
// stability number of each trial.
const StabilityKey = "stability_number"

// SolverEval returns an EvalFunc that applies the trial parameters, keyed
// like the config file, to a copy of base and runs the solver with the
// default metrics. A diverging trial fails with sim.ErrUnstable.
func SolverEval(base *config.Config, simCfg sim.Config, logger log.FieldLogger) EvalFunc {
	return func(ctx context.Context, params map[string]float64) (map[string]float64, error) {
		cfg := base.Clone()
		for k, v := range params {
			if err := cfg.SetOption(k, v); err != nil {
				return nil, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		g, err := cfg.Grid()
		if err != nil {
			return nil, err
		}
		p, err := cfg.Params()
		if err != nil {
			return nil, err
		}

		s := sim.New(diffusion.NewStepper(g, p))
		if logger != nil {
			s.SetLogger(logger.WithFields(log.Fields(toFields(params))))
		}
		for _, m := range metrics.Defaults(cfg.PressureBound()) {
			s.AddMetric(m)
		}

		result, err := s.Run(ctx, simCfg)
		if err != nil {
			return nil, err
		}
		out := make(map[string]float64, len(result.Metrics)+1)
		for k, v := range result.Metrics {
			out[k] = v
		}
		out[StabilityKey] = result.Stability
		return out, nil
	}
}

func toFields(params map[string]float64) map[string]interface{} {
	fields := make(map[string]interface{}, len(params))
	for k, v := range params {
		fields[k] = v
	}
	return fields
}
