package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/presdiff/internal/diffusion"
)

const (
	DefaultAlpha    = 0.1
	DefaultRho      = 1000.0
	DefaultG        = 9.81
	DefaultRMin     = 0.0
	DefaultRMax     = 100.0
	DefaultZMin     = 0.0
	DefaultZMax     = 50.0
	DefaultTMax     = 10.0
	DefaultDr       = 0.05
	DefaultDz       = 0.05
	DefaultDt       = 0.0005
	DefaultInitial  = 10.0
	DefaultInner    = 50000.0
	DefaultOuter    = 10000.0
	DefaultEdge     = "zero"
	StableThreshold = 0.5
)

// ErrInvalidConfig is wrapped by every ConfigurationError.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ConfigurationError names the option that failed validation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

type Config struct {
	Alpha float64 `yaml:"alpha" json:"alpha"`
	Rho   float64 `yaml:"rho" json:"rho"`
	G     float64 `yaml:"g" json:"g"`

	RMin float64 `yaml:"r_min" json:"r_min"`
	RMax float64 `yaml:"r_max" json:"r_max"`
	ZMin float64 `yaml:"z_min" json:"z_min"`
	ZMax float64 `yaml:"z_max" json:"z_max"`

	TMax float64 `yaml:"t_max" json:"t_max"`
	Dr   float64 `yaml:"dr" json:"dr"`
	Dz   float64 `yaml:"dz" json:"dz"`
	Dt   float64 `yaml:"dt" json:"dt"`

	InitialValue       float64 `yaml:"initial_value" json:"initial_value"`
	InnerBoundaryValue float64 `yaml:"inner_boundary_value" json:"inner_boundary_value"`
	OuterBoundaryValue float64 `yaml:"outer_boundary_value" json:"outer_boundary_value"`
	EdgePolicy         string  `yaml:"edge_policy" json:"edge_policy"`
}

// DefaultConfig returns the reference configuration: a 100 m × 50 m
// domain at 5 cm spacing, run for 10 s.
func DefaultConfig() *Config {
	return &Config{
		Alpha:              DefaultAlpha,
		Rho:                DefaultRho,
		G:                  DefaultG,
		RMin:               DefaultRMin,
		RMax:               DefaultRMax,
		ZMin:               DefaultZMin,
		ZMax:               DefaultZMax,
		TMax:               DefaultTMax,
		Dr:                 DefaultDr,
		Dz:                 DefaultDz,
		Dt:                 DefaultDt,
		InitialValue:       DefaultInitial,
		InnerBoundaryValue: DefaultInner,
		OuterBoundaryValue: DefaultOuter,
		EdgePolicy:         DefaultEdge,
	}
}

// Load reads a YAML file, or an INI file when the extension is .ini.
// Options missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return loadINI(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	physics := file.Section("physics")
	domain := file.Section("domain")
	timing := file.Section("time")
	boundary := file.Section("boundary")

	return &Config{
		Alpha:              physics.Key("alpha").MustFloat64(DefaultAlpha),
		Rho:                physics.Key("rho").MustFloat64(DefaultRho),
		G:                  physics.Key("g").MustFloat64(DefaultG),
		RMin:               domain.Key("r_min").MustFloat64(DefaultRMin),
		RMax:               domain.Key("r_max").MustFloat64(DefaultRMax),
		ZMin:               domain.Key("z_min").MustFloat64(DefaultZMin),
		ZMax:               domain.Key("z_max").MustFloat64(DefaultZMax),
		Dr:                 domain.Key("dr").MustFloat64(DefaultDr),
		Dz:                 domain.Key("dz").MustFloat64(DefaultDz),
		TMax:               timing.Key("t_max").MustFloat64(DefaultTMax),
		Dt:                 timing.Key("dt").MustFloat64(DefaultDt),
		InitialValue:       boundary.Key("initial_value").MustFloat64(DefaultInitial),
		InnerBoundaryValue: boundary.Key("inner_boundary_value").MustFloat64(DefaultInner),
		OuterBoundaryValue: boundary.Key("outer_boundary_value").MustFloat64(DefaultOuter),
		EdgePolicy:         boundary.Key("edge_policy").MustString(DefaultEdge),
	}, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first option that would produce a degenerate run.
func (c *Config) Validate() error {
	finite := map[string]float64{
		"alpha": c.Alpha, "rho": c.Rho, "g": c.G,
		"r_min": c.RMin, "r_max": c.RMax, "z_min": c.ZMin, "z_max": c.ZMax,
		"t_max": c.TMax, "dr": c.Dr, "dz": c.Dz, "dt": c.Dt,
		"initial_value":        c.InitialValue,
		"inner_boundary_value": c.InnerBoundaryValue,
		"outer_boundary_value": c.OuterBoundaryValue,
	}
	for _, name := range []string{"dr", "dz", "dt", "t_max"} {
		if v := finite[name]; !(v > 0) {
			return &ConfigurationError{Field: name, Reason: fmt.Sprintf("must be positive, got %g", v)}
		}
	}
	for name, v := range finite {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Field: name, Reason: "must be finite"}
		}
	}
	if c.RMin >= c.RMax {
		return &ConfigurationError{Field: "r_min", Reason: fmt.Sprintf("must be below r_max (%g >= %g)", c.RMin, c.RMax)}
	}
	if c.ZMin >= c.ZMax {
		return &ConfigurationError{Field: "z_min", Reason: fmt.Sprintf("must be below z_max (%g >= %g)", c.ZMin, c.ZMax)}
	}
	if n := diffusion.NodeCount(c.RMin, c.RMax, c.Dr); n < diffusion.MinNodes {
		return &ConfigurationError{Field: "dr", Reason: fmt.Sprintf("gives %d radial nodes, need %d", n, diffusion.MinNodes)}
	}
	if n := diffusion.NodeCount(c.ZMin, c.ZMax, c.Dz); n < diffusion.MinNodes {
		return &ConfigurationError{Field: "dz", Reason: fmt.Sprintf("gives %d vertical nodes, need %d", n, diffusion.MinNodes)}
	}
	if _, err := diffusion.ParseEdgePolicy(c.EdgePolicy); err != nil {
		return &ConfigurationError{Field: "edge_policy", Reason: err.Error()}
	}
	return nil
}

// Grid builds the discretised domain.
func (c *Config) Grid() (diffusion.Grid, error) {
	return diffusion.NewGrid(c.RMin, c.RMax, c.ZMin, c.ZMax, c.Dr, c.Dz)
}

// Params builds the stepper parameters, including the step count
// floor(t_max/dt).
func (c *Config) Params() (diffusion.Params, error) {
	edge, err := diffusion.ParseEdgePolicy(c.EdgePolicy)
	if err != nil {
		return diffusion.Params{}, &ConfigurationError{Field: "edge_policy", Reason: err.Error()}
	}
	return diffusion.Params{
		Alpha:         c.Alpha,
		Rho:           c.Rho,
		G:             c.G,
		Dt:            c.Dt,
		Steps:         diffusion.StepCount(c.TMax, c.Dt),
		Initial:       c.InitialValue,
		InnerBoundary: c.InnerBoundaryValue,
		OuterBoundary: c.OuterBoundaryValue,
		Edge:          edge,
	}, nil
}

// PressureBound is a generous limit on |p| for a run that has not
// diverged: ten times the largest prescribed pressure plus the total
// body-force contribution over t_max.
func (c *Config) PressureBound() float64 {
	m := math.Max(math.Abs(c.InitialValue), math.Max(math.Abs(c.InnerBoundaryValue), math.Abs(c.OuterBoundaryValue)))
	return 10 * (m + math.Abs(c.Rho*c.G)*c.TMax)
}

// SetOption assigns a numeric option by its file key, e.g. "dt" or
// "inner_boundary_value".
func (c *Config) SetOption(key string, v float64) error {
	opts := map[string]*float64{
		"alpha": &c.Alpha, "rho": &c.Rho, "g": &c.G,
		"r_min": &c.RMin, "r_max": &c.RMax, "z_min": &c.ZMin, "z_max": &c.ZMax,
		"t_max": &c.TMax, "dr": &c.Dr, "dz": &c.Dz, "dt": &c.Dt,
		"initial_value":        &c.InitialValue,
		"inner_boundary_value": &c.InnerBoundaryValue,
		"outer_boundary_value": &c.OuterBoundaryValue,
	}
	p, ok := opts[key]
	if !ok {
		return &ConfigurationError{Field: key, Reason: "unknown option"}
	}
	*p = v
	return nil
}

// Clone returns a copy safe to modify.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
