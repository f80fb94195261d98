package config

import "sort"

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	// One interior node; a single step gives p[1,1] = 10.8.
	"golden": {
		Alpha: 1, Rho: 0, G: 0,
		RMin: 0, RMax: 1, ZMin: 0, ZMax: 1,
		TMax: 0.01, Dr: 0.5, Dz: 0.5, Dt: 0.01,
		InitialValue: 10, InnerBoundaryValue: 50, OuterBoundaryValue: 10,
		EdgePolicy: "zero",
	},
	"small": {
		Alpha: 0.1, Rho: 1000, G: 9.81,
		RMin: 0, RMax: 10, ZMin: 0, ZMax: 5,
		TMax: 5, Dr: 0.25, Dz: 0.25, Dt: 0.05,
		InitialValue: 10, InnerBoundaryValue: 50000, OuterBoundaryValue: 10000,
		EdgePolicy: "neumann",
	},
	"quiescent": {
		Alpha: 0, Rho: 0, G: 0,
		RMin: 0, RMax: 1, ZMin: 0, ZMax: 1,
		TMax: 1, Dr: 0.1, Dz: 0.1, Dt: 0.01,
		InitialValue: 0, InnerBoundaryValue: 50, OuterBoundaryValue: 10,
		EdgePolicy: "zero",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
