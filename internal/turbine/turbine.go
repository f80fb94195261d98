// Package turbine tabulates the electric output of a horizontal-axis wind
// turbine over a range of rotor diameters and wind speeds.
package turbine

import (
	"math"
)

const (
	DefaultDensity    = 1.25 // kg/m³
	DefaultEfficiency = 0.3
)

// Spec describes the sweep. Diameters are in m, velocities in m/s.
type Spec struct {
	Density    float64
	Efficiency float64
	Diameters  []float64
	Velocities []float64
}

func DefaultSpec() Spec {
	return Spec{
		Density:    DefaultDensity,
		Efficiency: DefaultEfficiency,
		Diameters:  []float64{20, 40, 60, 80},
		Velocities: []float64{5, 10, 15, 20},
	}
}

// Row is one (diameter, velocity) operating point.
type Row struct {
	Diameter      float64
	Velocity      float64
	KineticEnergy float64 // J/kg
	MassFlow      int64   // kg/s, rounded
	Power         float64 // W, rounded to the nearest kW
}

// KineticEnergy is the specific kinetic energy V²/2 of the wind.
func KineticEnergy(v float64) float64 { return v * v / 2 }

// MassFlow is the air mass passing the rotor disc per second.
func MassFlow(density, v, d float64) float64 {
	return density * v * math.Pi * d * d / 4
}

// Power is the electric output. The unrounded mass flow is used.
func Power(efficiency, mdot, ke float64) float64 {
	return efficiency * mdot * ke
}

// Table evaluates every diameter against every velocity, diameters
// outermost.
func Table(s Spec) []Row {
	rows := make([]Row, 0, len(s.Diameters)*len(s.Velocities))
	for _, d := range s.Diameters {
		for _, v := range s.Velocities {
			ke := KineticEnergy(v)
			mdot := MassFlow(s.Density, v, d)
			rows = append(rows, Row{
				Diameter:      d,
				Velocity:      v,
				KineticEnergy: ke,
				MassFlow:      int64(math.Round(mdot)),
				Power:         math.Round(Power(s.Efficiency, mdot, ke)/1000) * 1000,
			})
		}
	}
	return rows
}

// Series holds power against velocity for one diameter.
type Series struct {
	Diameter   float64
	Velocities []float64
	Powers     []float64
}

// SeriesByDiameter groups rows per diameter in first-seen order.
func SeriesByDiameter(rows []Row) []Series {
	var out []Series
	index := make(map[float64]int)
	for _, r := range rows {
		k, ok := index[r.Diameter]
		if !ok {
			k = len(out)
			index[r.Diameter] = k
			out = append(out, Series{Diameter: r.Diameter})
		}
		out[k].Velocities = append(out[k].Velocities, r.Velocity)
		out[k].Powers = append(out[k].Powers, r.Power)
	}
	return out
}
