package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinNodes is the smallest node count per axis that leaves an interior.
const MinNodes = 3

// Grid describes the discretised domain [RMin, RMax] × [ZMin, ZMax].
// Node counts include both endpoints.
type Grid struct {
	Nr, Nz     int
	Dr, Dz     float64
	RMin, RMax float64
	ZMin, ZMax float64
}

// NewGrid computes node counts by truncating division and validates that
// both axes have at least MinNodes nodes.
func NewGrid(rMin, rMax, zMin, zMax, dr, dz float64) (Grid, error) {
	for _, v := range []float64{rMin, rMax, zMin, zMax, dr, dz} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Grid{}, fmt.Errorf("%w: non-finite bound or step", ErrInvalidGrid)
		}
	}
	if dr <= 0 || dz <= 0 {
		return Grid{}, fmt.Errorf("%w: steps must be positive (dr=%g, dz=%g)", ErrInvalidGrid, dr, dz)
	}
	if rMin >= rMax || zMin >= zMax {
		return Grid{}, fmt.Errorf("%w: bounds must satisfy min < max", ErrInvalidGrid)
	}

	g := Grid{
		Nr:   NodeCount(rMin, rMax, dr),
		Nz:   NodeCount(zMin, zMax, dz),
		Dr:   dr,
		Dz:   dz,
		RMin: rMin,
		RMax: rMax,
		ZMin: zMin,
		ZMax: zMax,
	}
	if g.Nr < MinNodes || g.Nz < MinNodes {
		return Grid{}, fmt.Errorf("%w: need at least %d nodes per axis, got %dx%d", ErrInvalidGrid, MinNodes, g.Nr, g.Nz)
	}
	return g, nil
}

// NodeCount returns floor((max-min)/step)+1.
func NodeCount(min, max, step float64) int {
	return int((max-min)/step) + 1
}

// StepCount returns the number of time steps floor(tMax/dt). Step zero is
// not counted. Non-positive inputs give zero steps.
func StepCount(tMax, dt float64) int {
	if dt <= 0 || tMax <= 0 {
		return 0
	}
	return int(tMax / dt)
}

// Cells returns Nr*Nz.
func (g Grid) Cells() int { return g.Nr * g.Nz }

// Interior returns the number of nodes touched by the update rule.
func (g Grid) Interior() int { return (g.Nr - 2) * (g.Nz - 2) }

// Radii returns Nr evenly spaced radial positions from RMin to RMax
// inclusive. The spacing equals Dr only when Dr divides the domain.
func (g Grid) Radii() []float64 {
	return floats.Span(make([]float64, g.Nr), g.RMin, g.RMax)
}

// Heights returns Nz evenly spaced vertical positions from ZMin to ZMax.
func (g Grid) Heights() []float64 {
	return floats.Span(make([]float64, g.Nz), g.ZMin, g.ZMax)
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d [%g,%g]x[%g,%g] dr=%g dz=%g", g.Nr, g.Nz, g.RMin, g.RMax, g.ZMin, g.ZMax, g.Dr, g.Dz)
}
