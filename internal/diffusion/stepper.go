package diffusion

import (
	"fmt"
	"strings"
)

// EdgePolicy selects the values written to the vertical edges j = 0 and
// j = Nz-1 of interior rows, which the update rule does not cover.
type EdgePolicy int

const (
	// EdgeZero writes 0. A freshly allocated, never-written next buffer
	// gives the same result.
	EdgeZero EdgePolicy = iota
	// EdgeHold keeps the value from the current field.
	EdgeHold
	// EdgeNeumann copies the adjacent interior value (zero gradient).
	EdgeNeumann
)

var edgePolicyNames = map[EdgePolicy]string{
	EdgeZero:    "zero",
	EdgeHold:    "hold",
	EdgeNeumann: "neumann",
}

func (e EdgePolicy) String() string {
	if name, ok := edgePolicyNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EdgePolicy(%d)", int(e))
}

// ParseEdgePolicy maps a policy name to its value. The empty string is
// EdgeZero.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return EdgeZero, nil
	}
	for p, n := range edgePolicyNames {
		if n == name {
			return p, nil
		}
	}
	return EdgeZero, fmt.Errorf("unknown edge policy %q (want zero, hold or neumann)", s)
}

// EdgePolicyNames lists the accepted policy names.
func EdgePolicyNames() []string {
	return []string{EdgeZero.String(), EdgeHold.String(), EdgeNeumann.String()}
}

// Params holds the physical constants and boundary values of a run.
type Params struct {
	Alpha float64 // diffusivity
	Rho   float64 // fluid density
	G     float64 // gravitational acceleration
	Dt    float64
	Steps int

	Initial       float64
	InnerBoundary float64
	OuterBoundary float64
	Edge          EdgePolicy
}

// Source returns the constant forcing term rho*g.
func (p Params) Source() float64 { return p.Rho * p.G }

// StabilityNumber returns alpha*dt*(1/dr² + 1/dz²). The explicit scheme is
// stable for values up to 0.5.
func StabilityNumber(g Grid, p Params) float64 {
	return p.Alpha * p.Dt * (1/(g.Dr*g.Dr) + 1/(g.Dz*g.Dz))
}

// stencil holds everything the update rule needs that does not change
// between steps.
type stencil struct {
	nr, nz int
	dr2    float64
	twoDr  float64
	dz2    float64
	alpha  float64
	dt     float64
	source float64
	edge   EdgePolicy

	invR []float64
	axis []bool

	inner []float64
	outer []float64
}

func newStencil(g Grid, p Params, radii []float64) *stencil {
	s := &stencil{
		nr:     g.Nr,
		nz:     g.Nz,
		dr2:    g.Dr * g.Dr,
		twoDr:  2 * g.Dr,
		dz2:    g.Dz * g.Dz,
		alpha:  p.Alpha,
		dt:     p.Dt,
		source: p.Source(),
		edge:   p.Edge,
		invR:   make([]float64, g.Nr),
		axis:   make([]bool, g.Nr),
		inner:  make([]float64, g.Nz),
		outer:  make([]float64, g.Nz),
	}
	// Row 0 is never updated, so its 1/r is never read.
	for i := 1; i < g.Nr-1; i++ {
		if radii[i] == 0 {
			s.axis[i] = true
			continue
		}
		s.invR[i] = 1 / radii[i]
	}
	for j := range s.inner {
		s.inner[j] = p.InnerBoundary
		s.outer[j] = p.OuterBoundary
	}
	return s
}

// row returns row i of cur with the Dirichlet values substituted for the
// two radial boundaries.
func (s *stencil) row(cur *Field, i int) []float64 {
	switch i {
	case 0:
		return s.inner
	case s.nr - 1:
		return s.outer
	}
	return cur.Row(i)
}

// apply computes next from cur. cur is only read.
func (s *stencil) apply(cur, next *Field) {
	nz := s.nz
	for i := 1; i < s.nr-1; i++ {
		down := s.row(cur, i-1)
		mid := cur.Row(i)
		up := s.row(cur, i+1)
		out := next.Row(i)
		down, up, out = down[:nz], up[:nz], out[:nz]
		mid = mid[:nz]

		invR := s.invR[i]
		onAxis := s.axis[i]

		for j := 1; j < nz-1; j++ {
			p := mid[j]
			d2pdr2 := (up[j] - 2*p + down[j]) / s.dr2
			dpdr := (up[j] - down[j]) / s.twoDr
			d2pdz2 := (mid[j+1] - 2*p + mid[j-1]) / s.dz2

			// (1/r)dp/dr tends to d2p/dr2 as r -> 0.
			corr := invR * dpdr
			if onAxis {
				corr = d2pdr2
			}

			out[j] = p + s.dt*(s.alpha*(d2pdr2+corr+d2pdz2)+s.source)
		}

		switch s.edge {
		case EdgeHold:
			out[0], out[nz-1] = mid[0], mid[nz-1]
		case EdgeNeumann:
			out[0], out[nz-1] = out[1], out[nz-2]
		default:
			out[0], out[nz-1] = 0, 0
		}
	}

	copy(next.Row(0), s.inner)
	copy(next.Row(s.nr-1), s.outer)
}

// Advance writes the field one step after cur into next. cur is not
// modified; its radial boundary rows are treated as holding the Dirichlet
// values. radii must be g.Radii().
func Advance(g Grid, p Params, radii []float64, cur, next *Field) error {
	nr, nz := cur.Dims()
	if nr != g.Nr || nz != g.Nz || !cur.SameShape(next) || len(radii) != g.Nr {
		return ErrDimensionMismatch
	}
	newStencil(g, p, radii).apply(cur, next)
	return nil
}

// Stepper advances a pressure field in time. It owns two buffers and swaps
// them after every step.
type Stepper struct {
	grid    Grid
	params  Params
	radii   []float64
	stencil *stencil

	cur, next *Field
	steps     int
}

// NewStepper allocates the field buffers for g: current uniform at
// p.Initial, next zero.
func NewStepper(g Grid, p Params) *Stepper {
	radii := g.Radii()
	cur, next := InitFields(g, p.Initial)
	return &Stepper{
		grid:    g,
		params:  p,
		radii:   radii,
		stencil: newStencil(g, p, radii),
		cur:     cur,
		next:    next,
	}
}

// Step computes the next field into the spare buffer and swaps buffers.
// The radial rows of the result always hold the boundary values.
func (s *Stepper) Step() {
	s.stencil.apply(s.cur, s.next)
	s.cur, s.next = s.next, s.cur
	s.steps++
}

// Run performs n steps.
func (s *Stepper) Run(n int) {
	for k := 0; k < n; k++ {
		s.Step()
	}
}

// Reset restores the initial buffers and step counter.
func (s *Stepper) Reset() {
	s.cur.Fill(s.params.Initial)
	s.next.Fill(0)
	s.steps = 0
}

// Current returns the committed field. It is overwritten by the step
// after next; Clone it to keep a snapshot.
func (s *Stepper) Current() *Field { return s.cur }

func (s *Stepper) StepsTaken() int { return s.steps }

// Time returns the simulated time steps*dt.
func (s *Stepper) Time() float64 { return float64(s.steps) * s.params.Dt }

func (s *Stepper) Grid() Grid { return s.grid }

func (s *Stepper) Params() Params { return s.params }

// Radii returns the radial coordinate table. Callers must not modify it.
func (s *Stepper) Radii() []float64 { return s.radii }
