// Package diffusion implements an explicit finite-difference solver for
// pressure diffusion on a 2-D axisymmetric (radial × vertical) grid.
//
// The package defines the core types of a run:
//
//   - [Grid]: immutable description of the discretised domain
//   - [Field]: dense Nr × Nz scalar array backed by a gonum matrix
//   - [Params]: physical constants, time step and boundary values
//   - [Stepper]: owns the two field buffers and advances them in time
//
// # Update Rule
//
// For every interior node (1 ≤ i ≤ Nr-2, 1 ≤ j ≤ Nz-2):
//
//	p' = p + dt*(alpha*(d2p/dr2 + (1/r)*dp/dr + d2p/dz2) + rho*g)
//
// The radial rows i = 0 and i = Nr-1 are Dirichlet boundaries, re-applied
// before every step. The vertical edges j = 0 and j = Nz-1 follow an
// [EdgePolicy].
//
// # Example
//
//	g, _ := diffusion.NewGrid(0, 1, 0, 1, 0.5, 0.5)
//	s := diffusion.NewStepper(g, diffusion.Params{Alpha: 1, Dt: 0.01, Initial: 10})
//	s.Run(100)
//	p := s.Current()
//
// # Stability
//
// The scheme is explicit and therefore conditionally stable. Use
// [StabilityNumber] to check a configuration; the stepper never checks.
//
// # Thread Safety
//
// Stepper instances are NOT thread-safe.
package diffusion
