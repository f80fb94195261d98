package diffusion

import "errors"

// Domain errors for grid and field operations.
var (
	// ErrInvalidGrid indicates bounds or steps that do not describe a grid
	// with at least one interior node.
	ErrInvalidGrid = errors.New("diffusion: invalid grid")

	// ErrDimensionMismatch indicates a field whose shape does not match its grid.
	ErrDimensionMismatch = errors.New("diffusion: field dimensions do not match grid")
)
