// Package analysis extracts one-dimensional views and summary statistics
// from a pressure field.
//
//   - [RadialProfile]: p(r) at a fixed vertical index
//   - [VerticalProfile]: p(z) at a fixed radial index
//   - [Summarize]: min, max, mean and standard deviation
//
// # Example
//
//	mid := analysis.NearestIndex(g.Heights(), (g.ZMin+g.ZMax)/2)
//	prof, _ := analysis.RadialProfile(f, mid)
package analysis
