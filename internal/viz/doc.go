// Package viz provides terminal views of a pressure field.
//
//   - [RenderField]: colour heatmap built from lipgloss-styled cells
//   - [RenderFieldPlain]: character-ramp heatmap for plain terminals
//   - [WatchModel]: Bubble Tea program that steps the solver live
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	R     - Reset to the initial field
//	T     - Cycle color themes
//	+/-   - Steps per frame
//	Q     - Quit
//
// The heatmap puts r on the horizontal axis and z on the vertical axis,
// with z increasing upwards.
package viz
