// Package viz renders heat equation runs in the terminal.
//
//   - [Summary]: styled run statistics and metrics
//   - [ProfilePlot], [BoundaryPlot]: asciigraph line plots
//   - [Heatmap]: the sampled field u(x, t) as coloured cells
//   - [Viewer]: a Bubble Tea program scrubbing through time
//
// # Key Bindings
//
//	←/→ h/l - Step backward/forward in time
//	Home/End - Jump to the first/last sample
//	Space    - Play/Pause
//	M        - Toggle heatmap
//	C        - Cycle palettes
//	Q        - Quit
package viz
