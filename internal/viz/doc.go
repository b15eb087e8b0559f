// Package viz draws navigation runs in the terminal.
//
// A [Canvas] is a grid of braille cells; a [Viewport] maps workspace
// coordinates onto it. [PlotScenario] renders a static map, and [Model] is a
// Bubble Tea program that either steps a live [nav.Session] or replays a
// stored run.
//
// # Key Bindings
//
//	Space    - Pause/Resume
//	[ ]      - Scrub backward/forward
//	+ -      - Playback speed
//	R        - Restart
//	Tab      - Select parameter (live only)
//	Up/Down  - Scale parameter and restart (live only)
//	T        - Cycle color themes
//	?        - Show help overlay
//	Q        - Quit
package viz
