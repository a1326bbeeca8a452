// Package viz renders neuron scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: the scene viewer, stepping an anim.Driver once per StepMsg
//   - [Picker]: variant and preset menu that opens a viewer
//   - [Canvas]: braille pixel canvas, 2x4 dots per cell
//   - [Camera] and [Render3D]: perspective projection of neurons, synapses
//     and area hulls
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	N     - Next timestep while paused
//	R     - Restart from the first timestep
//	A     - Toggle area hulls
//	T     - Cycle color themes
//	x/y/z - Rotate the camera
//	?     - Show help overlay
package viz
