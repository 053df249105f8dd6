// Package viz provides a terminal replay of the forward recurrence.
//
// A [Recorder] attached to a simulator keeps the magnetization profile after
// every RF sample; [Model] replays those frames with Bubble Tea, drawing the
// profile on a braille [Canvas] next to a stats panel.
//
// # Key Bindings
//
//	Space - Play/Pause
//	R     - Restart
//	[ ]   - Step backward/forward
//	M     - Toggle |Mxy| and Mz
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
