// Package anim steps a scene through a sequence of timesteps.
//
// A Driver is an explicit state machine:
//
//	Idle --Start--> RenderingFrame --Tick--> Advancing --load--> RenderingFrame
//	                                              \--no next step--> Finished
//
// The driver never schedules itself. An outer loop (the terminal viewer's
// tick message, the GIF encoder, the websocket ticker, a test) calls Tick
// once per frame. A sequence of K timesteps reaches Finished after exactly
// K ticks.
package anim
