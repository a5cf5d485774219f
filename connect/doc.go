// Package connect wires one solver instance's input variables to another
// instance's outputs (or to any caller-supplied source), for co-simulated
// multi-model scenarios. A Connection reads the source value on a sync
// policy -- before every one of the target's output events, or on a fixed
// wall-of-simulated-time step -- and pushes it into the target model via
// variable.InputVar's closed-form Func hook.
package connect
