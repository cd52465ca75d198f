// Package engine evaluates ladder programs on a fixed scan cycle.
//
// The pieces, leaves first: StateTable holds per-instance function-block
// state keyed by element ID. evalRung walks one rung left to right as a
// series AND chain. Resolve orders rungs so a coil written upstream is
// visible to its contacts within the same scan. EvalScan runs every
// rung in resolved order against a working image. Scheduler owns the
// single-writer scan loop: snapshot inputs, evaluate, commit outputs,
// sleep to the next tick.
//
// All mutation of program state happens in the scheduler's Run
// goroutine. External callers interact through the control methods
// (Start, Stop, Step, Reset, Load) and the shared image.Table.
package engine
