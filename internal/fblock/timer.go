package fblock

// TimerState is the persistent state of a timer instance.
//
// Accum is the accumulated time in scan ticks, never negative.
// PrevIn is the input level from the previous scan; only TP uses it
// (for its non-retriggerable rising edge) but every mode maintains it
// so switching a timer's mode between loads never reads stale garbage.
type TimerState struct {
	Accum  int32
	PrevIn bool
}

// TimerOut is the output of a timer step. ET exposes the elapsed time
// in ticks; the engine publishes it as a word under the timer's ID plus
// ".et".
type TimerOut struct {
	Q  bool
	ET int32
}

// TON steps an on-delay timer: Q goes high once the input has been held
// high for preset ticks, and drops the moment the input drops.
func TON(prev TimerState, in bool, preset, dt int32) (TimerOut, TimerState) {
	var accum int32
	if in {
		accum = prev.Accum + dt
	} else {
		accum = 0
	}
	next := TimerState{Accum: accum, PrevIn: in}
	return TimerOut{Q: accum >= preset, ET: accum}, next
}

// TOF steps an off-delay timer: Q holds high for preset ticks after the
// input drops. While the input is high the accumulator stays pinned at
// preset, so the countdown always starts from the full delay.
func TOF(prev TimerState, in bool, preset, dt int32) (TimerOut, TimerState) {
	var accum int32
	switch {
	case in:
		accum = preset
	case prev.Accum > 0:
		accum = prev.Accum - dt
		if accum < 0 {
			accum = 0
		}
	default:
		accum = 0
	}
	next := TimerState{Accum: accum, PrevIn: in}
	return TimerOut{Q: accum > 0, ET: accum}, next
}

// TP steps a pulse timer: a rising edge starts a pulse of exactly
// preset ticks. The pulse is non-retriggerable - edges arriving while
// the pulse runs are ignored, and the accumulator must drain to zero
// before a new edge can seed it.
func TP(prev TimerState, in bool, preset, dt int32) (TimerOut, TimerState) {
	accum := prev.Accum
	switch {
	case in && !prev.PrevIn && accum == 0:
		accum = dt
	case accum > 0 && accum < preset:
		accum += dt
	case accum >= preset:
		accum = 0
	}
	next := TimerState{Accum: accum, PrevIn: in}
	return TimerOut{Q: accum > 0, ET: accum}, next
}
