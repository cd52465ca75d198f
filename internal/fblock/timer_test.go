package fblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTON_DelaysThenFires(t *testing.T) {
	var st TimerState
	var out TimerOut

	// Held high: Q stays low for preset-1 ticks, fires on the preset'th.
	for tick := int32(1); tick <= 4; tick++ {
		out, st = TON(st, true, 5, 1)
		assert.False(t, out.Q, "tick %d: Q must be low before preset", tick)
		assert.Equal(t, tick, out.ET)
	}

	out, st = TON(st, true, 5, 1)
	assert.True(t, out.Q, "Q must fire once accum reaches preset")
	assert.Equal(t, int32(5), out.ET)

	// Input drop clears the accumulator immediately.
	out, _ = TON(st, false, 5, 1)
	assert.False(t, out.Q)
	assert.Equal(t, int32(0), out.ET)
}

func TestTON_MonotonicUntilSaturation(t *testing.T) {
	// Invariant: constant in=true and dt>0 produce non-decreasing ET,
	// and Q transitions false->true exactly once.
	var st TimerState
	var out TimerOut
	var prevET int32
	transitions := 0
	prevQ := false

	for i := 0; i < 20; i++ {
		out, st = TON(st, true, 5, 1)
		assert.GreaterOrEqual(t, out.ET, prevET, "ET must be non-decreasing")
		prevET = out.ET
		if out.Q != prevQ {
			transitions++
			prevQ = out.Q
		}
	}

	assert.True(t, out.Q, "Q must hold while in holds")
	assert.Equal(t, 1, transitions, "Q must transition exactly once")
	assert.GreaterOrEqual(t, out.ET, int32(5))
}

func TestTOF_HoldsAfterInputDrops(t *testing.T) {
	var st TimerState
	var out TimerOut

	// While in is high, Q is high and the accumulator is pinned.
	out, st = TOF(st, true, 3, 1)
	assert.True(t, out.Q)
	assert.Equal(t, int32(3), out.ET)

	// After the drop, Q holds for preset ticks.
	out, st = TOF(st, false, 3, 1)
	assert.True(t, out.Q, "Q holds one tick after drop")
	assert.Equal(t, int32(2), out.ET)

	out, st = TOF(st, false, 3, 1)
	assert.True(t, out.Q)

	out, st = TOF(st, false, 3, 1)
	assert.False(t, out.Q, "Q drops once the accumulator drains")
	assert.Equal(t, int32(0), out.ET)

	out, _ = TOF(st, false, 3, 1)
	assert.False(t, out.Q, "Q stays low while in stays low")
}

func TestTOF_RetriggerRestartsCountdown(t *testing.T) {
	var st TimerState
	var out TimerOut

	out, st = TOF(st, true, 3, 1)
	out, st = TOF(st, false, 3, 1)
	assert.Equal(t, int32(2), out.ET)

	// Input returns mid-countdown: accumulator re-pins to preset.
	out, st = TOF(st, true, 3, 1)
	assert.Equal(t, int32(3), out.ET)

	out, _ = TOF(st, false, 3, 1)
	assert.Equal(t, int32(2), out.ET, "countdown restarts from the full delay")
}

func TestTP_PulseRunsToCompletion(t *testing.T) {
	var st TimerState
	var out TimerOut

	// Rising edge seeds the pulse.
	out, st = TP(st, true, 3, 1)
	assert.True(t, out.Q)
	assert.Equal(t, int32(1), out.ET)

	// Input drop does not cut the pulse short.
	out, st = TP(st, false, 3, 1)
	assert.True(t, out.Q)
	assert.Equal(t, int32(2), out.ET)

	out, st = TP(st, false, 3, 1)
	assert.True(t, out.Q)
	assert.Equal(t, int32(3), out.ET)

	// Pulse complete: accumulator drains, Q drops.
	out, st = TP(st, false, 3, 1)
	assert.False(t, out.Q)
	assert.Equal(t, int32(0), out.ET)
}

func TestTP_NonRetriggerable(t *testing.T) {
	var st TimerState
	var out TimerOut

	out, st = TP(st, true, 3, 1)
	assert.True(t, out.Q)

	// A second edge mid-pulse is ignored.
	out, st = TP(st, false, 3, 1)
	out, st = TP(st, true, 3, 1)
	assert.Equal(t, int32(3), out.ET, "mid-pulse edge must not re-seed")

	// Held-high input after completion does not restart the pulse:
	// a fresh rising edge is required.
	out, st = TP(st, true, 3, 1)
	assert.False(t, out.Q)
	out, st = TP(st, true, 3, 1)
	assert.False(t, out.Q, "held input must not retrigger")

	// Release and re-assert: new pulse.
	out, st = TP(st, false, 3, 1)
	out, _ = TP(st, true, 3, 1)
	assert.True(t, out.Q, "fresh edge after completion starts a new pulse")
}

func TestTimers_ZeroDtIsInert(t *testing.T) {
	var st TimerState
	var out TimerOut

	out, _ = TON(st, true, 5, 0)
	assert.Equal(t, int32(0), out.ET, "dt=0 must not advance a TON")
	assert.False(t, out.Q)

	out, _ = TP(TimerState{}, true, 5, 0)
	assert.False(t, out.Q, "a dt=0 edge seeds an empty pulse")
}
