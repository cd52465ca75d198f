package engine

import (
	"github.com/mfell/rungine/internal/fblock"
	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

// Stateful elements publish their outputs into the image under their
// own ID (the done bit) plus a readout word under a suffixed ID, so
// contacts and word reads elsewhere in the program can observe them.
const (
	elapsedSuffix = ".et" // timer elapsed ticks
	countSuffix   = ".cv" // counter current value
)

// evalRung evaluates one rung as a left-to-right series AND chain.
//
// Reads come from working, which already contains the writes of rungs
// evaluated earlier this scan. Writes go into delta and are NOT visible
// to elements later on the same rung: a contact observing a coil on its
// own rung sees the value from the previous evaluation, which is what
// makes feedback latches behave.
//
// A coil does not alter the power flowing past it, so a rung with two
// coils drives both from the same power value. That is the documented
// semantics, not an accident.
//
// Returns the rung's final power value; block state updates go into
// states, and writes into delta.
func evalRung(rung *ladder.Rung, working image.Image, states *StateTable, dt int32, counters *Counters) (bool, image.Image) {
	power := true // left rail
	delta := image.New()

	readBit := func(id string) bool {
		val, mismatch := working.Bit(id)
		if mismatch {
			counters.TypeMismatches.Add(1)
		}
		return val
	}

	for i := range rung.Elements {
		el := &rung.Elements[i]

		switch el.Kind {
		case ladder.KindInput:
			// Pass-through; the terminal's value is read by contacts.

		case ladder.KindContact:
			bit := readBit(el.ContactSource())
			effective := bit
			if !el.NormallyOpen {
				effective = !bit
			}
			power = power && effective

		case ladder.KindTimer:
			prev := states.Timer(el.ID)
			var out fblock.TimerOut
			var next fblock.TimerState
			switch el.TimerMode {
			case ladder.TimerOffDelay:
				out, next = fblock.TOF(prev, power, el.Preset, dt)
			case ladder.TimerPulse:
				out, next = fblock.TP(prev, power, el.Preset, dt)
			default:
				out, next = fblock.TON(prev, power, el.Preset, dt)
			}
			states.SetTimer(el.ID, next)
			delta.Set(el.ID, ladder.Bit(out.Q))
			delta.Set(el.ID+elapsedSuffix, ladder.Word(out.ET))
			power = power && out.Q

		case ladder.KindCounter:
			prev := states.Counter(el.ID)
			reset := el.ResetSource != "" && readBit(el.ResetSource)
			load := el.LoadSource != "" && readBit(el.LoadSource)
			var out fblock.CounterOut
			var next fblock.CounterState
			switch el.CounterMode {
			case ladder.CountDown:
				out, next = fblock.CTD(prev, power, load, el.Preset)
			case ladder.CountUpDown:
				down := el.DownSource != "" && readBit(el.DownSource)
				out, next = fblock.CTUD(prev, power, down, reset, load, el.Preset)
			default:
				out, next = fblock.CTU(prev, power, reset, el.Preset)
			}
			states.SetCounter(el.ID, next)
			delta.Set(el.ID, ladder.Bit(out.Q))
			delta.Set(el.ID+countSuffix, ladder.Word(out.CV))
			power = power && out.Q

		case ladder.KindLatch:
			prev := states.Latch(el.ID)
			reset := el.ResetSource != "" && readBit(el.ResetSource)
			var out fblock.LatchOut
			var next fblock.LatchState
			if el.LatchMode == ladder.LatchSetDominant {
				out, next = fblock.SR(prev, power, reset)
			} else {
				out, next = fblock.RS(prev, power, reset)
			}
			states.SetLatch(el.ID, next)
			delta.Set(el.ID, ladder.Bit(out.Q))
			power = power && out.Q

		case ladder.KindCoil:
			delta.Set(el.CoilTarget(), ladder.Bit(power))

		case ladder.KindOutput:
			delta.Set(el.ID, ladder.Bit(power))

		default:
			// Unknown kind from a newer editor: pass through, count it.
			counters.UnknownKinds.Add(1)
		}
	}

	return power, delta
}
